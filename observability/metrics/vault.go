package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type VaultMetrics struct {
	proposalsCreated *prometheus.CounterVec
	votesRecorded    *prometheus.CounterVec
	executions       *prometheus.CounterVec
	policyRejections *prometheus.CounterVec
	rpcRequests      *prometheus.CounterVec
	rpcDuration      *prometheus.HistogramVec
}

var (
	vaultOnce     sync.Once
	vaultRegistry *VaultMetrics
)

func Vault() *VaultMetrics {
	vaultOnce.Do(func() {
		vaultRegistry = &VaultMetrics{
			proposalsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "vault_proposals_created_total",
				Help: "Count of transfer proposals created by priority.",
			}, []string{"priority"}),
			votesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "vault_votes_recorded_total",
				Help: "Count of recorded votes by kind (approve or abstain).",
			}, []string{"kind"}),
			executions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "vault_executions_total",
				Help: "Count of execution attempts by result.",
			}, []string{"result"}),
			policyRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "vault_policy_rejections_total",
				Help: "Count of operations rejected by policy, by reason.",
			}, []string{"reason"}),
			rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "vault_rpc_requests_total",
				Help: "Count of RPC requests by method and outcome.",
			}, []string{"method", "outcome"}),
			rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "vault_rpc_duration_seconds",
				Help:    "RPC handler latency by method.",
				Buckets: prometheus.DefBuckets,
			}, []string{"method"}),
		}
		prometheus.MustRegister(
			vaultRegistry.proposalsCreated,
			vaultRegistry.votesRecorded,
			vaultRegistry.executions,
			vaultRegistry.policyRejections,
			vaultRegistry.rpcRequests,
			vaultRegistry.rpcDuration,
		)
	})
	return vaultRegistry
}

func (m *VaultMetrics) ObserveProposalCreated(priority string) {
	if m == nil {
		return
	}
	if priority == "" {
		priority = "unknown"
	}
	m.proposalsCreated.WithLabelValues(priority).Inc()
}

func (m *VaultMetrics) ObserveVote(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.votesRecorded.WithLabelValues(kind).Inc()
}

func (m *VaultMetrics) ObserveExecution(result string) {
	if m == nil {
		return
	}
	if result == "" {
		result = "unknown"
	}
	m.executions.WithLabelValues(result).Inc()
}

func (m *VaultMetrics) ObservePolicyRejection(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.policyRejections.WithLabelValues(reason).Inc()
}

func (m *VaultMetrics) ObserveRPCRequest(method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.rpcRequests.WithLabelValues(method, outcome).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(seconds)
}
