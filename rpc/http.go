package rpc

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vaultdao/core"
	"vaultdao/observability/metrics"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeNotFound       = -32004
	codeForbidden      = -32005
	codePolicy         = -32030
	codeRateLimited    = -32020
)

type Server struct {
	node      *core.Node
	authToken string
	limiter   *clientLimiter
	logger    *slog.Logger
	metrics   *metrics.VaultMetrics
}

// NewServer creates an RPC server over the node. The bearer token guarding
// mutating methods is read from VAULT_RPC_TOKEN; when unset those methods are
// rejected.
func NewServer(node *core.Node, logger *slog.Logger, rateLimit float64, rateBurst int) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		node:      node,
		authToken: strings.TrimSpace(os.Getenv("VAULT_RPC_TOKEN")),
		limiter:   newClientLimiter(rateLimit, rateBurst),
		logger:    logger,
		metrics:   metrics.Vault(),
	}
}

// Router assembles the HTTP surface: the JSON-RPC endpoint, health, and
// Prometheus metrics.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/", s.handle)
	return r
}

// Start serves the router on addr and blocks until the listener fails.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting JSON-RPC server", "addr", addr)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// handle is the main request handler that routes to specific handlers.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	if !s.limiter.allow(r) {
		writeError(w, http.StatusTooManyRequests, nil, codeRateLimited, "rate limit exceeded", nil)
		return
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	started := time.Now()
	sw := &statusWriter{ResponseWriter: w}
	s.dispatch(sw, r, req)
	outcome := "ok"
	if sw.status >= http.StatusBadRequest {
		outcome = "error"
	}
	s.metrics.ObserveRPCRequest(req.Method, outcome, time.Since(started).Seconds())
	s.logger.Debug("rpc request", "method", req.Method, "outcome", outcome)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	switch req.Method {
	case "vault_initialize":
		s.authed(w, r, req, s.handleInitialize)
	case "vault_updateConfig":
		s.authed(w, r, req, s.handleUpdateConfig)
	case "vault_getConfig":
		s.handleGetConfig(w, r, req)
	case "vault_propose":
		s.authed(w, r, req, s.handlePropose)
	case "vault_approve":
		s.authed(w, r, req, s.handleApprove)
	case "vault_abstain":
		s.authed(w, r, req, s.handleAbstain)
	case "vault_execute":
		s.authed(w, r, req, s.handleExecute)
	case "vault_changePriority":
		s.authed(w, r, req, s.handleChangePriority)
	case "vault_getProposal":
		s.handleGetProposal(w, r, req)
	case "vault_listByPriority":
		s.handleListByPriority(w, r, req)
	case "vault_setRole":
		s.authed(w, r, req, s.handleSetRole)
	case "vault_getRole":
		s.handleGetRole(w, r, req)
	case "vault_setListMode":
		s.authed(w, r, req, s.handleSetListMode)
	case "vault_getListMode":
		s.handleGetListMode(w, r, req)
	case "vault_addToWhitelist":
		s.authed(w, r, req, s.handleAddToWhitelist)
	case "vault_removeFromWhitelist":
		s.authed(w, r, req, s.handleRemoveFromWhitelist)
	case "vault_addToBlacklist":
		s.authed(w, r, req, s.handleAddToBlacklist)
	case "vault_removeFromBlacklist":
		s.authed(w, r, req, s.handleRemoveFromBlacklist)
	case "vault_isWhitelisted":
		s.handleIsWhitelisted(w, r, req)
	case "vault_isBlacklisted":
		s.handleIsBlacklisted(w, r, req)
	case "vault_addComment":
		s.authed(w, r, req, s.handleAddComment)
	case "vault_editComment":
		s.authed(w, r, req, s.handleEditComment)
	case "vault_getComment":
		s.handleGetComment(w, r, req)
	case "vault_getProposalComments":
		s.handleGetProposalComments(w, r, req)
	case "vault_addAttachment":
		s.authed(w, r, req, s.handleAddAttachment)
	case "vault_removeAttachment":
		s.authed(w, r, req, s.handleRemoveAttachment)
	case "vault_spendingStatus":
		s.handleSpendingStatus(w, r, req)
	case "vault_deposit":
		s.authed(w, r, req, s.handleDeposit)
	case "vault_balance":
		s.handleBalance(w, r, req)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %s", req.Method), nil)
	}
}

type handlerFunc func(http.ResponseWriter, *http.Request, *RPCRequest)

func (s *Server) authed(w http.ResponseWriter, r *http.Request, req *RPCRequest, next handlerFunc) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	next(w, r, req)
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return &RPCError{Code: codeUnauthorized, Message: "RPC authentication token not configured"}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing Authorization header"}
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return &RPCError{Code: codeUnauthorized, Message: "Authorization header must use Bearer scheme"}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid RPC credentials"}
	}
	return nil
}
