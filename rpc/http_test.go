package rpc

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vaultdao/core"
	"vaultdao/native/vault"
	"vaultdao/observability/metrics"
	"vaultdao/storage"
)

const testToken = "test-token"

func testVaultConfig() vault.Config {
	return vault.Config{
		Signers:           []vault.Address{"alice", "bob"},
		Strategy:          vault.ThresholdStrategy{Kind: vault.StrategyFixed, Threshold: 2},
		SpendingLimit:     big.NewInt(0),
		TimelockThreshold: big.NewInt(1_000_000),
		TimelockDelay:     60,
		Velocity:          vault.VelocityConfig{Limit: 10, Window: 3_600},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	node := core.NewNode(db)
	node.SetNowFunc(func() uint64 { return 50_000 })
	if err := node.ApplyGenesis("alice", testVaultConfig(), map[string]*big.Int{"USDC": big.NewInt(1_000)}); err != nil {
		t.Fatalf("apply genesis: %v", err)
	}
	return &Server{
		node:      node,
		authToken: testToken,
		limiter:   newClientLimiter(1_000, 1_000),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:   metrics.Vault(),
	}
}

func call(t *testing.T, s *Server, token, method string, params interface{}) (int, *RPCResponse) {
	t.Helper()
	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		req["params"] = []interface{}{params}
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	httpReq := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httpReq)

	resp := &RPCResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec.Code, resp
}

func mustResult(t *testing.T, s *Server, token, method string, params, out interface{}) {
	t.Helper()
	status, resp := call(t, s, token, method, params)
	if resp.Error != nil {
		t.Fatalf("%s: unexpected error %d %q", method, resp.Error.Code, resp.Error.Message)
	}
	if status != http.StatusOK {
		t.Fatalf("%s: unexpected status %d", method, status)
	}
	if out == nil {
		return
	}
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("re-marshal result: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func TestMutatingMethodsRequireAuth(t *testing.T) {
	s := newTestServer(t)
	status, resp := call(t, s, "", "vault_propose", map[string]interface{}{
		"caller": "alice", "recipient": "vendor", "token": "USDC", "amount": "10",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("expected unauthorized error, got %+v", resp.Error)
	}

	status, resp = call(t, s, "wrong-token", "vault_propose", map[string]interface{}{
		"caller": "alice", "recipient": "vendor", "token": "USDC", "amount": "10",
	})
	if status != http.StatusUnauthorized || resp.Error == nil {
		t.Fatalf("expected 401 for bad token, got %d %+v", status, resp.Error)
	}
}

func TestReadMethodsNeedNoAuth(t *testing.T) {
	s := newTestServer(t)
	var balance balanceResponse
	mustResult(t, s, "", "vault_balance", balanceParams{Token: "USDC"}, &balance)
	if balance.Balance != "1000" {
		t.Fatalf("expected balance 1000, got %s", balance.Balance)
	}
}

func TestMethodNotFound(t *testing.T) {
	s := newTestServer(t)
	status, resp := call(t, s, "", "vault_unknown", nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method-not-found error, got %+v", resp.Error)
	}
}

func TestParseError(t *testing.T) {
	s := newTestServer(t)
	httpReq := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httpReq)
	resp := &RPCResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != codeParseError {
		t.Fatalf("expected parse error, got %+v", resp.Error)
	}
}

func TestInvalidParams(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name   string
		method string
		params interface{}
	}{
		{"missing amount", "vault_propose", map[string]interface{}{"caller": "alice", "recipient": "vendor", "token": "USDC"}},
		{"zero amount", "vault_propose", map[string]interface{}{"caller": "alice", "recipient": "vendor", "token": "USDC", "amount": "0"}},
		{"bad priority", "vault_propose", map[string]interface{}{"caller": "alice", "recipient": "vendor", "token": "USDC", "amount": "5", "priority": "urgent"}},
		{"bad role", "vault_setRole", map[string]interface{}{"caller": "alice", "target": "bob", "role": "overlord"}},
		{"bad list mode", "vault_setListMode", map[string]interface{}{"caller": "alice", "mode": "greylist"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, resp := call(t, s, testToken, tc.method, tc.params)
			if status != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", status)
			}
			if resp.Error == nil || resp.Error.Code != codeInvalidParams {
				t.Fatalf("expected invalid-params error, got %+v", resp.Error)
			}
		})
	}
}

func TestExactlyOneParamObject(t *testing.T) {
	s := newTestServer(t)
	body := `{"jsonrpc":"2.0","id":1,"method":"vault_getProposal","params":[{"proposalId":1},{"proposalId":2}]}`
	httpReq := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httpReq)
	resp := &RPCResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid-params error, got %+v", resp.Error)
	}
}

func TestProposalLifecycle(t *testing.T) {
	s := newTestServer(t)

	var proposed proposeResponse
	mustResult(t, s, testToken, "vault_propose", proposeParams{
		Caller:    "alice",
		Recipient: "vendor",
		Token:     "USDC",
		Amount:    "250",
		Memo:      "invoice 42",
		Priority:  "high",
	}, &proposed)
	if proposed.ProposalID != 1 {
		t.Fatalf("expected proposal id 1, got %d", proposed.ProposalID)
	}

	mustResult(t, s, testToken, "vault_approve", voteParams{Caller: "alice", ProposalID: 1}, nil)
	mustResult(t, s, testToken, "vault_approve", voteParams{Caller: "bob", ProposalID: 1}, nil)

	var proposal ProposalResult
	mustResult(t, s, "", "vault_getProposal", proposalIDParams{ProposalID: 1}, &proposal)
	if proposal.Status != "approved" {
		t.Fatalf("expected approved, got %s", proposal.Status)
	}
	if len(proposal.Approvals) != 2 {
		t.Fatalf("expected 2 approvals, got %d", len(proposal.Approvals))
	}
	if proposal.Priority != "high" {
		t.Fatalf("expected priority high, got %s", proposal.Priority)
	}

	mustResult(t, s, testToken, "vault_execute", voteParams{Caller: "alice", ProposalID: 1}, nil)

	var balance balanceResponse
	mustResult(t, s, "", "vault_balance", balanceParams{Token: "USDC"}, &balance)
	if balance.Balance != "750" {
		t.Fatalf("expected vault balance 750, got %s", balance.Balance)
	}

	var spending spendingStatusResponse
	mustResult(t, s, "", "vault_spendingStatus", nil, &spending)
	if spending.DailySpent != "250" || spending.WeeklySpent != "250" {
		t.Fatalf("expected 250/250 spent, got %s/%s", spending.DailySpent, spending.WeeklySpent)
	}
}

func TestListByPriority(t *testing.T) {
	s := newTestServer(t)
	mustResult(t, s, testToken, "vault_propose", proposeParams{
		Caller: "alice", Recipient: "vendor", Token: "USDC", Amount: "10", Priority: "critical",
	}, nil)

	var listed listByPriorityResponse
	mustResult(t, s, "", "vault_listByPriority", listByPriorityParams{Priority: "critical"}, &listed)
	if len(listed.ProposalIDs) != 1 || listed.ProposalIDs[0] != 1 {
		t.Fatalf("expected [1], got %v", listed.ProposalIDs)
	}

	mustResult(t, s, "", "vault_listByPriority", listByPriorityParams{Priority: "low"}, &listed)
	if len(listed.ProposalIDs) != 0 {
		t.Fatalf("expected empty list, got %v", listed.ProposalIDs)
	}
}

func TestWhitelistFlow(t *testing.T) {
	s := newTestServer(t)
	mustResult(t, s, testToken, "vault_setListMode", setListModeParams{Caller: "alice", Mode: "whitelist"}, nil)
	mustResult(t, s, testToken, "vault_addToWhitelist", listEditParams{Caller: "alice", Address: "vendor"}, nil)

	var listed listQueryResponse
	mustResult(t, s, "", "vault_isWhitelisted", addressParams{Address: "vendor"}, &listed)
	if !listed.Listed {
		t.Fatalf("expected vendor whitelisted")
	}

	status, resp := call(t, s, testToken, "vault_propose", proposeParams{
		Caller: "alice", Recipient: "stranger", Token: "USDC", Amount: "10",
	})
	if status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}
	if resp.Error == nil || resp.Error.Code != codePolicy {
		t.Fatalf("expected policy error, got %+v", resp.Error)
	}
}

func TestEngineErrorMapping(t *testing.T) {
	s := newTestServer(t)

	status, resp := call(t, s, "", "vault_getProposal", proposalIDParams{ProposalID: 99})
	if status != http.StatusNotFound || resp.Error == nil || resp.Error.Code != codeNotFound {
		t.Fatalf("expected 404 not-found, got %d %+v", status, resp.Error)
	}

	// bob holds no admin role and may not assign roles.
	status, resp = call(t, s, testToken, "vault_setRole", setRoleParams{Caller: "bob", Target: "carol", Role: "treasurer"})
	if status != http.StatusForbidden || resp.Error == nil || resp.Error.Code != codeForbidden {
		t.Fatalf("expected 403 forbidden, got %d %+v", status, resp.Error)
	}

	// executing a pending proposal violates the status flow.
	mustResult(t, s, testToken, "vault_propose", proposeParams{
		Caller: "alice", Recipient: "vendor", Token: "USDC", Amount: "10",
	}, nil)
	status, resp = call(t, s, testToken, "vault_execute", voteParams{Caller: "alice", ProposalID: 1})
	if status != http.StatusConflict || resp.Error == nil || resp.Error.Code != codePolicy {
		t.Fatalf("expected 409 policy, got %d %+v", status, resp.Error)
	}
}

func TestCommentsOverRPC(t *testing.T) {
	s := newTestServer(t)
	mustResult(t, s, testToken, "vault_propose", proposeParams{
		Caller: "alice", Recipient: "vendor", Token: "USDC", Amount: "10",
	}, nil)

	var added addCommentResponse
	mustResult(t, s, testToken, "vault_addComment", addCommentParams{Caller: "alice", ProposalID: 1, Text: "looks fine"}, &added)
	if added.CommentID != 1 {
		t.Fatalf("expected comment id 1, got %d", added.CommentID)
	}
	mustResult(t, s, testToken, "vault_addComment", addCommentParams{Caller: "bob", ProposalID: 1, Text: "agreed", ParentID: 1}, &added)

	var comments proposalCommentsResponse
	mustResult(t, s, "", "vault_getProposalComments", proposalIDParams{ProposalID: 1}, &comments)
	if len(comments.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments.Comments))
	}
	if comments.Comments[1].ParentID != 1 {
		t.Fatalf("expected reply parent 1, got %d", comments.Comments[1].ParentID)
	}

	mustResult(t, s, testToken, "vault_editComment", editCommentParams{Caller: "alice", CommentID: 1, Text: "looks great"}, nil)
	var comment CommentResult
	mustResult(t, s, "", "vault_getComment", commentIDParams{CommentID: 1}, &comment)
	if comment.Text != "looks great" {
		t.Fatalf("expected edited text, got %q", comment.Text)
	}
}

func TestGetConfigRoundTrip(t *testing.T) {
	s := newTestServer(t)
	var cfg ConfigResult
	mustResult(t, s, "", "vault_getConfig", nil, &cfg)
	if len(cfg.Signers) != 2 {
		t.Fatalf("expected 2 signers, got %v", cfg.Signers)
	}
	if cfg.Strategy.Kind != "fixed" || cfg.Strategy.Threshold != 2 {
		t.Fatalf("unexpected strategy %+v", cfg.Strategy)
	}
	if cfg.TimelockThreshold != "1000000" {
		t.Fatalf("unexpected timelock threshold %s", cfg.TimelockThreshold)
	}
}

func TestDepositOverRPC(t *testing.T) {
	s := newTestServer(t)
	mustResult(t, s, testToken, "vault_deposit", depositParams{Caller: "alice", Token: "USDC", Amount: "500"}, nil)

	var balance balanceResponse
	mustResult(t, s, "", "vault_balance", balanceParams{Token: "USDC"}, &balance)
	if balance.Balance != "1500" {
		t.Fatalf("expected 1500, got %s", balance.Balance)
	}
}

func TestRateLimiting(t *testing.T) {
	s := newTestServer(t)
	s.limiter = newClientLimiter(1, 1)

	status, _ := call(t, s, "", "vault_getListMode", nil)
	if status != http.StatusOK {
		t.Fatalf("first request should pass, got %d", status)
	}
	status, resp := call(t, s, "", "vault_getListMode", nil)
	if status != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", status)
	}
	if resp.Error == nil || resp.Error.Code != codeRateLimited {
		t.Fatalf("expected rate-limited error, got %+v", resp.Error)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
