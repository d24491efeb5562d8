package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"vaultdao/native/vault"
)

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		return fmt.Errorf("invalid parameter object: %w", err)
	}
	return nil
}

type strategyParams struct {
	Kind            string       `json:"kind"`
	Threshold       uint32       `json:"threshold,omitempty"`
	Percentage      uint32       `json:"percentage,omitempty"`
	Tiers           []tierParams `json:"tiers,omitempty"`
	InitialRequired uint32       `json:"initialRequired,omitempty"`
	ReducedRequired uint32       `json:"reducedRequired,omitempty"`
	ReductionDelay  uint64       `json:"reductionDelay,omitempty"`
}

type tierParams struct {
	AmountFloor string `json:"amountFloor"`
	Approvals   uint32 `json:"approvals"`
}

type configParams struct {
	Caller            string         `json:"caller"`
	Signers           []string       `json:"signers"`
	Strategy          strategyParams `json:"strategy"`
	SpendingLimit     string         `json:"spendingLimit,omitempty"`
	DailyLimit        string         `json:"dailyLimit,omitempty"`
	WeeklyLimit       string         `json:"weeklyLimit,omitempty"`
	TimelockThreshold string         `json:"timelockThreshold,omitempty"`
	TimelockDelay     uint64         `json:"timelockDelay,omitempty"`
	VelocityLimit     uint32         `json:"velocityLimit,omitempty"`
	VelocityWindow    uint64         `json:"velocityWindow,omitempty"`
}

func (p *configParams) vaultConfig() (vault.Config, error) {
	strategy, err := p.Strategy.vaultStrategy()
	if err != nil {
		return vault.Config{}, err
	}
	spending, err := parseNonNegativeAmount(p.SpendingLimit)
	if err != nil {
		return vault.Config{}, fmt.Errorf("spendingLimit: %w", err)
	}
	daily, err := parseNonNegativeAmount(p.DailyLimit)
	if err != nil {
		return vault.Config{}, fmt.Errorf("dailyLimit: %w", err)
	}
	weekly, err := parseNonNegativeAmount(p.WeeklyLimit)
	if err != nil {
		return vault.Config{}, fmt.Errorf("weeklyLimit: %w", err)
	}
	timelock, err := parseNonNegativeAmount(p.TimelockThreshold)
	if err != nil {
		return vault.Config{}, fmt.Errorf("timelockThreshold: %w", err)
	}
	signers := make([]vault.Address, len(p.Signers))
	for i, s := range p.Signers {
		signers[i] = vault.Address(s)
	}
	velocityLimit := p.VelocityLimit
	if velocityLimit == 0 {
		velocityLimit = 10
	}
	velocityWindow := p.VelocityWindow
	if velocityWindow == 0 {
		velocityWindow = 3_600
	}
	return vault.Config{
		Signers:           signers,
		Strategy:          strategy,
		SpendingLimit:     spending,
		DailyLimit:        daily,
		WeeklyLimit:       weekly,
		TimelockThreshold: timelock,
		TimelockDelay:     p.TimelockDelay,
		Velocity:          vault.VelocityConfig{Limit: velocityLimit, Window: velocityWindow},
	}, nil
}

func (p *strategyParams) vaultStrategy() (vault.ThresholdStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(p.Kind)) {
	case "fixed":
		return vault.ThresholdStrategy{Kind: vault.StrategyFixed, Threshold: p.Threshold}, nil
	case "percentage":
		return vault.ThresholdStrategy{Kind: vault.StrategyPercentage, Percentage: p.Percentage}, nil
	case "tiered":
		tiers := make([]vault.AmountTier, len(p.Tiers))
		for i, tier := range p.Tiers {
			floor, err := parseNonNegativeAmount(tier.AmountFloor)
			if err != nil {
				return vault.ThresholdStrategy{}, fmt.Errorf("tier %d: %w", i, err)
			}
			tiers[i] = vault.AmountTier{AmountFloor: floor, Approvals: tier.Approvals}
		}
		return vault.ThresholdStrategy{Kind: vault.StrategyAmountTiered, Tiers: tiers}, nil
	case "timebased":
		return vault.ThresholdStrategy{
			Kind: vault.StrategyTimeBased,
			TimeBased: vault.TimeBasedThreshold{
				Initial:        p.InitialRequired,
				Reduced:        p.ReducedRequired,
				ReductionDelay: p.ReductionDelay,
			},
		}, nil
	default:
		return vault.ThresholdStrategy{}, fmt.Errorf("unknown strategy kind %q", p.Kind)
	}
}

type ackResponse struct {
	OK bool `json:"ok"`
}

func (s *Server) handleInitialize(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params configParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if strings.TrimSpace(params.Caller) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "caller is required", nil)
		return
	}
	cfg, err := params.vaultConfig()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.Initialize(vault.Address(params.Caller), cfg); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResponse{OK: true})
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params configParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	cfg, err := params.vaultConfig()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.UpdateConfig(vault.Address(params.Caller), cfg); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResponse{OK: true})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	cfg, err := s.node.Config()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatConfig(cfg))
}

type conditionParams struct {
	Kind      string `json:"kind"`
	Threshold string `json:"threshold,omitempty"`
	Ledger    uint64 `json:"ledger,omitempty"`
}

type proposeParams struct {
	Caller         string            `json:"caller"`
	Recipient      string            `json:"recipient"`
	Token          string            `json:"token"`
	Amount         string            `json:"amount"`
	Memo           string            `json:"memo,omitempty"`
	Priority       string            `json:"priority,omitempty"`
	Conditions     []conditionParams `json:"conditions,omitempty"`
	ConditionLogic string            `json:"conditionLogic,omitempty"`
}

type proposeResponse struct {
	ProposalID uint64 `json:"proposalId"`
}

func (s *Server) handlePropose(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params proposeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	for _, required := range []struct {
		name  string
		value string
	}{
		{"caller", params.Caller},
		{"recipient", params.Recipient},
		{"token", params.Token},
	} {
		if strings.TrimSpace(required.value) == "" {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, required.name+" is required", nil)
			return
		}
	}
	amount, err := parsePositiveAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "amount: "+err.Error(), nil)
		return
	}
	priority, err := parsePriority(params.Priority)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	logic, err := parseLogic(params.ConditionLogic)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	conditions := make([]vault.Condition, 0, len(params.Conditions))
	for i, cond := range params.Conditions {
		kind, err := parseConditionKind(cond.Kind)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, fmt.Sprintf("condition %d: %v", i, err), nil)
			return
		}
		parsed := vault.Condition{Kind: kind, Ledger: cond.Ledger}
		if kind == vault.ConditionBalanceAbove {
			threshold, err := parseNonNegativeAmount(cond.Threshold)
			if err != nil {
				writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, fmt.Sprintf("condition %d threshold: %v", i, err), nil)
				return
			}
			parsed.Threshold = threshold
		}
		conditions = append(conditions, parsed)
	}

	id, err := s.node.ProposeTransfer(vault.Address(params.Caller), vault.Address(params.Recipient), params.Token, amount, params.Memo, priority, conditions, logic)
	if err != nil {
		s.metrics.ObservePolicyRejection("propose")
		writeEngineError(w, req.ID, err)
		return
	}
	s.metrics.ObserveProposalCreated(formatPriority(priority))
	writeResult(w, req.ID, proposeResponse{ProposalID: id})
}

type voteParams struct {
	Caller     string `json:"caller"`
	ProposalID uint64 `json:"proposalId"`
}

func (s *Server) handleApprove(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params voteParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.Approve(vault.Address(params.Caller), params.ProposalID); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	s.metrics.ObserveVote("approve")
	writeResult(w, req.ID, ackResponse{OK: true})
}

func (s *Server) handleAbstain(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params voteParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.Abstain(vault.Address(params.Caller), params.ProposalID); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	s.metrics.ObserveVote("abstain")
	writeResult(w, req.ID, ackResponse{OK: true})
}

func (s *Server) handleExecute(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params voteParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.Execute(vault.Address(params.Caller), params.ProposalID); err != nil {
		s.metrics.ObserveExecution("failed")
		writeEngineError(w, req.ID, err)
		return
	}
	s.metrics.ObserveExecution("ok")
	writeResult(w, req.ID, ackResponse{OK: true})
}

type changePriorityParams struct {
	Caller     string `json:"caller"`
	ProposalID uint64 `json:"proposalId"`
	Priority   string `json:"priority"`
}

func (s *Server) handleChangePriority(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params changePriorityParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	priority, err := parsePriority(params.Priority)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.ChangePriority(vault.Address(params.Caller), params.ProposalID, priority); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResponse{OK: true})
}

type proposalIDParams struct {
	ProposalID uint64 `json:"proposalId"`
}

func (s *Server) handleGetProposal(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params proposalIDParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	proposal, err := s.node.GetProposal(params.ProposalID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatProposal(proposal))
}

type listByPriorityParams struct {
	Priority string `json:"priority"`
}

type listByPriorityResponse struct {
	Priority    string   `json:"priority"`
	ProposalIDs []uint64 `json:"proposalIds"`
}

func (s *Server) handleListByPriority(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params listByPriorityParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	priority, err := parsePriority(params.Priority)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	ids, err := s.node.ProposalsByPriority(priority)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if ids == nil {
		ids = []uint64{}
	}
	writeResult(w, req.ID, listByPriorityResponse{Priority: formatPriority(priority), ProposalIDs: ids})
}

type setRoleParams struct {
	Caller string `json:"caller"`
	Target string `json:"target"`
	Role   string `json:"role"`
}

func (s *Server) handleSetRole(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params setRoleParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	role, err := parseRole(params.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.SetRole(vault.Address(params.Caller), vault.Address(params.Target), role); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResponse{OK: true})
}

type addressParams struct {
	Address string `json:"address"`
}

type roleResponse struct {
	Address string `json:"address"`
	Role    string `json:"role"`
}

func (s *Server) handleGetRole(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params addressParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	role, err := s.node.Role(vault.Address(params.Address))
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, roleResponse{Address: params.Address, Role: formatRole(role)})
}

type setListModeParams struct {
	Caller string `json:"caller"`
	Mode   string `json:"mode"`
}

func (s *Server) handleSetListMode(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params setListModeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	mode, err := parseListMode(params.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.SetListMode(vault.Address(params.Caller), mode); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResponse{OK: true})
}

type listModeResponse struct {
	Mode string `json:"mode"`
}

func (s *Server) handleGetListMode(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	mode, err := s.node.ListMode()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, listModeResponse{Mode: formatListMode(mode)})
}

type listEditParams struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
}

func (s *Server) handleListEdit(w http.ResponseWriter, req *RPCRequest, edit func(caller, addr vault.Address) error) {
	var params listEditParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if strings.TrimSpace(params.Address) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "address is required", nil)
		return
	}
	if err := edit(vault.Address(params.Caller), vault.Address(params.Address)); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResponse{OK: true})
}

func (s *Server) handleAddToWhitelist(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.handleListEdit(w, req, s.node.AddToWhitelist)
}

func (s *Server) handleRemoveFromWhitelist(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.handleListEdit(w, req, s.node.RemoveFromWhitelist)
}

func (s *Server) handleAddToBlacklist(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.handleListEdit(w, req, s.node.AddToBlacklist)
}

func (s *Server) handleRemoveFromBlacklist(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.handleListEdit(w, req, s.node.RemoveFromBlacklist)
}

type listQueryResponse struct {
	Address string `json:"address"`
	Listed  bool   `json:"listed"`
}

func (s *Server) handleIsWhitelisted(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params addressParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	listed, err := s.node.IsWhitelisted(vault.Address(params.Address))
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, listQueryResponse{Address: params.Address, Listed: listed})
}

func (s *Server) handleIsBlacklisted(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params addressParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	listed, err := s.node.IsBlacklisted(vault.Address(params.Address))
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, listQueryResponse{Address: params.Address, Listed: listed})
}

type addCommentParams struct {
	Caller     string `json:"caller"`
	ProposalID uint64 `json:"proposalId"`
	Text       string `json:"text"`
	ParentID   uint64 `json:"parentId,omitempty"`
}

type addCommentResponse struct {
	CommentID uint64 `json:"commentId"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params addCommentParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if strings.TrimSpace(params.Text) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "text is required", nil)
		return
	}
	id, err := s.node.AddComment(vault.Address(params.Caller), params.ProposalID, params.Text, params.ParentID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, addCommentResponse{CommentID: id})
}

type editCommentParams struct {
	Caller    string `json:"caller"`
	CommentID uint64 `json:"commentId"`
	Text      string `json:"text"`
}

func (s *Server) handleEditComment(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params editCommentParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if strings.TrimSpace(params.Text) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "text is required", nil)
		return
	}
	if err := s.node.EditComment(vault.Address(params.Caller), params.CommentID, params.Text); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResponse{OK: true})
}

type commentIDParams struct {
	CommentID uint64 `json:"commentId"`
}

func (s *Server) handleGetComment(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params commentIDParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	comment, err := s.node.GetComment(params.CommentID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatComment(comment))
}

type proposalCommentsResponse struct {
	ProposalID uint64           `json:"proposalId"`
	Comments   []*CommentResult `json:"comments"`
}

func (s *Server) handleGetProposalComments(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params proposalIDParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	comments, err := s.node.ProposalComments(params.ProposalID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	results := make([]*CommentResult, len(comments))
	for i, comment := range comments {
		results[i] = formatComment(comment)
	}
	writeResult(w, req.ID, proposalCommentsResponse{ProposalID: params.ProposalID, Comments: results})
}

type addAttachmentParams struct {
	Caller     string `json:"caller"`
	ProposalID uint64 `json:"proposalId"`
	Hash       string `json:"hash"`
}

func (s *Server) handleAddAttachment(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params addAttachmentParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if strings.TrimSpace(params.Hash) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "hash is required", nil)
		return
	}
	if err := s.node.AddAttachment(vault.Address(params.Caller), params.ProposalID, params.Hash); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResponse{OK: true})
}

type removeAttachmentParams struct {
	Caller     string `json:"caller"`
	ProposalID uint64 `json:"proposalId"`
	Index      uint32 `json:"index"`
}

func (s *Server) handleRemoveAttachment(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params removeAttachmentParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.RemoveAttachment(vault.Address(params.Caller), params.ProposalID, params.Index); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResponse{OK: true})
}

type spendingStatusResponse struct {
	DailySpent  string `json:"dailySpent"`
	WeeklySpent string `json:"weeklySpent"`
	DailyLimit  string `json:"dailyLimit"`
	WeeklyLimit string `json:"weeklyLimit"`
}

func (s *Server) handleSpendingStatus(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	daily, weekly, err := s.node.SpendingStatus()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	cfg, err := s.node.Config()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, spendingStatusResponse{
		DailySpent:  formatAmount(daily),
		WeeklySpent: formatAmount(weekly),
		DailyLimit:  formatAmount(cfg.DailyLimit),
		WeeklyLimit: formatAmount(cfg.WeeklyLimit),
	})
}

type depositParams struct {
	Caller string `json:"caller"`
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params depositParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if strings.TrimSpace(params.Token) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "token is required", nil)
		return
	}
	amount, err := parsePositiveAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "amount: "+err.Error(), nil)
		return
	}
	if err := s.node.Deposit(vault.Address(params.Caller), params.Token, amount); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ackResponse{OK: true})
}

type balanceParams struct {
	Token string `json:"token"`
}

type balanceResponse struct {
	Token   string `json:"token"`
	Balance string `json:"balance"`
}

func (s *Server) handleBalance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params balanceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	balance, err := s.node.Balance(params.Token)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balanceResponse{Token: params.Token, Balance: formatAmount(balance)})
}
