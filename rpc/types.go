package rpc

import (
	"fmt"
	"math/big"
	"strings"

	"vaultdao/native/vault"
)

// ProposalResult summarises a transfer proposal for RPC consumers. Amounts
// travel as decimal strings so clients never lose precision to JSON numbers.
type ProposalResult struct {
	ID             uint64            `json:"id"`
	Proposer       string            `json:"proposer"`
	Recipient      string            `json:"recipient"`
	Token          string            `json:"token"`
	Amount         string            `json:"amount"`
	Memo           string            `json:"memo,omitempty"`
	Priority       string            `json:"priority"`
	Conditions     []ConditionResult `json:"conditions,omitempty"`
	ConditionLogic string            `json:"conditionLogic"`
	Status         string            `json:"status"`
	Approvals      []string          `json:"approvals"`
	Abstentions    []string          `json:"abstentions,omitempty"`
	Attachments    []string          `json:"attachments,omitempty"`
	CreatedAt      uint64            `json:"createdAt"`
	UnlockLedger   uint64            `json:"unlockLedger,omitempty"`
}

type ConditionResult struct {
	Kind      string `json:"kind"`
	Threshold string `json:"threshold,omitempty"`
	Ledger    uint64 `json:"ledger,omitempty"`
}

type CommentResult struct {
	ID         uint64 `json:"id"`
	ProposalID uint64 `json:"proposalId"`
	Author     string `json:"author"`
	Text       string `json:"text"`
	ParentID   uint64 `json:"parentId,omitempty"`
	CreatedAt  uint64 `json:"createdAt"`
	EditedAt   uint64 `json:"editedAt,omitempty"`
}

type ConfigResult struct {
	Signers           []string       `json:"signers"`
	Strategy          StrategyResult `json:"strategy"`
	SpendingLimit     string         `json:"spendingLimit"`
	DailyLimit        string         `json:"dailyLimit"`
	WeeklyLimit       string         `json:"weeklyLimit"`
	TimelockThreshold string         `json:"timelockThreshold"`
	TimelockDelay     uint64         `json:"timelockDelay"`
	VelocityLimit     uint32         `json:"velocityLimit"`
	VelocityWindow    uint64         `json:"velocityWindow"`
}

type StrategyResult struct {
	Kind            string       `json:"kind"`
	Threshold       uint32       `json:"threshold,omitempty"`
	Percentage      uint32       `json:"percentage,omitempty"`
	Tiers           []TierResult `json:"tiers,omitempty"`
	InitialRequired uint32       `json:"initialRequired,omitempty"`
	ReducedRequired uint32       `json:"reducedRequired,omitempty"`
	ReductionDelay  uint64       `json:"reductionDelay,omitempty"`
}

type TierResult struct {
	AmountFloor string `json:"amountFloor"`
	Approvals   uint32 `json:"approvals"`
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func formatAddrs(addrs []vault.Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = string(a)
	}
	return out
}

func formatProposal(p *vault.Proposal) *ProposalResult {
	conditions := make([]ConditionResult, 0, len(p.Conditions))
	for _, cond := range p.Conditions {
		result := ConditionResult{Kind: formatConditionKind(cond.Kind), Ledger: cond.Ledger}
		if cond.Kind == vault.ConditionBalanceAbove {
			result.Threshold = formatAmount(cond.Threshold)
		}
		conditions = append(conditions, result)
	}
	return &ProposalResult{
		ID:             p.ID,
		Proposer:       string(p.Proposer),
		Recipient:      string(p.Recipient),
		Token:          p.Token,
		Amount:         formatAmount(p.Amount),
		Memo:           p.Memo,
		Priority:       formatPriority(p.Priority),
		Conditions:     conditions,
		ConditionLogic: formatLogic(p.ConditionLogic),
		Status:         formatStatus(p.Status),
		Approvals:      formatAddrs(p.Approvals),
		Abstentions:    formatAddrs(p.Abstentions),
		Attachments:    append([]string(nil), p.Attachments...),
		CreatedAt:      p.CreatedAt,
		UnlockLedger:   p.UnlockLedger,
	}
}

func formatComment(c *vault.Comment) *CommentResult {
	return &CommentResult{
		ID:         c.ID,
		ProposalID: c.ProposalID,
		Author:     string(c.Author),
		Text:       c.Text,
		ParentID:   c.ParentID,
		CreatedAt:  c.CreatedAt,
		EditedAt:   c.EditedAt,
	}
}

func formatStrategyKind(k vault.StrategyKind) string {
	switch k {
	case vault.StrategyFixed:
		return "fixed"
	case vault.StrategyPercentage:
		return "percentage"
	case vault.StrategyAmountTiered:
		return "tiered"
	case vault.StrategyTimeBased:
		return "timebased"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

func formatConfig(cfg *vault.Config) *ConfigResult {
	strategy := StrategyResult{Kind: formatStrategyKind(cfg.Strategy.Kind)}
	switch cfg.Strategy.Kind {
	case vault.StrategyFixed:
		strategy.Threshold = cfg.Strategy.Threshold
	case vault.StrategyPercentage:
		strategy.Percentage = cfg.Strategy.Percentage
	case vault.StrategyAmountTiered:
		strategy.Tiers = make([]TierResult, len(cfg.Strategy.Tiers))
		for i, tier := range cfg.Strategy.Tiers {
			strategy.Tiers[i] = TierResult{AmountFloor: formatAmount(tier.AmountFloor), Approvals: tier.Approvals}
		}
	case vault.StrategyTimeBased:
		strategy.InitialRequired = cfg.Strategy.TimeBased.Initial
		strategy.ReducedRequired = cfg.Strategy.TimeBased.Reduced
		strategy.ReductionDelay = cfg.Strategy.TimeBased.ReductionDelay
	}
	return &ConfigResult{
		Signers:           formatAddrs(cfg.Signers),
		Strategy:          strategy,
		SpendingLimit:     formatAmount(cfg.SpendingLimit),
		DailyLimit:        formatAmount(cfg.DailyLimit),
		WeeklyLimit:       formatAmount(cfg.WeeklyLimit),
		TimelockThreshold: formatAmount(cfg.TimelockThreshold),
		TimelockDelay:     cfg.TimelockDelay,
		VelocityLimit:     cfg.Velocity.Limit,
		VelocityWindow:    cfg.Velocity.Window,
	}
}

func formatPriority(p vault.Priority) string {
	switch p {
	case vault.PriorityLow:
		return "low"
	case vault.PriorityNormal:
		return "normal"
	case vault.PriorityHigh:
		return "high"
	case vault.PriorityCritical:
		return "critical"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

func parsePriority(value string) (vault.Priority, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return vault.PriorityLow, nil
	case "", "normal":
		return vault.PriorityNormal, nil
	case "high":
		return vault.PriorityHigh, nil
	case "critical":
		return vault.PriorityCritical, nil
	default:
		return 0, fmt.Errorf("unknown priority %q", value)
	}
}

func formatStatus(s vault.ProposalStatus) string {
	switch s {
	case vault.ProposalStatusPending:
		return "pending"
	case vault.ProposalStatusApproved:
		return "approved"
	case vault.ProposalStatusExecuted:
		return "executed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

func formatRole(r vault.Role) string {
	switch r {
	case vault.RoleMember:
		return "member"
	case vault.RoleTreasurer:
		return "treasurer"
	case vault.RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("unknown(%d)", r)
	}
}

func parseRole(value string) (vault.Role, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "member":
		return vault.RoleMember, nil
	case "treasurer":
		return vault.RoleTreasurer, nil
	case "admin":
		return vault.RoleAdmin, nil
	default:
		return 0, fmt.Errorf("unknown role %q", value)
	}
}

func formatListMode(m vault.ListMode) string {
	switch m {
	case vault.ListModeDisabled:
		return "disabled"
	case vault.ListModeWhitelist:
		return "whitelist"
	case vault.ListModeBlacklist:
		return "blacklist"
	default:
		return fmt.Sprintf("unknown(%d)", m)
	}
}

func parseListMode(value string) (vault.ListMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "disabled":
		return vault.ListModeDisabled, nil
	case "whitelist":
		return vault.ListModeWhitelist, nil
	case "blacklist":
		return vault.ListModeBlacklist, nil
	default:
		return 0, fmt.Errorf("unknown list mode %q", value)
	}
}

func formatConditionKind(k vault.ConditionKind) string {
	switch k {
	case vault.ConditionBalanceAbove:
		return "balanceAbove"
	case vault.ConditionDateAfter:
		return "dateAfter"
	case vault.ConditionDateBefore:
		return "dateBefore"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

func parseConditionKind(value string) (vault.ConditionKind, error) {
	switch strings.TrimSpace(value) {
	case "balanceAbove":
		return vault.ConditionBalanceAbove, nil
	case "dateAfter":
		return vault.ConditionDateAfter, nil
	case "dateBefore":
		return vault.ConditionDateBefore, nil
	default:
		return 0, fmt.Errorf("unknown condition kind %q", value)
	}
}

func formatLogic(l vault.ConditionLogic) string {
	if l == vault.ConditionLogicOr {
		return "or"
	}
	return "and"
}

func parseLogic(value string) (vault.ConditionLogic, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "and":
		return vault.ConditionLogicAnd, nil
	case "or":
		return vault.ConditionLogicOr, nil
	default:
		return 0, fmt.Errorf("unknown condition logic %q", value)
	}
}

func parseNonNegativeAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	normalized := strings.TrimPrefix(trimmed, "+")
	if strings.HasPrefix(normalized, "-") {
		return nil, fmt.Errorf("amount must not be negative")
	}
	amount, ok := new(big.Int).SetString(normalized, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount")
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return amount, nil
}

func parsePositiveAmount(value string) (*big.Int, error) {
	amount, err := parseNonNegativeAmount(value)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return amount, nil
}
