package vault

import (
	"math/big"
)

// Address identifies a caller, signer, or recipient. Authentication happens in
// the host layer; by the time an address reaches the engine it is assumed to
// have been verified.
type Address string

// Role enumerates the permission tiers recognised by the vault. The zero value
// is Member so addresses without an explicit assignment carry no privileges.
type Role uint8

const (
	// RoleMember is the default tier. Members may read vault state and
	// participate in comment threads but may not move funds.
	RoleMember Role = iota
	// RoleTreasurer may create, approve, and execute transfer proposals.
	RoleTreasurer
	// RoleAdmin holds every Treasurer capability plus role and list
	// administration.
	RoleAdmin
)

// Valid reports whether the role is one of the recognised tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleTreasurer, RoleAdmin:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer for logging and event emission.
func (r Role) String() string {
	switch r {
	case RoleTreasurer:
		return "treasurer"
	case RoleAdmin:
		return "admin"
	default:
		return "member"
	}
}

// ProposalStatus tracks the linear lifecycle of a transfer proposal. There is
// no rejected or cancelled state: a proposal either accrues enough approvals
// and executes, or it sits Pending indefinitely.
type ProposalStatus uint8

const (
	// ProposalStatusPending identifies proposals still collecting approvals.
	ProposalStatusPending ProposalStatus = iota
	// ProposalStatusApproved marks proposals that met the threshold and are
	// awaiting timelock expiry or execution.
	ProposalStatusApproved
	// ProposalStatusExecuted is terminal; the external transfer succeeded.
	ProposalStatusExecuted
)

// String implements fmt.Stringer for logging and event emission.
func (s ProposalStatus) String() string {
	switch s {
	case ProposalStatusApproved:
		return "approved"
	case ProposalStatusExecuted:
		return "executed"
	default:
		return "pending"
	}
}

// Priority classifies proposals for triage. It never influences approval
// counting; it only controls membership in the per-priority index.
type Priority uint8

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// Valid reports whether the priority is one of the four recognised levels.
func (p Priority) Valid() bool { return p <= PriorityCritical }

// String implements fmt.Stringer for logging and event emission.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "normal"
	}
}

// Priorities enumerates every priority level in ascending order. Callers that
// walk the per-priority index iterate over this slice rather than guessing at
// the numeric bounds.
var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical}

// ListMode selects which recipient list, if any, gates proposal creation.
type ListMode uint8

const (
	// ListModeDisabled performs no recipient screening.
	ListModeDisabled ListMode = iota
	// ListModeWhitelist requires the recipient to appear on the whitelist.
	ListModeWhitelist
	// ListModeBlacklist rejects recipients present on the blacklist.
	ListModeBlacklist
)

// Valid reports whether the mode is one of the recognised selectors.
func (m ListMode) Valid() bool { return m <= ListModeBlacklist }

// String implements fmt.Stringer for logging and event emission.
func (m ListMode) String() string {
	switch m {
	case ListModeWhitelist:
		return "whitelist"
	case ListModeBlacklist:
		return "blacklist"
	default:
		return "disabled"
	}
}

// StrategyKind discriminates the threshold strategy variants. Exactly one
// strategy is active per vault.
type StrategyKind uint8

const (
	// StrategyFixed requires a constant approval count taken from the
	// strategy's Threshold field.
	StrategyFixed StrategyKind = iota
	// StrategyPercentage requires ceil(Percentage/100 x signer count).
	StrategyPercentage
	// StrategyAmountTiered picks the approval count from the tier with the
	// greatest floor not exceeding the proposal amount.
	StrategyAmountTiered
	// StrategyTimeBased requires Initial approvals until ReductionDelay
	// ledger units have elapsed since creation, then Reduced.
	StrategyTimeBased
)

// AmountTier binds a transfer-amount floor to the approval count required at
// or above that floor. Tiers are supplied pre-sorted ascending by floor.
type AmountTier struct {
	AmountFloor *big.Int
	Approvals   uint32
}

// TimeBasedThreshold carries the parameters of the time-decaying strategy.
type TimeBasedThreshold struct {
	Initial        uint32
	Reduced        uint32
	ReductionDelay uint64
}

// ThresholdStrategy is the tagged variant describing how many approvals a
// proposal needs. Only the fields relevant to Kind are consulted.
type ThresholdStrategy struct {
	Kind       StrategyKind
	Threshold  uint32
	Percentage uint32
	Tiers      []AmountTier
	TimeBased  TimeBasedThreshold
}

// ConditionKind discriminates the execution-time predicate variants.
type ConditionKind uint8

const (
	// ConditionBalanceAbove holds when the vault's live balance of the
	// proposal token strictly exceeds Threshold.
	ConditionBalanceAbove ConditionKind = iota
	// ConditionDateAfter holds when the current ledger strictly exceeds
	// Ledger.
	ConditionDateAfter
	// ConditionDateBefore holds when the current ledger is strictly below
	// Ledger.
	ConditionDateBefore
)

// Condition is a predicate over live state gating execution. Conditions are
// never evaluated at approval time.
type Condition struct {
	Kind      ConditionKind
	Threshold *big.Int
	Ledger    uint64
}

// ConditionLogic selects how a proposal's conditions combine.
type ConditionLogic uint8

const (
	// ConditionLogicAnd requires every condition to hold.
	ConditionLogicAnd ConditionLogic = iota
	// ConditionLogicOr requires at least one condition to hold.
	ConditionLogicOr
)

// Valid reports whether the logic selector is recognised.
func (l ConditionLogic) Valid() bool { return l <= ConditionLogicOr }

// String implements fmt.Stringer for logging and event emission.
func (l ConditionLogic) String() string {
	if l == ConditionLogicOr {
		return "or"
	}
	return "and"
}

// VelocityConfig bounds how many proposals may be created inside a trailing
// window of ledger units.
type VelocityConfig struct {
	Limit  uint32
	Window uint64
}

// Config is the singleton vault policy. The signer set and strategy are
// mutable by an Admin after initialisation; every threshold evaluation reads
// the current values rather than a creation-time snapshot.
type Config struct {
	Signers           []Address
	Strategy          ThresholdStrategy
	SpendingLimit     *big.Int
	DailyLimit        *big.Int
	WeeklyLimit       *big.Int
	TimelockThreshold *big.Int
	TimelockDelay     uint64
	Velocity          VelocityConfig
}

// HasSigner reports whether addr is enumerated in the authorized signer set.
func (c *Config) HasSigner(addr Address) bool {
	if c == nil {
		return false
	}
	for _, s := range c.Signers {
		if s == addr {
			return true
		}
	}
	return false
}

// Proposal is a pending, approved, or executed transfer request. Approvals and
// abstentions are disjoint sets tracked by insertion order; duplicates are
// rejected by the engine before they reach storage.
type Proposal struct {
	ID             uint64
	Proposer       Address
	Recipient      Address
	Token          string
	Amount         *big.Int
	Memo           string
	Priority       Priority
	Conditions     []Condition
	ConditionLogic ConditionLogic
	Status         ProposalStatus
	Approvals      []Address
	Abstentions    []Address
	Attachments    []string
	CreatedAt      uint64
	UnlockLedger   uint64
}

// HasVoted reports whether addr already appears among the approvals or the
// abstentions. A signer votes at most once, in either direction.
func (p *Proposal) HasVoted(addr Address) bool {
	if p == nil {
		return false
	}
	for _, a := range p.Approvals {
		if a == addr {
			return true
		}
	}
	for _, a := range p.Abstentions {
		if a == addr {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand proposals across API
// boundaries without aliasing engine-owned state.
func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Amount != nil {
		clone.Amount = new(big.Int).Set(p.Amount)
	}
	clone.Conditions = append([]Condition(nil), p.Conditions...)
	for i, cond := range clone.Conditions {
		if cond.Threshold != nil {
			clone.Conditions[i].Threshold = new(big.Int).Set(cond.Threshold)
		}
	}
	clone.Approvals = append([]Address(nil), p.Approvals...)
	clone.Abstentions = append([]Address(nil), p.Abstentions...)
	clone.Attachments = append([]string(nil), p.Attachments...)
	return &clone
}

// Comment is a discussion entry attached to a proposal. ParentID of zero marks
// a top-level comment; otherwise it references the comment being replied to.
type Comment struct {
	ID         uint64
	ProposalID uint64
	Author     Address
	Text       string
	ParentID   uint64
	CreatedAt  uint64
	EditedAt   uint64
}

// SpendRecord logs an executed transfer for the advisory daily and weekly
// aggregate caps.
type SpendRecord struct {
	Ledger uint64
	Amount *big.Int
}
