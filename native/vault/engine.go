package vault

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"vaultdao/core/events"
)

// Trailing windows for the advisory spend aggregates, in ledger units.
// Deployments that stamp ledgers with unix seconds get calendar day and week
// windows for free.
const (
	spendDayWindow  uint64 = 86_400
	spendWeekWindow uint64 = 604_800
)

var errStateNotConfigured = errors.New("vault: state not configured")

// vaultState is the narrow persistence contract the engine depends on. The
// production implementation lives in core/state; tests substitute an
// in-memory mock.
type vaultState interface {
	VaultConfig() (*Config, bool, error)
	VaultPutConfig(*Config) error

	VaultNextProposalID() (uint64, error)
	VaultPutProposal(*Proposal) error
	VaultGetProposal(id uint64) (*Proposal, bool, error)
	VaultPriorityIndexAdd(priority Priority, id uint64) error
	VaultPriorityIndexRemove(priority Priority, id uint64) error
	VaultPriorityIndex(priority Priority) ([]uint64, error)

	VaultRole(addr Address) (Role, error)
	VaultSetRole(addr Address, role Role) error

	VaultListMode() (ListMode, error)
	VaultSetListMode(mode ListMode) error
	VaultListAdd(mode ListMode, addr Address) (bool, error)
	VaultListRemove(mode ListMode, addr Address) error
	VaultListContains(mode ListMode, addr Address) (bool, error)

	VaultVelocityLog() ([]uint64, error)
	VaultPutVelocityLog(entries []uint64) error
	VaultSpendLog() ([]SpendRecord, error)
	VaultPutSpendLog(records []SpendRecord) error

	VaultNextCommentID() (uint64, error)
	VaultPutComment(*Comment) error
	VaultGetComment(id uint64) (*Comment, bool, error)
	VaultCommentIndex(proposalID uint64) ([]uint64, error)
	VaultCommentIndexAppend(proposalID, commentID uint64) error
}

// TokenLedger is the external value-transfer collaborator. Balance reports the
// vault's live holding of a token; Transfer moves funds out of the vault and
// is invoked only at execution time. Transfer failures propagate to the caller
// untranslated so policy rejections stay distinguishable from fund movement
// problems.
type TokenLedger interface {
	Balance(token string) (*big.Int, error)
	Transfer(token string, to Address, amount *big.Int) error
}

// Engine orchestrates the proposal authorization state machine: creation
// gating (roles, list registry, velocity), approval and abstention
// bookkeeping, threshold evaluation, timelock computation, and conditional
// execution. Callers are responsible for serialising access; the engine holds
// no locks of its own.
type Engine struct {
	state   vaultState
	ledger  TokenLedger
	emitter events.Emitter
	nowFn   func() uint64
}

// NewEngine constructs a vault engine with default no-op dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// SetState wires the engine to the state backend providing persistence helpers.
func (e *Engine) SetState(state vaultState) { e.state = state }

// SetTokenLedger configures the external transfer collaborator.
func (e *Engine) SetTokenLedger(ledger TokenLedger) { e.ledger = ledger }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the ledger clock. Nil restores the default unix-second
// source. Primarily intended for tests to provide deterministic sequences.
func (e *Engine) SetNowFunc(now func() uint64) {
	if now == nil {
		e.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(event *events.Record) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(event)
}

func (e *Engine) now() uint64 {
	if e == nil || e.nowFn == nil {
		return uint64(time.Now().Unix())
	}
	return e.nowFn()
}

func (e *Engine) config() (*Config, error) {
	if e == nil || e.state == nil {
		return nil, errStateNotConfigured
	}
	cfg, ok, err := e.state.VaultConfig()
	if err != nil {
		return nil, err
	}
	if !ok || cfg == nil {
		return nil, ErrNotInitialized
	}
	return cfg, nil
}

func (e *Engine) loadProposal(id uint64) (*Proposal, error) {
	if e == nil || e.state == nil {
		return nil, errStateNotConfigured
	}
	proposal, ok, err := e.state.VaultGetProposal(id)
	if err != nil {
		return nil, err
	}
	if !ok || proposal == nil {
		return nil, fmt.Errorf("%w: id %d", ErrProposalNotFound, id)
	}
	return proposal, nil
}

func (e *Engine) requireAdmin(caller Address) error {
	role, err := e.state.VaultRole(caller)
	if err != nil {
		return err
	}
	if role != RoleAdmin {
		return ErrInsufficientRole
	}
	return nil
}

func (e *Engine) requireTreasury(caller Address) error {
	role, err := e.state.VaultRole(caller)
	if err != nil {
		return err
	}
	if role != RoleAdmin && role != RoleTreasurer {
		return ErrInsufficientRole
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config must not be nil", ErrInvalidConfig)
	}
	if len(cfg.Signers) == 0 {
		return fmt.Errorf("%w: signer set must not be empty", ErrInvalidConfig)
	}
	seen := make(map[Address]struct{}, len(cfg.Signers))
	for _, signer := range cfg.Signers {
		if strings.TrimSpace(string(signer)) == "" {
			return fmt.Errorf("%w: signer address must not be empty", ErrInvalidConfig)
		}
		if _, ok := seen[signer]; ok {
			return fmt.Errorf("%w: duplicate signer %s", ErrInvalidConfig, signer)
		}
		seen[signer] = struct{}{}
	}
	if err := ValidateStrategy(cfg.Strategy, len(cfg.Signers)); err != nil {
		return err
	}
	for _, limit := range []*big.Int{cfg.SpendingLimit, cfg.DailyLimit, cfg.WeeklyLimit, cfg.TimelockThreshold} {
		if limit != nil && limit.Sign() < 0 {
			return fmt.Errorf("%w: limits must not be negative", ErrInvalidConfig)
		}
	}
	if cfg.Velocity.Limit == 0 {
		return fmt.Errorf("%w: velocity limit must be positive", ErrInvalidConfig)
	}
	if cfg.Velocity.Window == 0 {
		return fmt.Errorf("%w: velocity window must be positive", ErrInvalidConfig)
	}
	normalizeLimits(cfg)
	return nil
}

// normalizeLimits rewrites absent limits as explicit zeroes so the installed
// policy matches its stored encoding exactly.
func normalizeLimits(cfg *Config) {
	for _, limit := range []**big.Int{&cfg.SpendingLimit, &cfg.DailyLimit, &cfg.WeeklyLimit, &cfg.TimelockThreshold} {
		if *limit == nil {
			*limit = big.NewInt(0)
		}
	}
	for i := range cfg.Strategy.Tiers {
		if cfg.Strategy.Tiers[i].AmountFloor == nil {
			cfg.Strategy.Tiers[i].AmountFloor = big.NewInt(0)
		}
	}
}

// Initialize installs the vault policy exactly once and grants the
// initialising identity the Admin role.
func (e *Engine) Initialize(admin Address, cfg Config) error {
	if e == nil || e.state == nil {
		return errStateNotConfigured
	}
	if strings.TrimSpace(string(admin)) == "" {
		return fmt.Errorf("%w: admin address must not be empty", ErrInvalidConfig)
	}
	if _, ok, err := e.state.VaultConfig(); err != nil {
		return err
	} else if ok {
		return ErrAlreadyInitialized
	}
	if err := validateConfig(&cfg); err != nil {
		return err
	}
	if err := e.state.VaultPutConfig(&cfg); err != nil {
		return err
	}
	if err := e.state.VaultSetRole(admin, RoleAdmin); err != nil {
		return err
	}
	e.emit(newRoleSetEvent(admin, RoleAdmin))
	return nil
}

// UpdateConfig replaces the vault policy. Admin only. Threshold evaluation is
// never snapshotted, so pending proposals immediately feel the new signer set
// and strategy on their next approval.
func (e *Engine) UpdateConfig(caller Address, cfg Config) error {
	if _, err := e.config(); err != nil {
		return err
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if err := validateConfig(&cfg); err != nil {
		return err
	}
	return e.state.VaultPutConfig(&cfg)
}

// Config returns a copy of the active vault policy.
func (e *Engine) Config() (*Config, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	clone := *cfg
	clone.Signers = append([]Address(nil), cfg.Signers...)
	for _, pair := range []struct {
		src *big.Int
		dst **big.Int
	}{
		{cfg.SpendingLimit, &clone.SpendingLimit},
		{cfg.DailyLimit, &clone.DailyLimit},
		{cfg.WeeklyLimit, &clone.WeeklyLimit},
		{cfg.TimelockThreshold, &clone.TimelockThreshold},
	} {
		if pair.src != nil {
			*pair.dst = new(big.Int).Set(pair.src)
		}
	}
	clone.Strategy.Tiers = append([]AmountTier(nil), cfg.Strategy.Tiers...)
	for i, tier := range clone.Strategy.Tiers {
		if tier.AmountFloor != nil {
			clone.Strategy.Tiers[i].AmountFloor = new(big.Int).Set(tier.AmountFloor)
		}
	}
	return &clone, nil
}

// SetRole assigns a permission tier to target. Admin only.
func (e *Engine) SetRole(caller, target Address, role Role) error {
	if _, err := e.config(); err != nil {
		return err
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %d", ErrInvalidConfig, role)
	}
	if strings.TrimSpace(string(target)) == "" {
		return fmt.Errorf("%w: target address must not be empty", ErrInvalidConfig)
	}
	if err := e.state.VaultSetRole(target, role); err != nil {
		return err
	}
	e.emit(newRoleSetEvent(target, role))
	return nil
}

// Role reports the tier assigned to addr. Addresses without an assignment are
// Members.
func (e *Engine) Role(addr Address) (Role, error) {
	if e == nil || e.state == nil {
		return RoleMember, errStateNotConfigured
	}
	return e.state.VaultRole(addr)
}

// SetListMode switches the recipient screening mode. Admin only.
func (e *Engine) SetListMode(caller Address, mode ListMode) error {
	if _, err := e.config(); err != nil {
		return err
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown list mode %d", ErrInvalidConfig, mode)
	}
	if err := e.state.VaultSetListMode(mode); err != nil {
		return err
	}
	e.emit(newListModeSetEvent(mode))
	return nil
}

// ListMode reports the active recipient screening mode.
func (e *Engine) ListMode() (ListMode, error) {
	if e == nil || e.state == nil {
		return ListModeDisabled, errStateNotConfigured
	}
	return e.state.VaultListMode()
}

func (e *Engine) listAdd(caller Address, mode ListMode, addr Address) error {
	if _, err := e.config(); err != nil {
		return err
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	added, err := e.state.VaultListAdd(mode, addr)
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("%w: %s", ErrAddressAlreadyOnList, addr)
	}
	return nil
}

func (e *Engine) listRemove(caller Address, mode ListMode, addr Address) error {
	if _, err := e.config(); err != nil {
		return err
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	return e.state.VaultListRemove(mode, addr)
}

// AddToWhitelist registers addr on the whitelist. Duplicate adds fail with
// ErrAddressAlreadyOnList. Admin only.
func (e *Engine) AddToWhitelist(caller, addr Address) error {
	return e.listAdd(caller, ListModeWhitelist, addr)
}

// RemoveFromWhitelist drops addr from the whitelist. Removing an absent
// address is a no-op. Admin only.
func (e *Engine) RemoveFromWhitelist(caller, addr Address) error {
	return e.listRemove(caller, ListModeWhitelist, addr)
}

// AddToBlacklist registers addr on the blacklist. Duplicate adds fail with
// ErrAddressAlreadyOnList. Admin only.
func (e *Engine) AddToBlacklist(caller, addr Address) error {
	return e.listAdd(caller, ListModeBlacklist, addr)
}

// RemoveFromBlacklist drops addr from the blacklist. Removing an absent
// address is a no-op. Admin only.
func (e *Engine) RemoveFromBlacklist(caller, addr Address) error {
	return e.listRemove(caller, ListModeBlacklist, addr)
}

// IsWhitelisted reports whitelist membership regardless of the active mode.
func (e *Engine) IsWhitelisted(addr Address) (bool, error) {
	if e == nil || e.state == nil {
		return false, errStateNotConfigured
	}
	return e.state.VaultListContains(ListModeWhitelist, addr)
}

// IsBlacklisted reports blacklist membership regardless of the active mode.
func (e *Engine) IsBlacklisted(addr Address) (bool, error) {
	if e == nil || e.state == nil {
		return false, errStateNotConfigured
	}
	return e.state.VaultListContains(ListModeBlacklist, addr)
}

// checkRecipient screens the recipient against whichever list the active mode
// selects. Only one list is ever consulted.
func (e *Engine) checkRecipient(recipient Address) error {
	mode, err := e.state.VaultListMode()
	if err != nil {
		return err
	}
	switch mode {
	case ListModeWhitelist:
		ok, err := e.state.VaultListContains(ListModeWhitelist, recipient)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrRecipientNotWhitelisted, recipient)
		}
	case ListModeBlacklist:
		ok, err := e.state.VaultListContains(ListModeBlacklist, recipient)
		if err != nil {
			return err
		}
		if ok {
			return fmt.Errorf("%w: %s", ErrRecipientBlacklisted, recipient)
		}
	}
	return nil
}

// checkVelocity counts creation timestamps inside the trailing window ending
// at now and rejects when admitting one more would exceed the limit. The log
// is compacted to in-window entries as a side effect of the next write; stale
// entries are merely ignored here.
func (e *Engine) checkVelocity(cfg *Config, now uint64) error {
	entries, err := e.state.VaultVelocityLog()
	if err != nil {
		return err
	}
	var count uint32
	for _, t := range entries {
		if inWindow(t, now, cfg.Velocity.Window) {
			count++
		}
	}
	if count+1 > cfg.Velocity.Limit {
		return ErrVelocityLimitExceeded
	}
	return nil
}

func (e *Engine) recordVelocityEntry(cfg *Config, now uint64) error {
	entries, err := e.state.VaultVelocityLog()
	if err != nil {
		return err
	}
	compacted := make([]uint64, 0, len(entries)+1)
	for _, t := range entries {
		if inWindow(t, now, cfg.Velocity.Window) {
			compacted = append(compacted, t)
		}
	}
	compacted = append(compacted, now)
	return e.state.VaultPutVelocityLog(compacted)
}

func inWindow(t, now, window uint64) bool {
	if t > now {
		return false
	}
	return now-t <= window
}

// ProposeTransfer admits a new transfer proposal after the caller's role, the
// recipient list, the per-transfer spending limit, and the velocity window all
// pass. The allocated proposal identifier is returned on success.
func (e *Engine) ProposeTransfer(caller, recipient Address, token string, amount *big.Int, memo string, priority Priority, conditions []Condition, logic ConditionLogic) (uint64, error) {
	cfg, err := e.config()
	if err != nil {
		return 0, err
	}
	if err := e.requireTreasury(caller); err != nil {
		return 0, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	if cfg.SpendingLimit != nil && cfg.SpendingLimit.Sign() > 0 && amount.Cmp(cfg.SpendingLimit) > 0 {
		return 0, fmt.Errorf("%w: amount %s over limit %s", ErrSpendingLimitExceeded, amount, cfg.SpendingLimit)
	}
	if !priority.Valid() {
		return 0, fmt.Errorf("%w: unknown priority %d", ErrInvalidConfig, priority)
	}
	if !logic.Valid() {
		return 0, fmt.Errorf("%w: unknown condition logic %d", ErrInvalidConfig, logic)
	}
	if err := e.checkRecipient(recipient); err != nil {
		return 0, err
	}
	now := e.now()
	if err := e.checkVelocity(cfg, now); err != nil {
		return 0, err
	}

	id, err := e.state.VaultNextProposalID()
	if err != nil {
		return 0, err
	}
	proposal := &Proposal{
		ID:             id,
		Proposer:       caller,
		Recipient:      recipient,
		Token:          token,
		Amount:         new(big.Int).Set(amount),
		Memo:           memo,
		Priority:       priority,
		Conditions:     cloneConditions(conditions),
		ConditionLogic: logic,
		Status:         ProposalStatusPending,
		CreatedAt:      now,
	}
	if err := e.state.VaultPutProposal(proposal); err != nil {
		return 0, err
	}
	if err := e.state.VaultPriorityIndexAdd(priority, id); err != nil {
		return 0, err
	}
	if err := e.recordVelocityEntry(cfg, now); err != nil {
		return 0, err
	}
	e.emit(newProposedEvent(proposal))
	return id, nil
}

func cloneConditions(conditions []Condition) []Condition {
	cloned := append([]Condition(nil), conditions...)
	for i, cond := range cloned {
		if cond.Threshold != nil {
			cloned[i].Threshold = new(big.Int).Set(cond.Threshold)
		}
	}
	return cloned
}

// Approve records the caller's approval. The required count is re-evaluated
// against the current signer set, strategy, and clock on every call, so a
// policy change between two approvals changes what the second one needs. When
// the threshold is met the proposal transitions to Approved and its unlock
// point is fixed.
func (e *Engine) Approve(caller Address, proposalID uint64) error {
	cfg, err := e.config()
	if err != nil {
		return err
	}
	proposal, err := e.loadProposal(proposalID)
	if err != nil {
		return err
	}
	if proposal.Status != ProposalStatusPending {
		return ErrProposalNotPending
	}
	if !cfg.HasSigner(caller) {
		return ErrNotSigner
	}
	if proposal.HasVoted(caller) {
		return ErrAlreadyApproved
	}
	proposal.Approvals = append(proposal.Approvals, caller)

	now := e.now()
	required := RequiredApprovals(cfg.Strategy, len(cfg.Signers), proposal.Amount, proposal.CreatedAt, now)
	thresholdMet := uint32(len(proposal.Approvals)) >= required
	if thresholdMet {
		proposal.Status = ProposalStatusApproved
		if cfg.TimelockThreshold != nil && proposal.Amount.Cmp(cfg.TimelockThreshold) > 0 {
			proposal.UnlockLedger = now + cfg.TimelockDelay
		} else {
			proposal.UnlockLedger = 0
		}
	}
	if err := e.state.VaultPutProposal(proposal); err != nil {
		return err
	}
	e.emit(newVoteEvent(EventTypeApproved, proposal, caller))
	if thresholdMet {
		e.emit(newThresholdMetEvent(proposal, required))
	}
	return nil
}

// Abstain records the caller's abstention. Abstentions never count toward the
// threshold and never reduce the required count; they only burn the caller's
// single vote.
func (e *Engine) Abstain(caller Address, proposalID uint64) error {
	cfg, err := e.config()
	if err != nil {
		return err
	}
	proposal, err := e.loadProposal(proposalID)
	if err != nil {
		return err
	}
	if proposal.Status != ProposalStatusPending {
		return ErrProposalNotPending
	}
	if !cfg.HasSigner(caller) {
		return ErrNotSigner
	}
	if proposal.HasVoted(caller) {
		return ErrAlreadyApproved
	}
	proposal.Abstentions = append(proposal.Abstentions, caller)
	if err := e.state.VaultPutProposal(proposal); err != nil {
		return err
	}
	e.emit(newVoteEvent(EventTypeAbstained, proposal, caller))
	return nil
}

// Execute releases the funds of an approved proposal once the timelock has
// expired and the proposal's conditions hold against live state. A failed
// external transfer surfaces its own error and leaves the proposal Approved
// for a later retry.
func (e *Engine) Execute(caller Address, proposalID uint64) error {
	if _, err := e.config(); err != nil {
		return err
	}
	if e.ledger == nil {
		return errors.New("vault: token ledger not configured")
	}
	if err := e.requireTreasury(caller); err != nil {
		return err
	}
	proposal, err := e.loadProposal(proposalID)
	if err != nil {
		return err
	}
	if proposal.Status != ProposalStatusApproved {
		return ErrProposalNotApproved
	}
	now := e.now()
	if proposal.UnlockLedger > 0 && now < proposal.UnlockLedger {
		return fmt.Errorf("%w: unlocks at %d", ErrTimelockNotExpired, proposal.UnlockLedger)
	}
	var balance *big.Int
	if hasBalanceCondition(proposal.Conditions) {
		balance, err = e.ledger.Balance(proposal.Token)
		if err != nil {
			return err
		}
	}
	if !EvaluateConditions(proposal.Conditions, proposal.ConditionLogic, now, balance) {
		return ErrConditionsNotMet
	}
	if err := e.ledger.Transfer(proposal.Token, proposal.Recipient, proposal.Amount); err != nil {
		return fmt.Errorf("vault: transfer failed: %w", err)
	}
	proposal.Status = ProposalStatusExecuted
	if err := e.state.VaultPutProposal(proposal); err != nil {
		return err
	}
	if err := e.recordSpend(proposal.Amount, now); err != nil {
		return err
	}
	e.emit(newExecutedEvent(proposal, caller))
	return nil
}

func hasBalanceCondition(conditions []Condition) bool {
	for _, cond := range conditions {
		if cond.Kind == ConditionBalanceAbove {
			return true
		}
	}
	return false
}

func (e *Engine) recordSpend(amount *big.Int, now uint64) error {
	records, err := e.state.VaultSpendLog()
	if err != nil {
		return err
	}
	compacted := make([]SpendRecord, 0, len(records)+1)
	for _, rec := range records {
		if inWindow(rec.Ledger, now, spendWeekWindow) {
			compacted = append(compacted, rec)
		}
	}
	compacted = append(compacted, SpendRecord{Ledger: now, Amount: new(big.Int).Set(amount)})
	return e.state.VaultPutSpendLog(compacted)
}

// SpendingStatus sums executed transfers inside the trailing day and week
// windows. The aggregates are advisory: execution is never blocked by them,
// operators watch them against the configured daily and weekly limits.
func (e *Engine) SpendingStatus() (daily, weekly *big.Int, err error) {
	if e == nil || e.state == nil {
		return nil, nil, errStateNotConfigured
	}
	records, err := e.state.VaultSpendLog()
	if err != nil {
		return nil, nil, err
	}
	now := e.now()
	daily = big.NewInt(0)
	weekly = big.NewInt(0)
	for _, rec := range records {
		if rec.Amount == nil {
			continue
		}
		if inWindow(rec.Ledger, now, spendDayWindow) {
			daily.Add(daily, rec.Amount)
		}
		if inWindow(rec.Ledger, now, spendWeekWindow) {
			weekly.Add(weekly, rec.Amount)
		}
	}
	return daily, weekly, nil
}

// ChangePriority reclassifies a proposal. Only the proposer or an Admin may
// move a proposal between priority levels; the per-priority index membership
// follows the change.
func (e *Engine) ChangePriority(caller Address, proposalID uint64, priority Priority) error {
	if _, err := e.config(); err != nil {
		return err
	}
	if !priority.Valid() {
		return fmt.Errorf("%w: unknown priority %d", ErrInvalidConfig, priority)
	}
	proposal, err := e.loadProposal(proposalID)
	if err != nil {
		return err
	}
	if err := e.requireProposerOrAdmin(caller, proposal); err != nil {
		return err
	}
	if proposal.Priority == priority {
		return nil
	}
	previous := proposal.Priority
	if err := e.state.VaultPriorityIndexRemove(previous, proposalID); err != nil {
		return err
	}
	if err := e.state.VaultPriorityIndexAdd(priority, proposalID); err != nil {
		return err
	}
	proposal.Priority = priority
	if err := e.state.VaultPutProposal(proposal); err != nil {
		return err
	}
	e.emit(newPriorityChangedEvent(proposal, previous))
	return nil
}

func (e *Engine) requireProposerOrAdmin(caller Address, proposal *Proposal) error {
	if proposal != nil && proposal.Proposer == caller {
		return nil
	}
	role, err := e.state.VaultRole(caller)
	if err != nil {
		return err
	}
	if role != RoleAdmin {
		return ErrUnauthorized
	}
	return nil
}

// GetProposal returns a deep copy of the stored proposal.
func (e *Engine) GetProposal(proposalID uint64) (*Proposal, error) {
	proposal, err := e.loadProposal(proposalID)
	if err != nil {
		return nil, err
	}
	return proposal.Clone(), nil
}

// ProposalsByPriority lists the identifiers currently classified at the given
// priority level.
func (e *Engine) ProposalsByPriority(priority Priority) ([]uint64, error) {
	if e == nil || e.state == nil {
		return nil, errStateNotConfigured
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %d", ErrInvalidConfig, priority)
	}
	return e.state.VaultPriorityIndex(priority)
}

// AddComment appends a discussion entry to a proposal. parentID of zero marks
// a top-level comment, otherwise it must reference an existing comment on the
// same proposal. Comment identifiers are vault-wide and monotonic.
func (e *Engine) AddComment(caller Address, proposalID uint64, text string, parentID uint64) (uint64, error) {
	if _, err := e.config(); err != nil {
		return 0, err
	}
	proposal, err := e.loadProposal(proposalID)
	if err != nil {
		return 0, err
	}
	if parentID != 0 {
		parent, ok, err := e.state.VaultGetComment(parentID)
		if err != nil {
			return 0, err
		}
		if !ok || parent == nil || parent.ProposalID != proposal.ID {
			return 0, fmt.Errorf("%w: parent %d", ErrCommentNotFound, parentID)
		}
	}
	id, err := e.state.VaultNextCommentID()
	if err != nil {
		return 0, err
	}
	comment := &Comment{
		ID:         id,
		ProposalID: proposalID,
		Author:     caller,
		Text:       text,
		ParentID:   parentID,
		CreatedAt:  e.now(),
	}
	if err := e.state.VaultPutComment(comment); err != nil {
		return 0, err
	}
	if err := e.state.VaultCommentIndexAppend(proposalID, id); err != nil {
		return 0, err
	}
	return id, nil
}

// EditComment replaces a comment's text. Only the original author may edit.
func (e *Engine) EditComment(caller Address, commentID uint64, text string) error {
	if _, err := e.config(); err != nil {
		return err
	}
	comment, ok, err := e.state.VaultGetComment(commentID)
	if err != nil {
		return err
	}
	if !ok || comment == nil {
		return fmt.Errorf("%w: id %d", ErrCommentNotFound, commentID)
	}
	if comment.Author != caller {
		return ErrNotCommentAuthor
	}
	comment.Text = text
	comment.EditedAt = e.now()
	return e.state.VaultPutComment(comment)
}

// GetComment returns the comment with the given vault-wide identifier.
func (e *Engine) GetComment(commentID uint64) (*Comment, error) {
	if e == nil || e.state == nil {
		return nil, errStateNotConfigured
	}
	comment, ok, err := e.state.VaultGetComment(commentID)
	if err != nil {
		return nil, err
	}
	if !ok || comment == nil {
		return nil, fmt.Errorf("%w: id %d", ErrCommentNotFound, commentID)
	}
	clone := *comment
	return &clone, nil
}

// ProposalComments returns the proposal's comments in creation order.
func (e *Engine) ProposalComments(proposalID uint64) ([]*Comment, error) {
	if _, err := e.loadProposal(proposalID); err != nil {
		return nil, err
	}
	ids, err := e.state.VaultCommentIndex(proposalID)
	if err != nil {
		return nil, err
	}
	comments := make([]*Comment, 0, len(ids))
	for _, id := range ids {
		comment, ok, err := e.state.VaultGetComment(id)
		if err != nil {
			return nil, err
		}
		if !ok || comment == nil {
			continue
		}
		clone := *comment
		comments = append(comments, &clone)
	}
	return comments, nil
}

// AddAttachment appends an opaque reference hash to the proposal. Only the
// proposer or an Admin may manage attachments; the hash is not validated and
// duplicates are permitted.
func (e *Engine) AddAttachment(caller Address, proposalID uint64, hash string) error {
	if _, err := e.config(); err != nil {
		return err
	}
	proposal, err := e.loadProposal(proposalID)
	if err != nil {
		return err
	}
	if err := e.requireProposerOrAdmin(caller, proposal); err != nil {
		return err
	}
	proposal.Attachments = append(proposal.Attachments, hash)
	return e.state.VaultPutProposal(proposal)
}

// RemoveAttachment drops the attachment at the zero-based index.
func (e *Engine) RemoveAttachment(caller Address, proposalID uint64, index uint32) error {
	if _, err := e.config(); err != nil {
		return err
	}
	proposal, err := e.loadProposal(proposalID)
	if err != nil {
		return err
	}
	if err := e.requireProposerOrAdmin(caller, proposal); err != nil {
		return err
	}
	if int(index) >= len(proposal.Attachments) {
		return fmt.Errorf("%w: index %d", ErrAttachmentNotFound, index)
	}
	proposal.Attachments = append(proposal.Attachments[:index], proposal.Attachments[index+1:]...)
	return e.state.VaultPutProposal(proposal)
}
