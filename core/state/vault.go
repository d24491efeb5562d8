package state

import (
	"fmt"
	"math/big"

	"vaultdao/native/vault"
)

// storedConfig is the RLP layout of the vault policy. Optional big.Int limits
// are normalised to zero so the encoding stays canonical.
type storedConfig struct {
	Signers           []string
	StrategyKind      uint8
	Threshold         uint32
	Percentage        uint32
	Tiers             []storedTier
	TimeInitial       uint32
	TimeReduced       uint32
	TimeDelay         uint64
	SpendingLimit     *big.Int
	DailyLimit        *big.Int
	WeeklyLimit       *big.Int
	TimelockThreshold *big.Int
	TimelockDelay     uint64
	VelocityLimit     uint32
	VelocityWindow    uint64
}

type storedTier struct {
	AmountFloor *big.Int
	Approvals   uint32
}

func zeroIfNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func newStoredConfig(cfg *vault.Config) *storedConfig {
	signers := make([]string, len(cfg.Signers))
	for i, s := range cfg.Signers {
		signers[i] = string(s)
	}
	tiers := make([]storedTier, len(cfg.Strategy.Tiers))
	for i, tier := range cfg.Strategy.Tiers {
		tiers[i] = storedTier{AmountFloor: zeroIfNil(tier.AmountFloor), Approvals: tier.Approvals}
	}
	return &storedConfig{
		Signers:           signers,
		StrategyKind:      uint8(cfg.Strategy.Kind),
		Threshold:         cfg.Strategy.Threshold,
		Percentage:        cfg.Strategy.Percentage,
		Tiers:             tiers,
		TimeInitial:       cfg.Strategy.TimeBased.Initial,
		TimeReduced:       cfg.Strategy.TimeBased.Reduced,
		TimeDelay:         cfg.Strategy.TimeBased.ReductionDelay,
		SpendingLimit:     zeroIfNil(cfg.SpendingLimit),
		DailyLimit:        zeroIfNil(cfg.DailyLimit),
		WeeklyLimit:       zeroIfNil(cfg.WeeklyLimit),
		TimelockThreshold: zeroIfNil(cfg.TimelockThreshold),
		TimelockDelay:     cfg.TimelockDelay,
		VelocityLimit:     cfg.Velocity.Limit,
		VelocityWindow:    cfg.Velocity.Window,
	}
}

func (s *storedConfig) toConfig() *vault.Config {
	signers := make([]vault.Address, len(s.Signers))
	for i, addr := range s.Signers {
		signers[i] = vault.Address(addr)
	}
	tiers := make([]vault.AmountTier, len(s.Tiers))
	for i, tier := range s.Tiers {
		tiers[i] = vault.AmountTier{AmountFloor: zeroIfNil(tier.AmountFloor), Approvals: tier.Approvals}
	}
	return &vault.Config{
		Signers: signers,
		Strategy: vault.ThresholdStrategy{
			Kind:       vault.StrategyKind(s.StrategyKind),
			Threshold:  s.Threshold,
			Percentage: s.Percentage,
			Tiers:      tiers,
			TimeBased: vault.TimeBasedThreshold{
				Initial:        s.TimeInitial,
				Reduced:        s.TimeReduced,
				ReductionDelay: s.TimeDelay,
			},
		},
		SpendingLimit:     zeroIfNil(s.SpendingLimit),
		DailyLimit:        zeroIfNil(s.DailyLimit),
		WeeklyLimit:       zeroIfNil(s.WeeklyLimit),
		TimelockThreshold: zeroIfNil(s.TimelockThreshold),
		TimelockDelay:     s.TimelockDelay,
		Velocity:          vault.VelocityConfig{Limit: s.VelocityLimit, Window: s.VelocityWindow},
	}
}

type storedProposal struct {
	ID             uint64
	Proposer       string
	Recipient      string
	Token          string
	Amount         *big.Int
	Memo           string
	Priority       uint8
	Conditions     []storedCondition
	ConditionLogic uint8
	Status         uint8
	Approvals      []string
	Abstentions    []string
	Attachments    []string
	CreatedAt      uint64
	UnlockLedger   uint64
}

type storedCondition struct {
	Kind      uint8
	Threshold *big.Int
	Ledger    uint64
}

func addrsToStrings(addrs []vault.Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = string(a)
	}
	return out
}

func stringsToAddrs(values []string) []vault.Address {
	out := make([]vault.Address, len(values))
	for i, v := range values {
		out[i] = vault.Address(v)
	}
	return out
}

func newStoredProposal(p *vault.Proposal) *storedProposal {
	conditions := make([]storedCondition, len(p.Conditions))
	for i, cond := range p.Conditions {
		conditions[i] = storedCondition{
			Kind:      uint8(cond.Kind),
			Threshold: zeroIfNil(cond.Threshold),
			Ledger:    cond.Ledger,
		}
	}
	return &storedProposal{
		ID:             p.ID,
		Proposer:       string(p.Proposer),
		Recipient:      string(p.Recipient),
		Token:          p.Token,
		Amount:         zeroIfNil(p.Amount),
		Memo:           p.Memo,
		Priority:       uint8(p.Priority),
		Conditions:     conditions,
		ConditionLogic: uint8(p.ConditionLogic),
		Status:         uint8(p.Status),
		Approvals:      addrsToStrings(p.Approvals),
		Abstentions:    addrsToStrings(p.Abstentions),
		Attachments:    append([]string(nil), p.Attachments...),
		CreatedAt:      p.CreatedAt,
		UnlockLedger:   p.UnlockLedger,
	}
}

func (s *storedProposal) toProposal() *vault.Proposal {
	conditions := make([]vault.Condition, len(s.Conditions))
	for i, cond := range s.Conditions {
		conditions[i] = vault.Condition{
			Kind:      vault.ConditionKind(cond.Kind),
			Threshold: zeroIfNil(cond.Threshold),
			Ledger:    cond.Ledger,
		}
	}
	return &vault.Proposal{
		ID:             s.ID,
		Proposer:       vault.Address(s.Proposer),
		Recipient:      vault.Address(s.Recipient),
		Token:          s.Token,
		Amount:         zeroIfNil(s.Amount),
		Memo:           s.Memo,
		Priority:       vault.Priority(s.Priority),
		Conditions:     conditions,
		ConditionLogic: vault.ConditionLogic(s.ConditionLogic),
		Status:         vault.ProposalStatus(s.Status),
		Approvals:      stringsToAddrs(s.Approvals),
		Abstentions:    stringsToAddrs(s.Abstentions),
		Attachments:    append([]string(nil), s.Attachments...),
		CreatedAt:      s.CreatedAt,
		UnlockLedger:   s.UnlockLedger,
	}
}

type storedComment struct {
	ID         uint64
	ProposalID uint64
	Author     string
	Text       string
	ParentID   uint64
	CreatedAt  uint64
	EditedAt   uint64
}

type storedSpend struct {
	Ledger uint64
	Amount *big.Int
}

// VaultConfig loads the active policy. The boolean reports whether the vault
// has been initialised.
func (m *Manager) VaultConfig() (*vault.Config, bool, error) {
	var stored storedConfig
	ok, err := m.KVGet(vaultConfigKey, &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return stored.toConfig(), true, nil
}

func (m *Manager) VaultPutConfig(cfg *vault.Config) error {
	if cfg == nil {
		return fmt.Errorf("state: config must not be nil")
	}
	return m.KVPut(vaultConfigKey, newStoredConfig(cfg))
}

func (m *Manager) VaultNextProposalID() (uint64, error) {
	return m.KVIncrement(vaultProposalSeqKey)
}

func (m *Manager) VaultPutProposal(p *vault.Proposal) error {
	if p == nil {
		return fmt.Errorf("state: proposal must not be nil")
	}
	return m.KVPut(proposalKey(p.ID), newStoredProposal(p))
}

func (m *Manager) VaultGetProposal(id uint64) (*vault.Proposal, bool, error) {
	var stored storedProposal
	ok, err := m.KVGet(proposalKey(id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return stored.toProposal(), true, nil
}

func (m *Manager) VaultPriorityIndexAdd(priority vault.Priority, id uint64) error {
	key := priorityIndexKey(uint8(priority))
	ids, err := m.loadIDList(key)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	return m.KVPut(key, append(ids, id))
}

func (m *Manager) VaultPriorityIndexRemove(priority vault.Priority, id uint64) error {
	key := priorityIndexKey(uint8(priority))
	ids, err := m.loadIDList(key)
	if err != nil {
		return err
	}
	for i, existing := range ids {
		if existing == id {
			return m.KVPut(key, append(ids[:i], ids[i+1:]...))
		}
	}
	return nil
}

func (m *Manager) VaultPriorityIndex(priority vault.Priority) ([]uint64, error) {
	return m.loadIDList(priorityIndexKey(uint8(priority)))
}

func (m *Manager) loadIDList(key []byte) ([]uint64, error) {
	var ids []uint64
	if _, err := m.KVGet(key, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// VaultRole reports the permission tier assigned to addr. Addresses without an
// assignment are Members.
func (m *Manager) VaultRole(addr vault.Address) (vault.Role, error) {
	var role uint8
	ok, err := m.KVGet(roleKey(string(addr)), &role)
	if err != nil || !ok {
		return vault.RoleMember, err
	}
	return vault.Role(role), nil
}

func (m *Manager) VaultSetRole(addr vault.Address, role vault.Role) error {
	return m.KVPut(roleKey(string(addr)), uint8(role))
}

func (m *Manager) VaultListMode() (vault.ListMode, error) {
	var mode uint8
	ok, err := m.KVGet(vaultListModeKey, &mode)
	if err != nil || !ok {
		return vault.ListModeDisabled, err
	}
	return vault.ListMode(mode), nil
}

func (m *Manager) VaultSetListMode(mode vault.ListMode) error {
	return m.KVPut(vaultListModeKey, uint8(mode))
}

func (m *Manager) VaultListAdd(mode vault.ListMode, addr vault.Address) (bool, error) {
	key := listEntryKey(mode == vault.ListModeBlacklist, string(addr))
	exists, err := m.KVHas(key)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := m.KVPut(key, true); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) VaultListRemove(mode vault.ListMode, addr vault.Address) error {
	return m.KVDelete(listEntryKey(mode == vault.ListModeBlacklist, string(addr)))
}

func (m *Manager) VaultListContains(mode vault.ListMode, addr vault.Address) (bool, error) {
	return m.KVHas(listEntryKey(mode == vault.ListModeBlacklist, string(addr)))
}

func (m *Manager) VaultVelocityLog() ([]uint64, error) {
	return m.loadIDList(vaultVelocityKey)
}

func (m *Manager) VaultPutVelocityLog(entries []uint64) error {
	return m.KVPut(vaultVelocityKey, entries)
}

func (m *Manager) VaultSpendLog() ([]vault.SpendRecord, error) {
	var stored []storedSpend
	if _, err := m.KVGet(vaultSpendKey, &stored); err != nil {
		return nil, err
	}
	records := make([]vault.SpendRecord, len(stored))
	for i, rec := range stored {
		records[i] = vault.SpendRecord{Ledger: rec.Ledger, Amount: zeroIfNil(rec.Amount)}
	}
	return records, nil
}

func (m *Manager) VaultPutSpendLog(records []vault.SpendRecord) error {
	stored := make([]storedSpend, len(records))
	for i, rec := range records {
		stored[i] = storedSpend{Ledger: rec.Ledger, Amount: zeroIfNil(rec.Amount)}
	}
	return m.KVPut(vaultSpendKey, stored)
}

func (m *Manager) VaultNextCommentID() (uint64, error) {
	return m.KVIncrement(vaultCommentSeqKey)
}

func (m *Manager) VaultPutComment(c *vault.Comment) error {
	if c == nil {
		return fmt.Errorf("state: comment must not be nil")
	}
	stored := storedComment{
		ID:         c.ID,
		ProposalID: c.ProposalID,
		Author:     string(c.Author),
		Text:       c.Text,
		ParentID:   c.ParentID,
		CreatedAt:  c.CreatedAt,
		EditedAt:   c.EditedAt,
	}
	return m.KVPut(commentKey(c.ID), &stored)
}

func (m *Manager) VaultGetComment(id uint64) (*vault.Comment, bool, error) {
	var stored storedComment
	ok, err := m.KVGet(commentKey(id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &vault.Comment{
		ID:         stored.ID,
		ProposalID: stored.ProposalID,
		Author:     vault.Address(stored.Author),
		Text:       stored.Text,
		ParentID:   stored.ParentID,
		CreatedAt:  stored.CreatedAt,
		EditedAt:   stored.EditedAt,
	}, true, nil
}

func (m *Manager) VaultCommentIndex(proposalID uint64) ([]uint64, error) {
	return m.loadIDList(commentIndexKey(proposalID))
}

func (m *Manager) VaultCommentIndexAppend(proposalID, commentID uint64) error {
	key := commentIndexKey(proposalID)
	ids, err := m.loadIDList(key)
	if err != nil {
		return err
	}
	return m.KVPut(key, append(ids, commentID))
}
