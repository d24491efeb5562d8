package core

import (
	"errors"
	"math/big"
	"sync"
	"time"

	"vaultdao/core/events"
	"vaultdao/core/state"
	"vaultdao/native/vault"
	"vaultdao/storage"
)

// Node wires the vault engine to its state backend and token ledger and
// serialises every operation behind a single mutex. All mutating and reading
// calls observe a consistent snapshot; callers never see a half-applied
// operation.
type Node struct {
	db      storage.Database
	state   *state.Manager
	ledger  *Ledger
	engine  *vault.Engine
	stateMu sync.Mutex
}

// NewNode creates a node over the provided database. The clock defaults to
// wall time in seconds; tests override it with SetNowFunc.
func NewNode(db storage.Database) *Node {
	manager := state.NewManager(db)
	ledger := NewLedger(manager)
	engine := vault.NewEngine()
	engine.SetState(manager)
	engine.SetTokenLedger(ledger)
	engine.SetNowFunc(func() uint64 { return uint64(time.Now().Unix()) })
	return &Node{
		db:     db,
		state:  manager,
		ledger: ledger,
		engine: engine,
	}
}

// SetEmitter routes engine events to the provided sink.
func (n *Node) SetEmitter(emitter events.Emitter) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	n.engine.SetEmitter(emitter)
}

// SetNowFunc overrides the node clock.
func (n *Node) SetNowFunc(now func() uint64) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	n.engine.SetNowFunc(now)
}

// ApplyGenesis installs the vault policy and seeds token balances on first
// start. A node restarting over an initialised database leaves existing state
// untouched.
func (n *Node) ApplyGenesis(admin vault.Address, cfg vault.Config, balances map[string]*big.Int) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	if err := n.engine.Initialize(admin, cfg); err != nil {
		if errors.Is(err, vault.ErrAlreadyInitialized) {
			return nil
		}
		return err
	}
	for token, amount := range balances {
		if amount == nil || amount.Sign() == 0 {
			continue
		}
		if err := n.ledger.Deposit(token, amount); err != nil {
			return err
		}
	}
	return nil
}

// Initialize installs the vault policy exactly once.
func (n *Node) Initialize(admin vault.Address, cfg vault.Config) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.Initialize(admin, cfg)
}

// UpdateConfig replaces the vault policy. Admin only.
func (n *Node) UpdateConfig(caller vault.Address, cfg vault.Config) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.UpdateConfig(caller, cfg)
}

// Config returns a copy of the active vault policy.
func (n *Node) Config() (*vault.Config, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.Config()
}

// SetRole assigns a permission tier. Admin only.
func (n *Node) SetRole(caller, target vault.Address, role vault.Role) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.SetRole(caller, target, role)
}

// Role reports the tier assigned to addr.
func (n *Node) Role(addr vault.Address) (vault.Role, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.Role(addr)
}

// SetListMode switches the recipient screening mode. Admin only.
func (n *Node) SetListMode(caller vault.Address, mode vault.ListMode) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.SetListMode(caller, mode)
}

// ListMode reports the active recipient screening mode.
func (n *Node) ListMode() (vault.ListMode, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.ListMode()
}

func (n *Node) AddToWhitelist(caller, addr vault.Address) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.AddToWhitelist(caller, addr)
}

func (n *Node) RemoveFromWhitelist(caller, addr vault.Address) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.RemoveFromWhitelist(caller, addr)
}

func (n *Node) AddToBlacklist(caller, addr vault.Address) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.AddToBlacklist(caller, addr)
}

func (n *Node) RemoveFromBlacklist(caller, addr vault.Address) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.RemoveFromBlacklist(caller, addr)
}

func (n *Node) IsWhitelisted(addr vault.Address) (bool, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.IsWhitelisted(addr)
}

func (n *Node) IsBlacklisted(addr vault.Address) (bool, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.IsBlacklisted(addr)
}

// ProposeTransfer records a new transfer proposal and returns its id.
func (n *Node) ProposeTransfer(caller, recipient vault.Address, token string, amount *big.Int, memo string, priority vault.Priority, conditions []vault.Condition, logic vault.ConditionLogic) (uint64, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.ProposeTransfer(caller, recipient, token, amount, memo, priority, conditions, logic)
}

// Approve records the caller's approval.
func (n *Node) Approve(caller vault.Address, proposalID uint64) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.Approve(caller, proposalID)
}

// Abstain records the caller's abstention.
func (n *Node) Abstain(caller vault.Address, proposalID uint64) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.Abstain(caller, proposalID)
}

// Execute releases the funds of an approved proposal.
func (n *Node) Execute(caller vault.Address, proposalID uint64) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.Execute(caller, proposalID)
}

// ChangePriority reclassifies a proposal.
func (n *Node) ChangePriority(caller vault.Address, proposalID uint64, priority vault.Priority) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.ChangePriority(caller, proposalID, priority)
}

// GetProposal returns a copy of the proposal with the given id.
func (n *Node) GetProposal(proposalID uint64) (*vault.Proposal, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.GetProposal(proposalID)
}

// ProposalsByPriority lists the ids filed under the given priority.
func (n *Node) ProposalsByPriority(priority vault.Priority) ([]uint64, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.ProposalsByPriority(priority)
}

func (n *Node) AddComment(caller vault.Address, proposalID uint64, text string, parentID uint64) (uint64, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.AddComment(caller, proposalID, text, parentID)
}

func (n *Node) EditComment(caller vault.Address, commentID uint64, text string) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.EditComment(caller, commentID, text)
}

func (n *Node) GetComment(commentID uint64) (*vault.Comment, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.GetComment(commentID)
}

func (n *Node) ProposalComments(proposalID uint64) ([]*vault.Comment, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.ProposalComments(proposalID)
}

func (n *Node) AddAttachment(caller vault.Address, proposalID uint64, hash string) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.AddAttachment(caller, proposalID, hash)
}

func (n *Node) RemoveAttachment(caller vault.Address, proposalID uint64, index uint32) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.RemoveAttachment(caller, proposalID, index)
}

// SpendingStatus reports executed volume inside the trailing day and week.
func (n *Node) SpendingStatus() (daily, weekly *big.Int, err error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.engine.SpendingStatus()
}

// Deposit credits the vault's balance of the given token. Treasury only.
func (n *Node) Deposit(caller vault.Address, token string, amount *big.Int) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	role, err := n.engine.Role(caller)
	if err != nil {
		return err
	}
	if role != vault.RoleAdmin && role != vault.RoleTreasurer {
		return vault.ErrInsufficientRole
	}
	return n.ledger.Deposit(token, amount)
}

// Balance reports the vault's holdings of the given token.
func (n *Node) Balance(token string) (*big.Int, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.ledger.Balance(token)
}

// AccountBalance reports an external account's holdings of the given token.
func (n *Node) AccountBalance(addr vault.Address, token string) (*big.Int, error) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.ledger.AccountBalance(addr, token)
}
