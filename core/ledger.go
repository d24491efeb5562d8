package core

import (
	"fmt"
	"math/big"

	"vaultdao/core/state"
	"vaultdao/native/vault"
)

// Ledger tracks the vault's token holdings and settles executed transfers. It
// is the engine's funding collaborator: the engine decides whether a transfer
// may happen, the ledger moves the balances.
type Ledger struct {
	state *state.Manager
}

// NewLedger creates a ledger over the provided state manager.
func NewLedger(manager *state.Manager) *Ledger {
	return &Ledger{state: manager}
}

// Balance reports the vault's holdings of the given token.
func (l *Ledger) Balance(token string) (*big.Int, error) {
	return l.state.VaultBalance(token)
}

// Transfer moves amount of token from the vault to the recipient's account.
// The vault balance must cover the full amount.
func (l *Ledger) Transfer(token string, to vault.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("ledger: transfer amount must be positive")
	}
	balance, err := l.state.VaultBalance(token)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("ledger: insufficient %s balance: have %s, need %s", token, balance, amount)
	}
	if err := l.state.SetVaultBalance(token, new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}
	account, err := l.state.AccountBalance(string(to), token)
	if err != nil {
		return err
	}
	return l.state.SetAccountBalance(string(to), token, new(big.Int).Add(account, amount))
}

// Deposit credits the vault's balance of the given token.
func (l *Ledger) Deposit(token string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("ledger: deposit amount must be positive")
	}
	balance, err := l.state.VaultBalance(token)
	if err != nil {
		return err
	}
	return l.state.SetVaultBalance(token, new(big.Int).Add(balance, amount))
}

// AccountBalance reports an external account's holdings of the given token.
func (l *Ledger) AccountBalance(addr vault.Address, token string) (*big.Int, error) {
	return l.state.AccountBalance(string(addr), token)
}
