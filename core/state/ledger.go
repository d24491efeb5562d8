package state

import "math/big"

var (
	ledgerVaultPrefix   = []byte("ledger/vault/")
	ledgerAccountPrefix = []byte("ledger/account/")
)

func vaultBalanceKey(token string) []byte {
	return appendString(ledgerVaultPrefix, token)
}

func accountBalanceKey(addr, token string) []byte {
	buf := make([]byte, len(ledgerAccountPrefix)+len(addr)+1+len(token))
	copy(buf, ledgerAccountPrefix)
	copy(buf[len(ledgerAccountPrefix):], addr)
	buf[len(ledgerAccountPrefix)+len(addr)] = '/'
	copy(buf[len(ledgerAccountPrefix)+len(addr)+1:], token)
	return buf
}

// VaultBalance reports the vault's holdings of the given token. Unknown tokens
// hold zero.
func (m *Manager) VaultBalance(token string) (*big.Int, error) {
	return m.loadBalance(vaultBalanceKey(token))
}

func (m *Manager) SetVaultBalance(token string, amount *big.Int) error {
	return m.KVPut(vaultBalanceKey(token), zeroIfNil(amount))
}

// AccountBalance reports an external account's holdings of the given token.
func (m *Manager) AccountBalance(addr, token string) (*big.Int, error) {
	return m.loadBalance(accountBalanceKey(addr, token))
}

func (m *Manager) SetAccountBalance(addr, token string, amount *big.Int) error {
	return m.KVPut(accountBalanceKey(addr, token), zeroIfNil(amount))
}

func (m *Manager) loadBalance(key []byte) (*big.Int, error) {
	balance := new(big.Int)
	ok, err := m.KVGet(key, balance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return balance, nil
}
