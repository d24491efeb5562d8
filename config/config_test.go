package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vaultdao/native/vault"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
RPCAddress = ":9090"
DataDir = "/var/lib/vaultdao"
LogLevel = "debug"
RPCRateLimit = 25.0
RPCRateBurst = 50

[genesis]
Admin = "alice"
Signers = ["alice", "bob", "carol"]
SpendingLimit = "1000000"
TimelockThreshold = "50000"
TimelockDelay = 86400
VelocityLimit = 5
VelocityWindow = 3600

[genesis.strategy]
Kind = "percentage"
Percentage = 67

[genesis.balances]
USDC = "2500000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.RPCAddress)
	require.Equal(t, "/var/lib/vaultdao", cfg.DataDir)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 25.0, cfg.RPCRateLimit)

	policy, err := cfg.Genesis.VaultConfig()
	require.NoError(t, err)
	require.Len(t, policy.Signers, 3)
	require.Equal(t, vault.StrategyPercentage, policy.Strategy.Kind)
	require.Equal(t, uint32(67), policy.Strategy.Percentage)
	require.Equal(t, 0, policy.SpendingLimit.Cmp(big.NewInt(1_000_000)))
	require.Equal(t, 0, policy.TimelockThreshold.Cmp(big.NewInt(50_000)))
	require.Equal(t, uint64(86_400), policy.TimelockDelay)
	require.Equal(t, uint32(5), policy.Velocity.Limit)

	balances, err := cfg.Genesis.TokenBalances()
	require.NoError(t, err)
	require.Equal(t, 0, balances["USDC"].Cmp(big.NewInt(2_500_000)))
}

func TestLoadTieredStrategy(t *testing.T) {
	path := writeConfig(t, `
[genesis]
Admin = "alice"
Signers = ["alice", "bob", "carol"]

[genesis.strategy]
Kind = "tiered"

[[genesis.strategy.tiers]]
AmountFloor = "0"
Approvals = 1

[[genesis.strategy.tiers]]
AmountFloor = "10000"
Approvals = 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	policy, err := cfg.Genesis.VaultConfig()
	require.NoError(t, err)
	require.Equal(t, vault.StrategyAmountTiered, policy.Strategy.Kind)
	require.Len(t, policy.Strategy.Tiers, 2)
	require.Equal(t, 0, policy.Strategy.Tiers[1].AmountFloor.Cmp(big.NewInt(10_000)))
	require.Equal(t, uint32(3), policy.Strategy.Tiers[1].Approvals)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[genesis]
Admin = "alice"
Signers = ["alice"]

[genesis.strategy]
Kind = "fixed"
Threshold = 1
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8545", cfg.RPCAddress)
	require.Equal(t, "./vault-data", cfg.DataDir)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 50.0, cfg.RPCRateLimit)
	require.Equal(t, 100, cfg.RPCRateBurst)

	policy, err := cfg.Genesis.VaultConfig()
	require.NoError(t, err)
	// Missing limits read as zero, missing velocity settings get defaults.
	require.Equal(t, 0, policy.SpendingLimit.Sign())
	require.Equal(t, uint32(10), policy.Velocity.Limit)
	require.Equal(t, uint64(3_600), policy.Velocity.Window)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing admin": `
[genesis]
Signers = ["alice"]
[genesis.strategy]
Kind = "fixed"
Threshold = 1
`,
		"no signers": `
[genesis]
Admin = "alice"
[genesis.strategy]
Kind = "fixed"
`,
		"unknown strategy": `
[genesis]
Admin = "alice"
Signers = ["alice"]
[genesis.strategy]
Kind = "quorumish"
`,
		"bad amount": `
[genesis]
Admin = "alice"
Signers = ["alice"]
SpendingLimit = "one million"
[genesis.strategy]
Kind = "fixed"
Threshold = 1
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, ":8545", cfg.RPCAddress)

	// Loading the freshly written file round-trips.
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.RPCAddress, again.RPCAddress)
	require.Equal(t, cfg.Genesis.Admin, again.Genesis.Admin)
}
