package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	RPCAddress     string  `toml:"RPCAddress"`
	DataDir        string  `toml:"DataDir"`
	LogLevel       string  `toml:"LogLevel"`
	LogFile        string  `toml:"LogFile"`
	LogMaxSizeMB   int     `toml:"LogMaxSizeMB"`
	LogMaxBackups  int     `toml:"LogMaxBackups"`
	RPCRateLimit   float64 `toml:"RPCRateLimit"`
	RPCRateBurst   int     `toml:"RPCRateBurst"`
	Genesis        Genesis `toml:"genesis"`
}

// Genesis describes the vault policy installed on first start.
type Genesis struct {
	Admin             string            `toml:"Admin"`
	Signers           []string          `toml:"Signers"`
	Strategy          Strategy          `toml:"strategy"`
	SpendingLimit     string            `toml:"SpendingLimit"`
	DailyLimit        string            `toml:"DailyLimit"`
	WeeklyLimit       string            `toml:"WeeklyLimit"`
	TimelockThreshold string            `toml:"TimelockThreshold"`
	TimelockDelay     uint64            `toml:"TimelockDelay"`
	VelocityLimit     uint32            `toml:"VelocityLimit"`
	VelocityWindow    uint64            `toml:"VelocityWindow"`
	Balances          map[string]string `toml:"balances"`
}

// Strategy selects the approval threshold model.
type Strategy struct {
	Kind            string `toml:"Kind"`
	Threshold       uint32 `toml:"Threshold"`
	Percentage      uint32 `toml:"Percentage"`
	Tiers           []Tier `toml:"tiers"`
	InitialRequired uint32 `toml:"InitialRequired"`
	ReducedRequired uint32 `toml:"ReducedRequired"`
	ReductionDelay  uint64 `toml:"ReductionDelay"`
}

type Tier struct {
	AmountFloor string `toml:"AmountFloor"`
	Approvals   uint32 `toml:"Approvals"`
}

// Load loads the configuration from the given path. A missing file is created
// with defaults so a fresh checkout starts without ceremony.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8545"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./vault-data"
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogMaxSizeMB <= 0 {
		cfg.LogMaxSizeMB = 100
	}
	if cfg.LogMaxBackups <= 0 {
		cfg.LogMaxBackups = 3
	}
	if cfg.RPCRateLimit <= 0 {
		cfg.RPCRateLimit = 50
	}
	if cfg.RPCRateBurst <= 0 {
		cfg.RPCRateBurst = 100
	}
}

// Validate rejects configurations the daemon could not start with. Genesis
// policy semantics are checked later by the engine; here we only catch
// malformed files.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Genesis.Admin) == "" {
		return fmt.Errorf("config: genesis Admin must be set")
	}
	if len(c.Genesis.Signers) == 0 {
		return fmt.Errorf("config: genesis Signers must not be empty")
	}
	switch strings.ToLower(strings.TrimSpace(c.Genesis.Strategy.Kind)) {
	case "fixed", "percentage", "tiered", "timebased":
	default:
		return fmt.Errorf("config: unknown strategy kind %q", c.Genesis.Strategy.Kind)
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"SpendingLimit", c.Genesis.SpendingLimit},
		{"DailyLimit", c.Genesis.DailyLimit},
		{"WeeklyLimit", c.Genesis.WeeklyLimit},
		{"TimelockThreshold", c.Genesis.TimelockThreshold},
	} {
		if _, err := parseAmount(field.value); err != nil {
			return fmt.Errorf("config: genesis %s: %w", field.name, err)
		}
	}
	for token, amount := range c.Genesis.Balances {
		if _, err := parseAmount(amount); err != nil {
			return fmt.Errorf("config: genesis balance %s: %w", token, err)
		}
	}
	for i, tier := range c.Genesis.Strategy.Tiers {
		if _, err := parseAmount(tier.AmountFloor); err != nil {
			return fmt.Errorf("config: strategy tier %d: %w", i, err)
		}
	}
	return nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress: ":8545",
		DataDir:    "./vault-data",
		LogLevel:   "info",
		Genesis: Genesis{
			Admin:          "admin",
			Signers:        []string{"admin"},
			Strategy:       Strategy{Kind: "fixed", Threshold: 1},
			TimelockDelay:  86_400,
			VelocityLimit:  10,
			VelocityWindow: 3_600,
		},
	}
	applyDefaults(cfg)
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
