package config

import (
	"fmt"
	"math/big"
	"strings"

	"vaultdao/native/vault"
)

// parseAmount reads a decimal token amount. Empty strings mean zero so the
// optional limits can be left out of the file entirely.
func parseAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount %q must not be negative", value)
	}
	return amount, nil
}

// VaultConfig converts the genesis section into the engine's policy type.
func (g *Genesis) VaultConfig() (vault.Config, error) {
	signers := make([]vault.Address, len(g.Signers))
	for i, s := range g.Signers {
		signers[i] = vault.Address(s)
	}

	strategy, err := g.Strategy.vaultStrategy()
	if err != nil {
		return vault.Config{}, err
	}

	spending, err := parseAmount(g.SpendingLimit)
	if err != nil {
		return vault.Config{}, fmt.Errorf("config: SpendingLimit: %w", err)
	}
	daily, err := parseAmount(g.DailyLimit)
	if err != nil {
		return vault.Config{}, fmt.Errorf("config: DailyLimit: %w", err)
	}
	weekly, err := parseAmount(g.WeeklyLimit)
	if err != nil {
		return vault.Config{}, fmt.Errorf("config: WeeklyLimit: %w", err)
	}
	timelock, err := parseAmount(g.TimelockThreshold)
	if err != nil {
		return vault.Config{}, fmt.Errorf("config: TimelockThreshold: %w", err)
	}

	velocityLimit := g.VelocityLimit
	if velocityLimit == 0 {
		velocityLimit = 10
	}
	velocityWindow := g.VelocityWindow
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
		TimelockDelay:     g.TimelockDelay,
		Velocity:          vault.VelocityConfig{Limit: velocityLimit, Window: velocityWindow},
	}, nil
}

func (s *Strategy) vaultStrategy() (vault.ThresholdStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s.Kind)) {
	case "fixed":
		return vault.ThresholdStrategy{Kind: vault.StrategyFixed, Threshold: s.Threshold}, nil
	case "percentage":
		return vault.ThresholdStrategy{Kind: vault.StrategyPercentage, Percentage: s.Percentage}, nil
	case "tiered":
		tiers := make([]vault.AmountTier, len(s.Tiers))
		for i, tier := range s.Tiers {
			floor, err := parseAmount(tier.AmountFloor)
			if err != nil {
				return vault.ThresholdStrategy{}, fmt.Errorf("config: tier %d: %w", i, err)
			}
			tiers[i] = vault.AmountTier{AmountFloor: floor, Approvals: tier.Approvals}
		}
		return vault.ThresholdStrategy{Kind: vault.StrategyAmountTiered, Tiers: tiers}, nil
	case "timebased":
		return vault.ThresholdStrategy{
			Kind: vault.StrategyTimeBased,
			TimeBased: vault.TimeBasedThreshold{
				Initial:        s.InitialRequired,
				Reduced:        s.ReducedRequired,
				ReductionDelay: s.ReductionDelay,
			},
		}, nil
	default:
		return vault.ThresholdStrategy{}, fmt.Errorf("config: unknown strategy kind %q", s.Kind)
	}
}

// TokenBalances converts the genesis balance table into big integers.
func (g *Genesis) TokenBalances() (map[string]*big.Int, error) {
	balances := make(map[string]*big.Int, len(g.Balances))
	for token, value := range g.Balances {
		amount, err := parseAmount(value)
		if err != nil {
			return nil, fmt.Errorf("config: balance %s: %w", token, err)
		}
		balances[token] = amount
	}
	return balances, nil
}
