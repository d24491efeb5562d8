package vault

import (
	"fmt"
	"math/big"
)

// RequiredApprovals computes how many approvals a proposal currently needs.
// It is a pure function of the strategy, the current signer count, the
// proposal amount, and elapsed time; the engine re-evaluates it on every
// approval rather than freezing the answer at creation. The result is clamped
// to [1, signerCount]: no strategy can make a proposal free, and none can
// demand more approvals than signers exist.
func RequiredApprovals(strategy ThresholdStrategy, signerCount int, amount *big.Int, createdAt, now uint64) uint32 {
	var required uint32
	switch strategy.Kind {
	case StrategyFixed:
		required = strategy.Threshold
	case StrategyPercentage:
		required = ceilPercentage(strategy.Percentage, signerCount)
	case StrategyAmountTiered:
		required = tierApprovals(strategy.Tiers, amount)
	case StrategyTimeBased:
		required = strategy.TimeBased.Initial
		if now >= createdAt && now-createdAt >= strategy.TimeBased.ReductionDelay {
			required = strategy.TimeBased.Reduced
		}
	}
	if required == 0 {
		required = 1
	}
	if signerCount > 0 && required > uint32(signerCount) {
		required = uint32(signerCount)
	}
	return required
}

// ceilPercentage returns ceil(pct/100 x count). 67% of 4 signers is 3.
func ceilPercentage(pct uint32, count int) uint32 {
	if count <= 0 {
		return 0
	}
	return uint32((uint64(pct)*uint64(count) + 99) / 100)
}

// tierApprovals picks the approval count of the tier with the greatest floor
// not exceeding amount. Tiers arrive pre-sorted ascending; when floors tie the
// last-defined tier wins, which a plain forward scan gives for free.
func tierApprovals(tiers []AmountTier, amount *big.Int) uint32 {
	if amount == nil {
		amount = big.NewInt(0)
	}
	var matched uint32
	for _, tier := range tiers {
		floor := tier.AmountFloor
		if floor == nil {
			floor = big.NewInt(0)
		}
		if floor.Cmp(amount) <= 0 {
			matched = tier.Approvals
		}
	}
	return matched
}

// ValidateStrategy rejects strategies that could never be satisfied by the
// given signer set. Approval counts must stay within [1, signerCount],
// percentages within (0, 100], and tier lists must be pre-sorted ascending
// with a zero floor so every amount matches some tier.
func ValidateStrategy(strategy ThresholdStrategy, signerCount int) error {
	checkCount := func(label string, n uint32) error {
		if n == 0 {
			return fmt.Errorf("%w: %s threshold must be positive", ErrInvalidConfig, label)
		}
		if int(n) > signerCount {
			return fmt.Errorf("%w: %s threshold %d exceeds signer count %d", ErrInvalidConfig, label, n, signerCount)
		}
		return nil
	}
	switch strategy.Kind {
	case StrategyFixed:
		return checkCount("fixed", strategy.Threshold)
	case StrategyPercentage:
		if strategy.Percentage == 0 || strategy.Percentage > 100 {
			return fmt.Errorf("%w: percentage must be within 1..100", ErrInvalidConfig)
		}
		return nil
	case StrategyAmountTiered:
		if len(strategy.Tiers) == 0 {
			return fmt.Errorf("%w: tier list must not be empty", ErrInvalidConfig)
		}
		first := strategy.Tiers[0].AmountFloor
		if first != nil && first.Sign() != 0 {
			return fmt.Errorf("%w: tier list must include a zero floor", ErrInvalidConfig)
		}
		var prev *big.Int
		for i, tier := range strategy.Tiers {
			floor := tier.AmountFloor
			if floor == nil {
				floor = big.NewInt(0)
			}
			if floor.Sign() < 0 {
				return fmt.Errorf("%w: tier floor must not be negative", ErrInvalidConfig)
			}
			if prev != nil && floor.Cmp(prev) < 0 {
				return fmt.Errorf("%w: tiers must be sorted ascending by floor", ErrInvalidConfig)
			}
			if err := checkCount(fmt.Sprintf("tier %d", i), tier.Approvals); err != nil {
				return err
			}
			prev = floor
		}
		return nil
	case StrategyTimeBased:
		if err := checkCount("initial", strategy.TimeBased.Initial); err != nil {
			return err
		}
		return checkCount("reduced", strategy.TimeBased.Reduced)
	default:
		return fmt.Errorf("%w: unknown strategy kind %d", ErrInvalidConfig, strategy.Kind)
	}
}
