package vault

import (
	"errors"
	"math/big"
	"testing"
)

func fixedStrategy(n uint32) ThresholdStrategy {
	return ThresholdStrategy{Kind: StrategyFixed, Threshold: n}
}

func TestRequiredApprovalsFixed(t *testing.T) {
	if got := RequiredApprovals(fixedStrategy(2), 3, big.NewInt(100), 0, 0); got != 2 {
		t.Fatalf("expected 2 approvals, got %d", got)
	}
	// Clamped to the signer count when the set shrinks below the fixed value.
	if got := RequiredApprovals(fixedStrategy(5), 3, big.NewInt(100), 0, 0); got != 3 {
		t.Fatalf("expected clamp to 3, got %d", got)
	}
	// Never zero.
	if got := RequiredApprovals(ThresholdStrategy{Kind: StrategyFixed}, 3, big.NewInt(100), 0, 0); got != 1 {
		t.Fatalf("expected floor of 1, got %d", got)
	}
}

func TestRequiredApprovalsPercentage(t *testing.T) {
	cases := []struct {
		pct     uint32
		signers int
		want    uint32
	}{
		{67, 4, 3},
		{50, 4, 2},
		{51, 4, 3},
		{100, 5, 5},
		{1, 100, 1},
		{34, 3, 2},
	}
	for _, tc := range cases {
		strategy := ThresholdStrategy{Kind: StrategyPercentage, Percentage: tc.pct}
		if got := RequiredApprovals(strategy, tc.signers, big.NewInt(1), 0, 0); got != tc.want {
			t.Fatalf("%d%% of %d signers: expected %d, got %d", tc.pct, tc.signers, tc.want, got)
		}
	}
}

func TestRequiredApprovalsAmountTiered(t *testing.T) {
	strategy := ThresholdStrategy{
		Kind: StrategyAmountTiered,
		Tiers: []AmountTier{
			{AmountFloor: big.NewInt(0), Approvals: 1},
			{AmountFloor: big.NewInt(100), Approvals: 2},
			{AmountFloor: big.NewInt(500), Approvals: 3},
		},
	}
	cases := []struct {
		amount int64
		want   uint32
	}{
		{50, 1},
		{100, 2},
		{200, 2},
		{499, 2},
		{500, 3},
		{600, 3},
	}
	for _, tc := range cases {
		if got := RequiredApprovals(strategy, 4, big.NewInt(tc.amount), 0, 0); got != tc.want {
			t.Fatalf("amount %d: expected %d approvals, got %d", tc.amount, tc.want, got)
		}
	}
}

func TestRequiredApprovalsTieBreak(t *testing.T) {
	// Equal floors: the last-defined tier wins.
	strategy := ThresholdStrategy{
		Kind: StrategyAmountTiered,
		Tiers: []AmountTier{
			{AmountFloor: big.NewInt(0), Approvals: 1},
			{AmountFloor: big.NewInt(100), Approvals: 2},
			{AmountFloor: big.NewInt(100), Approvals: 3},
		},
	}
	if got := RequiredApprovals(strategy, 4, big.NewInt(150), 0, 0); got != 3 {
		t.Fatalf("expected last tier to win on tied floors, got %d", got)
	}
}

func TestRequiredApprovalsTimeBased(t *testing.T) {
	strategy := ThresholdStrategy{
		Kind:      StrategyTimeBased,
		TimeBased: TimeBasedThreshold{Initial: 3, Reduced: 2, ReductionDelay: 100},
	}
	if got := RequiredApprovals(strategy, 4, big.NewInt(1), 100, 150); got != 3 {
		t.Fatalf("before reduction delay: expected 3, got %d", got)
	}
	if got := RequiredApprovals(strategy, 4, big.NewInt(1), 100, 200); got != 2 {
		t.Fatalf("at reduction delay: expected 2, got %d", got)
	}
	if got := RequiredApprovals(strategy, 4, big.NewInt(1), 100, 500); got != 2 {
		t.Fatalf("after reduction delay: expected 2, got %d", got)
	}
}

func TestValidateStrategyRejections(t *testing.T) {
	cases := []struct {
		name     string
		strategy ThresholdStrategy
		signers  int
	}{
		{"fixed zero", fixedStrategy(0), 3},
		{"fixed over signers", fixedStrategy(4), 3},
		{"percentage zero", ThresholdStrategy{Kind: StrategyPercentage}, 3},
		{"percentage over 100", ThresholdStrategy{Kind: StrategyPercentage, Percentage: 120}, 3},
		{"empty tiers", ThresholdStrategy{Kind: StrategyAmountTiered}, 3},
		{"missing zero floor", ThresholdStrategy{Kind: StrategyAmountTiered, Tiers: []AmountTier{
			{AmountFloor: big.NewInt(100), Approvals: 1},
		}}, 3},
		{"unsorted tiers", ThresholdStrategy{Kind: StrategyAmountTiered, Tiers: []AmountTier{
			{AmountFloor: big.NewInt(0), Approvals: 1},
			{AmountFloor: big.NewInt(500), Approvals: 2},
			{AmountFloor: big.NewInt(100), Approvals: 3},
		}}, 3},
		{"tier over signers", ThresholdStrategy{Kind: StrategyAmountTiered, Tiers: []AmountTier{
			{AmountFloor: big.NewInt(0), Approvals: 5},
		}}, 3},
		{"time-based zero reduced", ThresholdStrategy{Kind: StrategyTimeBased, TimeBased: TimeBasedThreshold{Initial: 2}}, 3},
	}
	for _, tc := range cases {
		if err := ValidateStrategy(tc.strategy, tc.signers); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", tc.name, err)
		}
	}
}

func TestValidateStrategyAccepts(t *testing.T) {
	cases := []ThresholdStrategy{
		fixedStrategy(2),
		{Kind: StrategyPercentage, Percentage: 67},
		{Kind: StrategyAmountTiered, Tiers: []AmountTier{
			{AmountFloor: big.NewInt(0), Approvals: 1},
			{AmountFloor: big.NewInt(100), Approvals: 2},
		}},
		{Kind: StrategyTimeBased, TimeBased: TimeBasedThreshold{Initial: 3, Reduced: 2, ReductionDelay: 50}},
	}
	for i, strategy := range cases {
		if err := ValidateStrategy(strategy, 3); err != nil {
			t.Fatalf("case %d: unexpected error %v", i, err)
		}
	}
}
