package vault

import (
	"math/big"
	"testing"
)

func TestEvaluateConditionsEmpty(t *testing.T) {
	if !EvaluateConditions(nil, ConditionLogicAnd, 100, nil) {
		t.Fatalf("empty condition list must be vacuously true under And")
	}
	if !EvaluateConditions(nil, ConditionLogicOr, 100, nil) {
		t.Fatalf("empty condition list must be vacuously true under Or")
	}
}

func TestEvaluateDateConditions(t *testing.T) {
	after := []Condition{{Kind: ConditionDateAfter, Ledger: 200}}
	if EvaluateConditions(after, ConditionLogicAnd, 100, nil) {
		t.Fatalf("DateAfter(200) must fail at 100")
	}
	if EvaluateConditions(after, ConditionLogicAnd, 200, nil) {
		t.Fatalf("DateAfter(200) is strict and must fail at exactly 200")
	}
	if !EvaluateConditions(after, ConditionLogicAnd, 201, nil) {
		t.Fatalf("DateAfter(200) must hold at 201")
	}

	before := []Condition{{Kind: ConditionDateBefore, Ledger: 200}}
	if !EvaluateConditions(before, ConditionLogicAnd, 100, nil) {
		t.Fatalf("DateBefore(200) must hold at 100")
	}
	if EvaluateConditions(before, ConditionLogicAnd, 200, nil) {
		t.Fatalf("DateBefore(200) is strict and must fail at exactly 200")
	}
}

func TestEvaluateBalanceAbove(t *testing.T) {
	conds := []Condition{{Kind: ConditionBalanceAbove, Threshold: big.NewInt(500)}}
	if EvaluateConditions(conds, ConditionLogicAnd, 0, big.NewInt(500)) {
		t.Fatalf("BalanceAbove(500) must fail at exactly 500")
	}
	if !EvaluateConditions(conds, ConditionLogicAnd, 0, big.NewInt(501)) {
		t.Fatalf("BalanceAbove(500) must hold at 501")
	}
	if EvaluateConditions(conds, ConditionLogicAnd, 0, nil) {
		t.Fatalf("BalanceAbove must fail without a balance")
	}
}

func TestEvaluateAndLogic(t *testing.T) {
	conds := []Condition{
		{Kind: ConditionDateAfter, Ledger: 150},
		{Kind: ConditionDateBefore, Ledger: 250},
	}
	if !EvaluateConditions(conds, ConditionLogicAnd, 200, nil) {
		t.Fatalf("window 150..250 must hold at 200")
	}
	if EvaluateConditions(conds, ConditionLogicAnd, 100, nil) {
		t.Fatalf("window 150..250 must fail at 100")
	}
	if EvaluateConditions(conds, ConditionLogicAnd, 300, nil) {
		t.Fatalf("window 150..250 must fail at 300")
	}
}

func TestEvaluateOrLogic(t *testing.T) {
	conds := []Condition{
		{Kind: ConditionDateAfter, Ledger: 200},
		{Kind: ConditionDateAfter, Ledger: 300},
	}
	if EvaluateConditions(conds, ConditionLogicOr, 100, nil) {
		t.Fatalf("neither condition met at 100")
	}
	if !EvaluateConditions(conds, ConditionLogicOr, 201, nil) {
		t.Fatalf("first condition met at 201")
	}
}
