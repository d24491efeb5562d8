package vault

import "math/big"

// evaluateCondition resolves a single predicate against live state. Balance
// and date comparisons are strict: BalanceAbove(500) is false at exactly 500
// and DateAfter(200) is false at ledger 200.
func evaluateCondition(cond Condition, now uint64, balance *big.Int) bool {
	switch cond.Kind {
	case ConditionBalanceAbove:
		if balance == nil {
			return false
		}
		threshold := cond.Threshold
		if threshold == nil {
			threshold = big.NewInt(0)
		}
		return balance.Cmp(threshold) > 0
	case ConditionDateAfter:
		return now > cond.Ledger
	case ConditionDateBefore:
		return now < cond.Ledger
	default:
		return false
	}
}

// EvaluateConditions combines the proposal's predicates under its logic
// selector. And requires every condition true, Or at least one; an empty list
// is vacuously true under either. The balance argument is the vault's live
// holding of the proposal token, fetched by the caller at execution time.
func EvaluateConditions(conds []Condition, logic ConditionLogic, now uint64, balance *big.Int) bool {
	if len(conds) == 0 {
		return true
	}
	if logic == ConditionLogicOr {
		for _, cond := range conds {
			if evaluateCondition(cond, now, balance) {
				return true
			}
		}
		return false
	}
	for _, cond := range conds {
		if !evaluateCondition(cond, now, balance) {
			return false
		}
	}
	return true
}
