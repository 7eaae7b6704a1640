package dice

import (
	"fmt"
	"slices"
)

// Roll evaluates expr using src.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Kept() and every die is in [1, expr.Sides].
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	result := RollResult{Expression: expr.Raw, Dice: rolled, Modifier: expr.Modifier}
	if expr.KeepHighest > 0 {
		sorted := slices.Clone(rolled)
		slices.SortFunc(sorted, func(a, b int) int { return b - a })
		result.Dice = sorted[:expr.KeepHighest]
		result.Dropped = sorted[expr.KeepHighest:]
	}
	return result
}

// RollExpr parses expr and rolls it using src in a single call.
//
// Postcondition: Returns a RollResult or a parse error.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}

// Weighted returns an index into weights drawn with probability proportional
// to its weight. Entries with non-positive weight are never chosen.
//
// Postcondition: Returns an error when no weight is positive.
func Weighted(weights []int, src Source) (int, error) {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0, fmt.Errorf("dice: weighted draw over %d candidates with no positive weight", len(weights))
	}
	roll := src.Intn(total)
	cumulative := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		if roll < cumulative {
			return i, nil
		}
	}
	return len(weights) - 1, nil
}
