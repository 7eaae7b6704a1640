// Package dice provides the randomness abstraction, dice expressions and
// roll results used by character generation.
package dice

import "fmt"

// RollResult records one evaluated dice expression.
//
// Postcondition: Total() == sum(Dice) + Modifier. Dropped dice never count.
type RollResult struct {
	Expression string // expression as written, e.g. "4d6kh3"
	Dice       []int  // kept die results, highest first when dice were dropped
	Dropped    []int  // dice discarded by a keep-highest clause
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of the kept dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns an audit line such as "4d6kh3 → [6 5 3] drop [1] +0 = 14".
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	dropped := ""
	if len(r.Dropped) > 0 {
		dropped = fmt.Sprintf(" drop %v", r.Dropped)
	}
	return fmt.Sprintf("%s → %v%s %+d = %d", r.Expression, r.Dice, dropped, r.Modifier, r.Total())
}

// Source is the randomness provider for dice rolls and weighted draws.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
