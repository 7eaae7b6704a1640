package chargen

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/hyperborea/internal/game/dice"
	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
)

// Method selects how ability scores are generated.
type Method int

const (
	// MethodInOrder rolls 3d6 for each ability in order.
	MethodInOrder Method = iota + 1
	// MethodArranged rolls 3d6 six times and arranges the results.
	MethodArranged
	// MethodDropLowest rolls 4d6 six times, drops the lowest die of each and arranges.
	MethodDropLowest
	// MethodBestOfTwelve rolls 3d6 twelve times and arranges the best six.
	MethodBestOfTwelve
	// MethodTwiceTakeHigher rolls 3d6 twice per ability in order and keeps the higher.
	MethodTwiceTakeHigher
	// MethodClassFirst rolls 4d6 drop lowest for a chosen class, rerolling up to
	// three times until it qualifies and then raising unmet minimums.
	MethodClassFirst
)

// classFirstRerolls is the number of rerolls MethodClassFirst makes before it
// raises unmet minimums.
const classFirstRerolls = 3

var (
	threeD6 = dice.MustParse("3d6")
	fourD6  = dice.MustParse("4d6kh3")
)

// Validate reports ErrInvalidRange unless m is one of the six methods.
func (m Method) Validate() error {
	if m < MethodInOrder || m > MethodClassFirst {
		return fmt.Errorf("%w: ability score method %d not in [1,6]", ruleset.ErrInvalidRange, m)
	}
	return nil
}

// AbilityScore is one ability's score with its modifier row.
type AbilityScore struct {
	Score int
	Mods  ruleset.AbilityModifiers
}

// AbilityScores holds all six abilities.
type AbilityScores map[ruleset.Ability]AbilityScore

// Scores returns the bare scores.
func (s AbilityScores) Scores() map[ruleset.Ability]int {
	out := make(map[ruleset.Ability]int, len(s))
	for a, v := range s {
		out[a] = v.Score
	}
	return out
}

// RollStats generates six ability scores with method. classID 0 means no
// class; otherwise results are arranged to favour that class.
//
// Precondition: method in 1-6; classID is 0 or a valid class id. MethodClassFirst requires a class.
// Postcondition: every score is in [3,18]. With MethodClassFirst the scores qualify for the class.
func (e *Engine) RollStats(method Method, classID int) (AbilityScores, error) {
	if err := method.Validate(); err != nil {
		return nil, err
	}
	var class *ruleset.Class
	if classID != 0 {
		c, err := e.store.Class(classID)
		if err != nil {
			return nil, err
		}
		class = c
	}
	if method == MethodClassFirst && class == nil {
		return nil, fmt.Errorf("%w: method %d requires a class", ruleset.ErrInvalidRange, method)
	}

	var scores map[ruleset.Ability]int
	switch method {
	case MethodInOrder:
		scores = inOrder(e.rollN(threeD6, 6))
	case MethodArranged:
		scores = arrange(e.rollN(threeD6, 6), class)
	case MethodDropLowest:
		scores = arrange(e.rollN(fourD6, 6), class)
	case MethodBestOfTwelve:
		scores = arrange(bestSix(e.rollN(threeD6, 12)), class)
	case MethodTwiceTakeHigher:
		first, second := e.rollN(threeD6, 6), e.rollN(threeD6, 6)
		for i := range first {
			first[i] = max(first[i], second[i])
		}
		scores = inOrder(first)
	case MethodClassFirst:
		scores = arrange(e.rollN(fourD6, 6), class)
		for i := 0; i < classFirstRerolls && !class.Qualifies(scores); i++ {
			scores = arrange(e.rollN(fourD6, 6), class)
		}
		for a, threshold := range class.Minimums {
			scores[a] = max(scores[a], threshold)
		}
	}
	return e.withMods(scores)
}

// Attr rolls ability scores with the Engine's default method and no class.
// A class-first default falls back to 4d6 drop lowest.
func (e *Engine) Attr() (AbilityScores, error) {
	m := e.method
	if m == MethodClassFirst {
		m = MethodDropLowest
	}
	return e.RollStats(m, 0)
}

// AttrMod returns the modifier row for ability at score.
//
// Postcondition: Returns ErrInvalidRange for an unknown ability or a score outside [3,18].
func (e *Engine) AttrMod(ability ruleset.Ability, score int) (ruleset.AbilityModifiers, error) {
	return e.store.AbilityModifiers(ability, score)
}

// Scores builds AbilityScores from bare scores.
//
// Postcondition: Returns ErrInvalidRange unless all six abilities are present with scores in [3,18].
func (e *Engine) Scores(scores map[ruleset.Ability]int) (AbilityScores, error) {
	if err := checkScores(scores); err != nil {
		return nil, err
	}
	return e.withMods(scores)
}

func (e *Engine) withMods(scores map[ruleset.Ability]int) (AbilityScores, error) {
	out := make(AbilityScores, len(scores))
	for a, v := range scores {
		mods, err := e.store.AbilityModifiers(a, v)
		if err != nil {
			return nil, err
		}
		out[a] = AbilityScore{Score: v, Mods: mods}
	}
	return out, nil
}

func (e *Engine) rollN(expr dice.Expression, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = e.roller.Roll(expr).Total()
	}
	return out
}

func checkScores(scores map[ruleset.Ability]int) error {
	for _, a := range ruleset.Abilities() {
		v, ok := scores[a]
		if !ok {
			return fmt.Errorf("%w: missing %s score", ruleset.ErrInvalidRange, a)
		}
		if err := checkScore(a, v); err != nil {
			return err
		}
	}
	for a := range scores {
		if !a.Valid() {
			return fmt.Errorf("%w: unknown ability %q", ruleset.ErrInvalidRange, a)
		}
	}
	return nil
}

// inOrder assigns values to abilities in canonical order.
func inOrder(values []int) map[ruleset.Ability]int {
	out := make(map[ruleset.Ability]int, len(values))
	for i, a := range ruleset.Abilities() {
		out[a] = values[i]
	}
	return out
}

// bestSix keeps the six highest values, preserving their rolled order.
func bestSix(values []int) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return values[b] - values[a] })
	keep := idx[:6]
	slices.Sort(keep)
	out := make([]int, len(keep))
	for i, j := range keep {
		out[i] = values[j]
	}
	return out
}

// arrange assigns values to abilities. Without a class, values keep their
// rolled order. With a class, the highest values go to prime requisites, then
// to other abilities with minimums, then to the rest in canonical order. Within
// the first two groups higher thresholds come first.
func arrange(values []int, class *ruleset.Class) map[ruleset.Ability]int {
	if class == nil {
		return inOrder(values)
	}
	sorted := slices.Clone(values)
	slices.SortFunc(sorted, func(a, b int) int { return b - a })

	out := make(map[ruleset.Ability]int, len(values))
	for i, a := range priority(class) {
		out[a] = sorted[i]
	}
	return out
}

// priority orders the six abilities by how much class needs them.
func priority(class *ruleset.Class) []ruleset.Ability {
	byThreshold := func(a, b ruleset.Ability) int {
		return class.Minimums[b] - class.Minimums[a]
	}
	order := make([]ruleset.Ability, 0, 6)
	for _, a := range class.PrimeRequisites {
		if !slices.Contains(order, a) {
			order = append(order, a)
		}
	}
	slices.SortStableFunc(order, byThreshold)
	var constrained []ruleset.Ability
	for _, a := range ruleset.Abilities() {
		if _, ok := class.Minimums[a]; ok && !slices.Contains(order, a) {
			constrained = append(constrained, a)
		}
	}
	slices.SortStableFunc(constrained, byThreshold)
	order = append(order, constrained...)
	for _, a := range ruleset.Abilities() {
		if !slices.Contains(order, a) {
			order = append(order, a)
		}
	}
	return order
}
