package chargen

import (
	"slices"

	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
)

// ClassList returns the selectable classes ordered by id: all 33 when
// subclasses is true, otherwise the four base classes.
func (e *Engine) ClassList(subclasses bool) []*ruleset.Class {
	var out []*ruleset.Class
	for _, c := range e.store.Classes() {
		if subclasses || !c.IsSubclass() {
			out = append(out, c)
		}
	}
	return out
}

// QualifyingClasses returns the ids of classes whose every minimum is met by
// scores, ascending. With subclasses false only ids 1-4 are candidates.
//
// Postcondition: Returns ErrInvalidRange unless all six scores are present and in [3,18].
func (e *Engine) QualifyingClasses(scores map[ruleset.Ability]int, subclasses bool) ([]int, error) {
	if err := checkScores(scores); err != nil {
		return nil, err
	}
	var ids []int
	for _, c := range e.ClassList(subclasses) {
		if c.Qualifies(scores) {
			ids = append(ids, c.ID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
