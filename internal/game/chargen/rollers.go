package chargen

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
)

// RaceID draws a race id by weight.
func (e *Engine) RaceID() (int, error) {
	races := e.store.Races()
	weights := make([]int, len(races))
	for i, r := range races {
		weights[i] = r.Weight
	}
	i, err := e.roller.Weighted("races", weights)
	if err != nil {
		return 0, err
	}
	return races[i].ID, nil
}

// Gender draws a gender by weight.
func (e *Engine) Gender() (ruleset.Gender, error) {
	genders := e.store.Genders()
	weights := make([]int, len(genders))
	for i, g := range genders {
		weights[i] = g.Weight
	}
	i, err := e.roller.Weighted("genders", weights)
	if err != nil {
		return ruleset.Gender{}, err
	}
	return genders[i], nil
}

// Alignment draws an alignment by weight from those classID permits.
//
// Postcondition: the result's ShortName is in the class's alignment list.
func (e *Engine) Alignment(classID int) (ruleset.Alignment, error) {
	c, err := e.store.Class(classID)
	if err != nil {
		return ruleset.Alignment{}, err
	}
	var (
		candidates []ruleset.Alignment
		weights    []int
	)
	for _, a := range e.store.Alignments() {
		if slices.Contains(c.Alignments, a.ShortName) {
			candidates = append(candidates, a)
			weights = append(weights, a.Weight)
		}
	}
	if len(candidates) == 0 {
		return ruleset.Alignment{}, fmt.Errorf("class %d permits no known alignment", classID)
	}
	i, err := e.roller.Weighted("alignments", weights)
	if err != nil {
		return ruleset.Alignment{}, err
	}
	return candidates[i], nil
}
