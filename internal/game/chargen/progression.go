package chargen

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
)

// AllSavesClassIDs are the classes with +2 on all five save categories.
var AllSavesClassIDs = []int{5, 6, 9, 27}

// SaveBonus is the bonus granted per favoured save category.
const SaveBonus = 2

// LevelData holds a class's ability tiers and save target at one level.
type LevelData struct {
	FA int
	CA int
	TA int
	SV int
}

// Level returns the level a class reaches with xp experience points.
//
// Postcondition: Returns a level in [1,12], ErrInvalidID for a bad class or
// ErrInvalidRange for negative xp.
func (e *Engine) Level(classID, xp int) (int, error) {
	c, err := e.store.Class(classID)
	if err != nil {
		return 0, err
	}
	return c.LevelForXP(xp)
}

// ClassLevelData returns FA, CA, TA and SV for classID at level.
func (e *Engine) ClassLevelData(classID, level int) (LevelData, error) {
	row, err := e.levelRow(classID, level)
	if err != nil {
		return LevelData{}, err
	}
	return LevelData{FA: row.FA, CA: row.CA, TA: row.TA, SV: row.SV}, nil
}

// HitDice returns the hit dice formula for classID at level, e.g. "9d10+3".
//
// Postcondition: the count is min(level, 9) and the bonus appears only past 9th level.
func (e *Engine) HitDice(classID, level int) (string, error) {
	row, err := e.levelRow(classID, level)
	if err != nil {
		return "", err
	}
	return row.HitDice, nil
}

// SaveBonuses returns the bonus for each of the five save categories.
//
// Postcondition: each bonus is 0 or 2; the sum is 10 for AllSavesClassIDs and 4 otherwise.
func (e *Engine) SaveBonuses(classID int) (map[ruleset.SaveCategory]int, error) {
	c, err := e.store.Class(classID)
	if err != nil {
		return nil, err
	}
	out := make(map[ruleset.SaveCategory]int, 5)
	for _, cat := range ruleset.SaveCategories() {
		out[cat] = 0
		if slices.Contains(c.SaveBonuses, cat) {
			out[cat] = SaveBonus
		}
	}
	return out, nil
}

func (e *Engine) levelRow(classID, level int) (ruleset.LevelRow, error) {
	c, err := e.store.Class(classID)
	if err != nil {
		return ruleset.LevelRow{}, err
	}
	if err := checkLevel(level); err != nil {
		return ruleset.LevelRow{}, err
	}
	row, err := c.LevelData(level)
	if err != nil {
		return ruleset.LevelRow{}, fmt.Errorf("class %d: %w", classID, err)
	}
	return row, nil
}
