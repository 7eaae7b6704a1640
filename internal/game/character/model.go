// Package character defines the generated character record and the generator
// that assembles it from the rules engine.
package character

import (
	"github.com/cory-johannsen/hyperborea/internal/game/chargen"
	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
)

// Character is a transient, fully derived character. It is never persisted.
type Character struct {
	ID string

	Race      ruleset.Race
	Gender    ruleset.Gender
	Class     *ruleset.Class
	Alignment ruleset.Alignment

	Level      int
	Experience int
	Abilities  chargen.AbilityScores

	HitPoints int
	HitDice   string
	chargen.LevelData
	SaveBonuses map[ruleset.SaveCategory]int

	Armour *ruleset.Armour
	Shield *ruleset.Shield
	AC     int
	AAC    int

	// ThiefSkills is nil for classes without thief skills.
	ThiefSkills []chargen.ThiefSkill
}

// Score returns the character's score in ability a.
func (c *Character) Score(a ruleset.Ability) int {
	return c.Abilities[a].Score
}
