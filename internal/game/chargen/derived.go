package chargen

import (
	"fmt"

	"github.com/cory-johannsen/hyperborea/internal/game/dice"
	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
)

// AACBase converts descending AC to ascending AC: AAC = AACBase - AC.
const AACBase = 19

// ThiefSkill is one thief skill result. Roll is nil when the class lacks the
// skill or has not reached the level at which it unlocks.
type ThiefSkill struct {
	Skill string
	Name  string
	Roll  *int
	Stat  ruleset.Ability
}

// RollHitPoints rolls hit points for classID at level, adding hpAdj once.
//
// Postcondition: level <= result <= MaxHitPoints(classID, level, hpAdj).
func (e *Engine) RollHitPoints(classID, level, hpAdj int) (int, error) {
	expr, err := e.hitDiceExpr(classID, level)
	if err != nil {
		return 0, err
	}
	hp := e.roller.Roll(expr).Total() + hpAdj
	return min(max(hp, level), expr.Max()+max(hpAdj, 0)), nil
}

// MaxHitPoints returns the highest total RollHitPoints can produce.
func (e *Engine) MaxHitPoints(classID, level, hpAdj int) (int, error) {
	expr, err := e.hitDiceExpr(classID, level)
	if err != nil {
		return 0, err
	}
	return expr.Max() + max(hpAdj, 0), nil
}

func (e *Engine) hitDiceExpr(classID, level int) (dice.Expression, error) {
	row, err := e.levelRow(classID, level)
	if err != nil {
		return dice.Expression{}, err
	}
	expr, err := dice.Parse(row.HitDice)
	if err != nil {
		return dice.Expression{}, fmt.Errorf("class %d level %d hit dice: %w", classID, level, err)
	}
	return expr, nil
}

// StartingArmour returns the armour a new character of classID wears.
func (e *Engine) StartingArmour(classID int) (ruleset.Armour, error) {
	c, err := e.store.Class(classID)
	if err != nil {
		return ruleset.Armour{}, err
	}
	return e.store.Armour(c.StartingArmourID)
}

// StartingShield returns the shield a new character of classID carries, or
// nil when the class starts without one.
func (e *Engine) StartingShield(classID int) (*ruleset.Shield, error) {
	c, err := e.store.Class(classID)
	if err != nil {
		return nil, err
	}
	if c.StartingShieldID == 0 {
		return nil, nil
	}
	sh, err := e.store.Shield(c.StartingShieldID)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// CalculateAC returns base + shieldDefMod + dxDefAdj. No clamping is applied.
func CalculateAC(base, shieldDefMod, dxDefAdj int) int {
	return base + shieldDefMod + dxDefAdj
}

// ACToAAC converts descending armour class to ascending armour class.
func ACToAAC(ac int) int {
	return AACBase - ac
}

// ThiefSkills returns the nine thief skills for classID at level, or nil when
// the class has no thief skills. Each roll is the table base plus the
// governing ability's skill adjustment.
//
// Precondition: level in [1,12]; dx, in and ws in [3,18].
func (e *Engine) ThiefSkills(classID, level, dx, in, ws int) ([]ThiefSkill, error) {
	c, err := e.store.Class(classID)
	if err != nil {
		return nil, err
	}
	if err := checkLevel(level); err != nil {
		return nil, err
	}
	scores := map[ruleset.Ability]int{ruleset.Dexterity: dx, ruleset.Intelligence: in, ruleset.Wisdom: ws}
	for a, v := range scores {
		if err := checkScore(a, v); err != nil {
			return nil, err
		}
	}
	if !c.HasThiefSkills() {
		return nil, nil
	}

	defs := ruleset.ThiefSkillDefs()
	out := make([]ThiefSkill, len(defs))
	for i, def := range defs {
		out[i] = ThiefSkill{Skill: def.ID, Name: def.Name, Stat: def.Stat}
		table := c.ThiefSkills[def.ID]
		if len(table) < level || table[level-1] == nil {
			continue
		}
		mods, err := e.store.AbilityModifiers(def.Stat, scores[def.Stat])
		if err != nil {
			return nil, err
		}
		roll := *table[level-1] + mods.SkillAdj
		out[i].Roll = &roll
	}
	return out, nil
}
