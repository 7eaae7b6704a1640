package ruleset

import (
	"fmt"
	"io/fs"

	"github.com/cory-johannsen/hyperborea/internal/game/dice"
)

// Level bounds for every class.
const (
	MinLevel = 1
	MaxLevel = 12
)

// MaxHitDiceCount is the number of hit dice after which a class gains a flat
// bonus per level instead of another die.
const MaxHitDiceCount = 9

// SaveCategory names one of the five saving-throw categories.
type SaveCategory string

const (
	SaveDeath          SaveCategory = "death"
	SaveTransformation SaveCategory = "transformation"
	SaveDevice         SaveCategory = "device"
	SaveAvoidance      SaveCategory = "avoidance"
	SaveSorcery        SaveCategory = "sorcery"
)

// SaveCategories returns the five save categories in display order.
func SaveCategories() []SaveCategory {
	return []SaveCategory{SaveDeath, SaveTransformation, SaveDevice, SaveAvoidance, SaveSorcery}
}

// LevelRow is one row of a class's level progression.
type LevelRow struct {
	Level   int
	XP      int
	FA      int
	CA      int
	TA      int
	SV      int
	HitDice string
}

// Class is an immutable character class definition.
//
// Invariant (after Dataset.Validate): len(Progression) == MaxLevel and
// Progression[i].Level == i+1.
type Class struct {
	ID               int
	Name             string
	BaseClassID      int
	Description      string
	PrimeRequisites  []Ability
	Minimums         map[Ability]int
	Alignments       []string
	HitDie           int
	HitPointBonus    int
	SaveBonuses      []SaveCategory
	StartingArmourID int
	StartingShieldID int
	Progression      []LevelRow
	// ThiefSkills maps a skill id to its base value per level; nil entries are
	// levels at which the skill is not yet available.
	ThiefSkills map[string][]*int
}

// IsSubclass reports whether c specialises one of the four base classes.
func (c *Class) IsSubclass() bool {
	return c.BaseClassID != c.ID
}

// HasThiefSkills reports whether c has any thief skills.
func (c *Class) HasThiefSkills() bool {
	return len(c.ThiefSkills) > 0
}

// Qualifies reports whether scores meet every minimum of c.
// A missing ability counts as a score of zero.
func (c *Class) Qualifies(scores map[Ability]int) bool {
	for a, threshold := range c.Minimums {
		if scores[a] < threshold {
			return false
		}
	}
	return true
}

// LevelData returns the progression row for level.
//
// Postcondition: Returns ErrInvalidRange when level is outside [1,12].
func (c *Class) LevelData(level int) (LevelRow, error) {
	if level < MinLevel || level > MaxLevel || level > len(c.Progression) {
		return LevelRow{}, fmt.Errorf("%w: level %d not in [%d,%d]", ErrInvalidRange, level, MinLevel, MaxLevel)
	}
	return c.Progression[level-1], nil
}

// LevelForXP returns the highest level whose threshold is at or below xp,
// clamped to [1,12].
//
// Postcondition: Returns ErrInvalidRange when xp is negative.
func (c *Class) LevelForXP(xp int) (int, error) {
	if xp < 0 {
		return 0, fmt.Errorf("%w: experience %d is negative", ErrInvalidRange, xp)
	}
	level := MinLevel
	for _, row := range c.Progression {
		if row.XP <= xp {
			level = row.Level
		}
	}
	return level, nil
}

// yamlClassFile is the top-level YAML structure of the classes table.
type yamlClassFile struct {
	Classes []yamlClass `yaml:"classes"`
}

// yamlClass is the YAML representation of a class.
type yamlClass struct {
	ID               int               `yaml:"id"`
	Name             string            `yaml:"name"`
	BaseClassID      int               `yaml:"base_class_id"`
	Description      string            `yaml:"description"`
	PrimeRequisites  []Ability         `yaml:"prime_requisites"`
	Minimums         map[Ability]int   `yaml:"minimums"`
	Alignments       []string          `yaml:"alignments"`
	SaveBonuses      []SaveCategory    `yaml:"save_bonuses"`
	StartingArmourID int               `yaml:"starting_armour_id"`
	StartingShieldID int               `yaml:"starting_shield_id"`
	Progression      yamlProgression   `yaml:"progression"`
	ThiefSkills      map[string][]*int `yaml:"thief_skills"`
}

// yamlProgression stores each progression column as a 12-entry flow sequence.
type yamlProgression struct {
	XP []int    `yaml:"xp"`
	FA []int    `yaml:"fa"`
	CA []int    `yaml:"ca"`
	TA []int    `yaml:"ta"`
	SV []int    `yaml:"sv"`
	HD []string `yaml:"hd"`
}

// LoadClasses reads the classes table from name in fsys.
//
// Precondition: fsys must be non-nil.
// Postcondition: Returns all parsed classes in file order or a non-nil error.
func LoadClasses(fsys fs.FS, name string) ([]*Class, error) {
	var doc yamlClassFile
	if err := decodeFile(fsys, name, &doc); err != nil {
		return nil, err
	}
	classes := make([]*Class, 0, len(doc.Classes))
	for _, yc := range doc.Classes {
		c, err := yc.toClass()
		if err != nil {
			return nil, fmt.Errorf("parsing class %d in %s: %w", yc.ID, name, err)
		}
		classes = append(classes, c)
	}
	return classes, nil
}

func (yc yamlClass) toClass() (*Class, error) {
	p := yc.Progression
	n := len(p.XP)
	for col, l := range map[string]int{"fa": len(p.FA), "ca": len(p.CA), "ta": len(p.TA), "sv": len(p.SV), "hd": len(p.HD)} {
		if l != n {
			return nil, fmt.Errorf("progression column %s has %d rows, xp has %d", col, l, n)
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("empty progression")
	}
	rows := make([]LevelRow, n)
	for i := range rows {
		rows[i] = LevelRow{
			Level:   i + 1,
			XP:      p.XP[i],
			FA:      p.FA[i],
			CA:      p.CA[i],
			TA:      p.TA[i],
			SV:      p.SV[i],
			HitDice: p.HD[i],
		}
	}

	die, bonus, err := DeriveHitDie(rows)
	if err != nil {
		return nil, err
	}

	return &Class{
		ID:               yc.ID,
		Name:             yc.Name,
		BaseClassID:      yc.BaseClassID,
		Description:      yc.Description,
		PrimeRequisites:  yc.PrimeRequisites,
		Minimums:         yc.Minimums,
		Alignments:       yc.Alignments,
		HitDie:           die,
		HitPointBonus:    bonus,
		SaveBonuses:      yc.SaveBonuses,
		StartingArmourID: yc.StartingArmourID,
		StartingShieldID: yc.StartingShieldID,
		Progression:      rows,
		ThiefSkills:      yc.ThiefSkills,
	}, nil
}

// DeriveHitDie reads the die size from the first progression row and the flat
// per-level bonus from the first row past MaxHitDiceCount.
//
// Precondition: rows must be non-empty and ordered by level.
// Postcondition: bonus is 0 when rows stop at or before MaxHitDiceCount.
func DeriveHitDie(rows []LevelRow) (die, bonus int, err error) {
	if len(rows) == 0 {
		return 0, 0, fmt.Errorf("empty progression")
	}
	first, err := dice.Parse(rows[0].HitDice)
	if err != nil {
		return 0, 0, fmt.Errorf("hit dice: %w", err)
	}
	if len(rows) > MaxHitDiceCount {
		next, err := dice.Parse(rows[MaxHitDiceCount].HitDice)
		if err != nil {
			return 0, 0, fmt.Errorf("hit dice: %w", err)
		}
		bonus = next.Modifier
	}
	return first.Sides, bonus, nil
}
