package ruleset

import (
	"fmt"
	"io/fs"
	"slices"
)

// Ability is the two-letter abbreviation of one of the six ability scores.
type Ability string

const (
	Strength     Ability = "st"
	Dexterity    Ability = "dx"
	Constitution Ability = "cn"
	Intelligence Ability = "in"
	Wisdom       Ability = "ws"
	Charisma     Ability = "ch"
)

// Score bounds for every ability.
const (
	MinScore = 3
	MaxScore = 18
)

var abilityOrder = []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

var abilityNames = map[Ability]string{
	Strength:     "Strength",
	Dexterity:    "Dexterity",
	Constitution: "Constitution",
	Intelligence: "Intelligence",
	Wisdom:       "Wisdom",
	Charisma:     "Charisma",
}

// Abilities returns the six abilities in canonical order (st, dx, cn, in, ws, ch).
//
// Postcondition: the returned slice is a fresh copy of length 6.
func Abilities() []Ability {
	return slices.Clone(abilityOrder)
}

// ParseAbility validates s as an ability abbreviation.
//
// Postcondition: Returns ErrInvalidRange for anything other than the six abbreviations.
func ParseAbility(s string) (Ability, error) {
	a := Ability(s)
	if !a.Valid() {
		return "", fmt.Errorf("%w: unknown ability %q", ErrInvalidRange, s)
	}
	return a, nil
}

// Valid reports whether a is one of the six abilities.
func (a Ability) Valid() bool {
	_, ok := abilityNames[a]
	return ok
}

// Name returns the full ability name, e.g. "Dexterity".
func (a Ability) Name() string {
	return abilityNames[a]
}

// ValidScore reports whether score lies in [MinScore, MaxScore].
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// AbilityModifiers is the row of derived modifiers for one ability at one score.
// Fields that do not apply to an ability are zero.
type AbilityModifiers struct {
	Score          int `yaml:"score"`
	AtkMod         int `yaml:"atk_mod"`
	DmgAdj         int `yaml:"dmg_adj"`
	DefAdj         int `yaml:"def_adj"`
	HPAdj          int `yaml:"hp_adj"`
	PoisonAdj      int `yaml:"poison_adj"`
	TraumaSurvival int `yaml:"trauma_survival"`
	LangAdj        int `yaml:"lang_adj"`
	BonusSpells    int `yaml:"bonus_spells"`
	LearnSpell     int `yaml:"learn_spell"`
	WillAdj        int `yaml:"will_adj"`
	ReactionAdj    int `yaml:"reaction_adj"`
	MaxHenchmen    int `yaml:"max_henchmen"`
	MoraleAdj      int `yaml:"morale_adj"`
	Test           int `yaml:"test"`
	Feat           int `yaml:"feat"`
	SkillAdj       int `yaml:"skill_adj"`
}

// AbilityTable maps each ability to its modifier rows ordered by score.
type AbilityTable map[Ability][]AbilityModifiers

// Lookup returns the modifier row for ability a at score.
//
// Precondition: the table has passed Dataset.Validate.
// Postcondition: Returns ErrInvalidRange for an unknown ability or a score outside [3,18].
func (t AbilityTable) Lookup(a Ability, score int) (AbilityModifiers, error) {
	if !a.Valid() {
		return AbilityModifiers{}, fmt.Errorf("%w: unknown ability %q", ErrInvalidRange, a)
	}
	if !ValidScore(score) {
		return AbilityModifiers{}, fmt.Errorf("%w: %s score %d not in [%d,%d]", ErrInvalidRange, a, score, MinScore, MaxScore)
	}
	rows := t[a]
	i, found := slices.BinarySearchFunc(rows, score, func(row AbilityModifiers, s int) int {
		return row.Score - s
	})
	if !found {
		return AbilityModifiers{}, fmt.Errorf("%w: no %s row for score %d", ErrInvalidRange, a, score)
	}
	return rows[i], nil
}

// LoadAbilityModifiers reads the ability modifier tables from name in fsys.
//
// Precondition: fsys must be non-nil.
// Postcondition: Returns the table with every ability's rows sorted by score, or a non-nil error.
func LoadAbilityModifiers(fsys fs.FS, name string) (AbilityTable, error) {
	var doc struct {
		Abilities AbilityTable `yaml:"abilities"`
	}
	if err := decodeFile(fsys, name, &doc); err != nil {
		return nil, err
	}
	for a := range doc.Abilities {
		slices.SortFunc(doc.Abilities[a], func(x, y AbilityModifiers) int { return x.Score - y.Score })
	}
	return doc.Abilities, nil
}
