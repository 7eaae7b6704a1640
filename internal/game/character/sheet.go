package character

import (
	"fmt"

	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
)

// Sheet is a flat, printable view of a Character.
type Sheet struct {
	ID          string            `yaml:"id"`
	Race        string            `yaml:"race"`
	Gender      string            `yaml:"gender"`
	Class       string            `yaml:"class"`
	Alignment   string            `yaml:"alignment"`
	Level       int               `yaml:"level"`
	Experience  int               `yaml:"xp"`
	Abilities   map[string]int    `yaml:"abilities"`
	HitPoints   int               `yaml:"hp"`
	HitDice     string            `yaml:"hd"`
	FA          int               `yaml:"fa"`
	CA          int               `yaml:"ca"`
	TA          int               `yaml:"ta"`
	SV          int               `yaml:"sv"`
	SaveBonuses map[string]int    `yaml:"save_bonuses,omitempty"`
	Armour      string            `yaml:"armour"`
	Shield      string            `yaml:"shield,omitempty"`
	AC          int               `yaml:"ac"`
	AAC         int               `yaml:"aac"`
	ThiefSkills map[string]string `yaml:"thief_skills,omitempty"`
}

// Sheet flattens c for display. Unavailable thief skills are shown as "-".
func (c *Character) Sheet() Sheet {
	s := Sheet{
		ID:         c.ID,
		Race:       c.Race.Name,
		Gender:     c.Gender.Name,
		Alignment:  c.Alignment.ShortName,
		Level:      c.Level,
		Experience: c.Experience,
		Abilities:  make(map[string]int, len(c.Abilities)),
		HitPoints:  c.HitPoints,
		HitDice:    c.HitDice,
		FA:         c.FA,
		CA:         c.CA,
		TA:         c.TA,
		SV:         c.SV,
		AC:         c.AC,
		AAC:        c.AAC,
	}
	if c.Class != nil {
		s.Class = c.Class.Name
	}
	for _, a := range ruleset.Abilities() {
		if v, ok := c.Abilities[a]; ok {
			s.Abilities[string(a)] = v.Score
		}
	}
	if len(c.SaveBonuses) > 0 {
		s.SaveBonuses = make(map[string]int, len(c.SaveBonuses))
		for cat, bonus := range c.SaveBonuses {
			s.SaveBonuses[string(cat)] = bonus
		}
	}
	if c.Armour != nil {
		s.Armour = c.Armour.Type
	}
	if c.Shield != nil {
		s.Shield = c.Shield.Type
	}
	if c.ThiefSkills != nil {
		s.ThiefSkills = make(map[string]string, len(c.ThiefSkills))
		for _, ts := range c.ThiefSkills {
			if ts.Roll == nil {
				s.ThiefSkills[ts.Skill] = "-"
				continue
			}
			s.ThiefSkills[ts.Skill] = fmt.Sprintf("%d:12", *ts.Roll)
		}
	}
	return s
}
