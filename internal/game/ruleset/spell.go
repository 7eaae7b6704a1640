package ruleset

import (
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

// RuneSchool is the runegraver school, which is never listed in a spell's level string.
const RuneSchool = "run"

// SchoolLevel associates a spell with the level at which one school teaches it.
type SchoolLevel struct {
	School string `yaml:"school"`
	Level  int    `yaml:"level"`
}

// Spell is an immutable spell row together with its school associations.
type Spell struct {
	ID          int           `yaml:"id"`
	Name        string        `yaml:"name"`
	Range       string        `yaml:"rng"`
	Duration    string        `yaml:"dur"`
	Reversible  bool          `yaml:"reversible"`
	PP          int           `yaml:"pp"`
	Description string        `yaml:"description"`
	Schools     []SchoolLevel `yaml:"schools"`
	// Level summarises Schools as "<school> <level>" pairs; see LevelString.
	Level string `yaml:"-"`
}

// LevelString formats school associations as "<school> <level>" pairs joined
// with ", ", ordered by school name, skipping the rune school.
//
// Postcondition: Returns "" when only the rune school teaches the spell.
func LevelString(schools []SchoolLevel) string {
	kept := make([]SchoolLevel, 0, len(schools))
	for _, sl := range schools {
		if sl.School == RuneSchool {
			continue
		}
		kept = append(kept, sl)
	}
	slices.SortStableFunc(kept, func(a, b SchoolLevel) int { return strings.Compare(a.School, b.School) })
	parts := make([]string, len(kept))
	for i, sl := range kept {
		parts[i] = fmt.Sprintf("%s %d", sl.School, sl.Level)
	}
	return strings.Join(parts, ", ")
}

// LoadSpells reads the spells table from name in fsys and fills each spell's Level.
//
// Precondition: fsys must be non-nil.
// Postcondition: Returns all parsed spells in file order or a non-nil error.
func LoadSpells(fsys fs.FS, name string) ([]*Spell, error) {
	var doc struct {
		Spells []*Spell `yaml:"spells"`
	}
	if err := decodeFile(fsys, name, &doc); err != nil {
		return nil, err
	}
	for _, s := range doc.Spells {
		s.Level = LevelString(s.Schools)
	}
	return doc.Spells, nil
}
