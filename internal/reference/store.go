package reference

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
)

// Class ids accepted by the accessor. Every id in the range must have a row.
const (
	MinClassID = 1
	MaxClassID = 33
)

// Store is an immutable, validated view of the reference dataset.
//
// Invariant: every allow-listed id has exactly one row. Store is safe for
// concurrent use without locking because nothing mutates it after Open.
type Store struct {
	abilities  ruleset.AbilityTable
	classIDs   []int
	classes    map[int]*ruleset.Class
	raceIDs    []int
	races      map[int]*ruleset.Race
	genders    []ruleset.Gender
	alignments []ruleset.Alignment
	armour     map[int]ruleset.Armour
	shields    map[int]ruleset.Shield
	spellIDs   []int
	spells     map[int]ruleset.Spell
}

// Open loads the dataset through loader, validates it and builds the allow-lists.
// A failure here is a fatal startup condition for the caller.
//
// Precondition: loader and logger must be non-nil.
// Postcondition: Returns a ready Store or a non-nil error.
func Open(ctx context.Context, loader Loader, logger *zap.Logger) (*Store, error) {
	d, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading reference dataset: %w", err)
	}
	s, err := NewStore(d)
	if err != nil {
		return nil, err
	}
	logger.Info("reference dataset opened",
		zap.Int("classes", len(s.classIDs)),
		zap.Int("races", len(s.raceIDs)),
		zap.Int("alignments", len(s.alignments)),
		zap.Int("armour", len(s.armour)),
		zap.Int("shields", len(s.shields)),
		zap.Int("spells", len(s.spellIDs)),
	)
	return s, nil
}

// NewStore validates d and indexes it. d must not be modified afterwards.
//
// Postcondition: Returns a ready Store or an error describing the first inconsistency.
func NewStore(d *ruleset.Dataset) (*Store, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		abilities: d.Abilities,
		classes:   make(map[int]*ruleset.Class, len(d.Classes)),
		races:     make(map[int]*ruleset.Race, len(d.Races)),
		armour:    make(map[int]ruleset.Armour, len(d.Armour)),
		shields:   make(map[int]ruleset.Shield, len(d.Shields)),
		spells:    make(map[int]ruleset.Spell, len(d.Spells)),
	}
	for id := MinClassID; id <= MaxClassID; id++ {
		s.classIDs = append(s.classIDs, id)
	}
	for _, c := range d.Classes {
		s.classes[c.ID] = c
	}
	for _, id := range s.classIDs {
		if s.classes[id] == nil {
			return nil, fmt.Errorf("%w: allow-listed class %d has no row", ruleset.ErrInvalidDataset, id)
		}
	}
	if len(s.classes) != len(s.classIDs) {
		return nil, fmt.Errorf("%w: %d class rows for %d allow-listed ids", ruleset.ErrInvalidDataset, len(s.classes), len(s.classIDs))
	}

	for _, r := range d.Races {
		s.races[r.ID] = r
		s.raceIDs = append(s.raceIDs, r.ID)
	}
	for _, g := range d.Genders {
		s.genders = append(s.genders, *g)
	}
	for _, a := range d.Alignments {
		s.alignments = append(s.alignments, *a)
	}
	for _, a := range d.Armour {
		s.armour[a.ID] = *a
	}
	for _, sh := range d.Shields {
		s.shields[sh.ID] = *sh
	}
	for _, sp := range d.Spells {
		spell := *sp
		spell.Schools = slices.Clone(sp.Schools)
		spell.Level = ruleset.LevelString(spell.Schools)
		s.spells[sp.ID] = spell
		s.spellIDs = append(s.spellIDs, sp.ID)
	}
	slices.Sort(s.raceIDs)
	slices.Sort(s.spellIDs)
	return s, nil
}

// Class returns the class with id. The result must not be modified.
//
// Postcondition: Returns ErrInvalidID when id is outside 1..33.
func (s *Store) Class(id int) (*ruleset.Class, error) {
	if _, ok := slices.BinarySearch(s.classIDs, id); !ok {
		return nil, fmt.Errorf("%w: class %d", ruleset.ErrInvalidID, id)
	}
	return s.classes[id], nil
}

// Classes returns every class ordered by id. The rows must not be modified.
func (s *Store) Classes() []*ruleset.Class {
	out := make([]*ruleset.Class, len(s.classIDs))
	for i, id := range s.classIDs {
		out[i] = s.classes[id]
	}
	return out
}

// Race returns the race with id.
//
// Postcondition: Returns ErrInvalidID for an id not in the race table.
func (s *Store) Race(id int) (ruleset.Race, error) {
	if _, ok := slices.BinarySearch(s.raceIDs, id); !ok {
		return ruleset.Race{}, fmt.Errorf("%w: race %d", ruleset.ErrInvalidID, id)
	}
	return *s.races[id], nil
}

// Races returns every race ordered by id.
func (s *Store) Races() []ruleset.Race {
	out := make([]ruleset.Race, len(s.raceIDs))
	for i, id := range s.raceIDs {
		out[i] = *s.races[id]
	}
	return out
}

// Genders returns every gender in table order.
func (s *Store) Genders() []ruleset.Gender {
	return slices.Clone(s.genders)
}

// Alignments returns the five alignments in table order.
func (s *Store) Alignments() []ruleset.Alignment {
	return slices.Clone(s.alignments)
}

// Alignment returns the alignment with the given short name, e.g. "LG".
//
// Postcondition: Returns ErrInvalidID for an unknown short name.
func (s *Store) Alignment(short string) (ruleset.Alignment, error) {
	for _, a := range s.alignments {
		if a.ShortName == short {
			return a, nil
		}
	}
	return ruleset.Alignment{}, fmt.Errorf("%w: alignment %q", ruleset.ErrInvalidID, short)
}

// Armour returns the armour row with id.
//
// Postcondition: Returns ErrInvalidID for an id not in the armour table.
func (s *Store) Armour(id int) (ruleset.Armour, error) {
	a, ok := s.armour[id]
	if !ok {
		return ruleset.Armour{}, fmt.Errorf("%w: armour %d", ruleset.ErrInvalidID, id)
	}
	return a, nil
}

// Shield returns the shield row with id.
//
// Postcondition: Returns ErrInvalidID for an id not in the shield table.
func (s *Store) Shield(id int) (ruleset.Shield, error) {
	sh, ok := s.shields[id]
	if !ok {
		return ruleset.Shield{}, fmt.Errorf("%w: shield %d", ruleset.ErrInvalidID, id)
	}
	return sh, nil
}

// Spell returns the spell with id and its school level summary.
//
// Postcondition: Returns ErrInvalidID for an id not in the spell allow-list.
func (s *Store) Spell(id int) (ruleset.Spell, error) {
	if _, ok := slices.BinarySearch(s.spellIDs, id); !ok {
		return ruleset.Spell{}, fmt.Errorf("%w: spell %d", ruleset.ErrInvalidID, id)
	}
	sp := s.spells[id]
	sp.Schools = slices.Clone(sp.Schools)
	return sp, nil
}

// SpellIDs returns the spell allow-list in ascending order.
func (s *Store) SpellIDs() []int {
	return slices.Clone(s.spellIDs)
}

// AbilityModifiers returns the modifier row for ability at score.
//
// Postcondition: Returns ErrInvalidRange for an unknown ability or a score outside [3,18].
func (s *Store) AbilityModifiers(ability ruleset.Ability, score int) (ruleset.AbilityModifiers, error) {
	return s.abilities.Lookup(ability, score)
}
