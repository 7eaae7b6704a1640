package ruleset

import (
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/cory-johannsen/hyperborea/internal/game/dice"
)

// Ranges of the progression columns.
const (
	MaxAbilityTier = 12
	MinSaveTarget  = 11
	MaxSaveTarget  = 16
)

// BaseClassIDs are the ids of the four base classes.
var BaseClassIDs = []int{1, 2, 3, 4}

// Dataset is the complete set of reference tables.
type Dataset struct {
	Abilities  AbilityTable
	Classes    []*Class
	Races      []*Race
	Genders    []*Gender
	Alignments []*Alignment
	Armour     []*Armour
	Shields    []*Shield
	Spells     []*Spell
}

// LoadDataset reads every reference table from fsys using the standard file names.
//
// Precondition: fsys must be non-nil.
// Postcondition: Returns a fully populated Dataset or the first load error.
// The result is not validated; call Validate before use.
func LoadDataset(fsys fs.FS) (*Dataset, error) {
	var (
		d   Dataset
		err error
	)
	if d.Abilities, err = LoadAbilityModifiers(fsys, AbilitiesFile); err != nil {
		return nil, err
	}
	if d.Classes, err = LoadClasses(fsys, ClassesFile); err != nil {
		return nil, err
	}
	if d.Races, err = LoadRaces(fsys, RacesFile); err != nil {
		return nil, err
	}
	if d.Genders, err = LoadGenders(fsys, GendersFile); err != nil {
		return nil, err
	}
	if d.Alignments, err = LoadAlignments(fsys, AlignmentsFile); err != nil {
		return nil, err
	}
	if d.Armour, err = LoadArmour(fsys, ArmourFile); err != nil {
		return nil, err
	}
	if d.Shields, err = LoadShields(fsys, ShieldsFile); err != nil {
		return nil, err
	}
	if d.Spells, err = LoadSpells(fsys, SpellsFile); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks referential integrity and value ranges across all tables.
//
// Postcondition: Returns nil if the dataset is consistent, or an error wrapping
// ErrInvalidDataset that describes every violation.
func (d *Dataset) Validate() error {
	var errs []string
	errs = append(errs, d.validateAbilities()...)

	alignments := make(map[string]bool, len(d.Alignments))
	alignmentIDs := make(map[int]bool, len(d.Alignments))
	for _, a := range d.Alignments {
		if alignments[a.ShortName] || alignmentIDs[a.ID] {
			errs = append(errs, fmt.Sprintf("alignment %d %q duplicated", a.ID, a.ShortName))
		}
		alignments[a.ShortName] = true
		alignmentIDs[a.ID] = true
		if a.Weight <= 0 {
			errs = append(errs, fmt.Sprintf("alignment %q weight must be > 0", a.ShortName))
		}
	}

	raceIDs := make(map[int]bool, len(d.Races))
	for _, r := range d.Races {
		if r.ID <= 0 || raceIDs[r.ID] {
			errs = append(errs, fmt.Sprintf("race id %d invalid or duplicated", r.ID))
		}
		raceIDs[r.ID] = true
		if r.Weight <= 0 {
			errs = append(errs, fmt.Sprintf("race %d weight must be > 0", r.ID))
		}
		for a := range r.Adjustments {
			if !a.Valid() {
				errs = append(errs, fmt.Sprintf("race %d adjusts unknown ability %q", r.ID, a))
			}
		}
	}

	genderIDs := make(map[int]bool, len(d.Genders))
	for _, g := range d.Genders {
		if g.ID <= 0 || genderIDs[g.ID] {
			errs = append(errs, fmt.Sprintf("gender id %d invalid or duplicated", g.ID))
		}
		genderIDs[g.ID] = true
		if g.Weight <= 0 {
			errs = append(errs, fmt.Sprintf("gender %d weight must be > 0", g.ID))
		}
	}

	armourIDs := make(map[int]bool, len(d.Armour))
	for _, a := range d.Armour {
		if a.ID <= 0 || armourIDs[a.ID] {
			errs = append(errs, fmt.Sprintf("armour id %d invalid or duplicated", a.ID))
		}
		armourIDs[a.ID] = true
	}
	shieldIDs := make(map[int]bool, len(d.Shields))
	for _, s := range d.Shields {
		if s.ID <= 0 || shieldIDs[s.ID] {
			errs = append(errs, fmt.Sprintf("shield id %d invalid or duplicated", s.ID))
		}
		shieldIDs[s.ID] = true
	}
	spellIDs := make(map[int]bool, len(d.Spells))
	for _, s := range d.Spells {
		if s.ID <= 0 || spellIDs[s.ID] {
			errs = append(errs, fmt.Sprintf("spell id %d invalid or duplicated", s.ID))
		}
		spellIDs[s.ID] = true
		if len(s.Schools) == 0 {
			errs = append(errs, fmt.Sprintf("spell %d has no schools", s.ID))
		}
	}

	classes := make(map[int]*Class, len(d.Classes))
	for _, c := range d.Classes {
		if c.ID <= 0 || classes[c.ID] != nil {
			errs = append(errs, fmt.Sprintf("class id %d invalid or duplicated", c.ID))
		}
		classes[c.ID] = c
	}
	for _, id := range BaseClassIDs {
		if c, ok := classes[id]; !ok || c.IsSubclass() {
			errs = append(errs, fmt.Sprintf("base class %d missing or not its own base", id))
		}
	}
	for _, c := range d.Classes {
		errs = append(errs, validateClass(c, classes, alignments, armourIDs, shieldIDs)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDataset, strings.Join(errs, "; "))
	}
	return nil
}

func (d *Dataset) validateAbilities() []string {
	var errs []string
	for _, a := range abilityOrder {
		rows := d.Abilities[a]
		if len(rows) != MaxScore-MinScore+1 {
			errs = append(errs, fmt.Sprintf("ability %s has %d rows, want %d", a, len(rows), MaxScore-MinScore+1))
			continue
		}
		for i, row := range rows {
			if row.Score != MinScore+i {
				errs = append(errs, fmt.Sprintf("ability %s row %d has score %d, want %d", a, i, row.Score, MinScore+i))
			}
		}
	}
	for a := range d.Abilities {
		if !a.Valid() {
			errs = append(errs, fmt.Sprintf("unknown ability table %q", a))
		}
	}
	return errs
}

func validateClass(c *Class, classes map[int]*Class, alignments map[string]bool, armourIDs, shieldIDs map[int]bool) []string {
	var errs []string
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf("class %d: ", c.ID)+fmt.Sprintf(format, args...))
	}

	if c.IsSubclass() {
		base, ok := classes[c.BaseClassID]
		if !ok || !slices.Contains(BaseClassIDs, c.BaseClassID) || base.IsSubclass() {
			bad("base class %d is not a base class", c.BaseClassID)
		}
	} else if !slices.Contains(BaseClassIDs, c.ID) {
		bad("is its own base but is not one of the base classes %v", BaseClassIDs)
	}
	if len(c.PrimeRequisites) == 0 {
		bad("no prime requisites")
	}
	for _, a := range c.PrimeRequisites {
		if !a.Valid() {
			bad("unknown prime requisite %q", a)
		}
	}
	for a, v := range c.Minimums {
		if !a.Valid() {
			bad("minimum on unknown ability %q", a)
		}
		if !ValidScore(v) {
			bad("minimum %s %d not in [%d,%d]", a, v, MinScore, MaxScore)
		}
	}
	if len(c.Alignments) == 0 {
		bad("no permitted alignments")
	}
	for _, al := range c.Alignments {
		if !alignments[al] {
			bad("unknown alignment %q", al)
		}
	}
	seen := make(map[SaveCategory]bool)
	for _, s := range c.SaveBonuses {
		if !slices.Contains(SaveCategories(), s) || seen[s] {
			bad("save bonus %q unknown or duplicated", s)
		}
		seen[s] = true
	}
	if !armourIDs[c.StartingArmourID] {
		bad("starting armour %d not found", c.StartingArmourID)
	}
	if c.StartingShieldID != 0 && !shieldIDs[c.StartingShieldID] {
		bad("starting shield %d not found", c.StartingShieldID)
	}
	if !slices.Contains([]int{4, 6, 8, 10, 12}, c.HitDie) {
		bad("hit die d%d not in {4,6,8,10,12}", c.HitDie)
	}

	if len(c.Progression) != MaxLevel {
		bad("progression has %d levels, want %d", len(c.Progression), MaxLevel)
	}
	prevXP := -1
	for _, row := range c.Progression {
		if row.XP < prevXP {
			bad("xp threshold decreases at level %d", row.Level)
		}
		prevXP = row.XP
		for name, v := range map[string]int{"fa": row.FA, "ca": row.CA, "ta": row.TA} {
			if v < 0 || v > MaxAbilityTier {
				bad("level %d %s %d not in [0,%d]", row.Level, name, v, MaxAbilityTier)
			}
		}
		if row.SV < MinSaveTarget || row.SV > MaxSaveTarget {
			bad("level %d sv %d not in [%d,%d]", row.Level, row.SV, MinSaveTarget, MaxSaveTarget)
		}
		expr, err := dice.Parse(row.HitDice)
		if err != nil {
			bad("level %d hit dice: %v", row.Level, err)
			continue
		}
		wantBonus := 0
		if row.Level > MaxHitDiceCount {
			wantBonus = c.HitPointBonus * (row.Level - MaxHitDiceCount)
		}
		if expr.Count != min(row.Level, MaxHitDiceCount) || expr.Sides != c.HitDie ||
			expr.Modifier != wantBonus || expr.KeepHighest != 0 {
			bad("level %d hit dice %q inconsistent with d%d+%d per level", row.Level, row.HitDice, c.HitDie, c.HitPointBonus)
		}
	}
	if len(c.Progression) > 0 && c.Progression[0].XP != 0 {
		bad("level 1 xp threshold must be 0")
	}

	for skill, values := range c.ThiefSkills {
		if !isThiefSkill(skill) {
			bad("unknown thief skill %q", skill)
		}
		if len(values) != MaxLevel {
			bad("thief skill %s has %d levels, want %d", skill, len(values), MaxLevel)
		}
	}
	return errs
}
