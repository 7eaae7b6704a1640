package ruleset

import "io/fs"

// Race is an immutable race definition. Weight is the relative frequency of
// the race when drawn at random.
type Race struct {
	ID          int             `yaml:"id"`
	Name        string          `yaml:"name"`
	Adjustments map[Ability]int `yaml:"adjustments"`
	Weight      int             `yaml:"weight"`
}

// Gender is a selectable gender with its draw weight.
type Gender struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	Weight int    `yaml:"weight"`
}

// Alignment is one of the five alignments with its draw weight.
type Alignment struct {
	ID        int    `yaml:"id"`
	ShortName string `yaml:"short_name"`
	Name      string `yaml:"name"`
	Weight    int    `yaml:"weight"`
}

// LoadRaces reads the races table from name in fsys.
//
// Precondition: fsys must be non-nil.
// Postcondition: Returns all parsed races in file order or a non-nil error.
func LoadRaces(fsys fs.FS, name string) ([]*Race, error) {
	var doc struct {
		Races []*Race `yaml:"races"`
	}
	if err := decodeFile(fsys, name, &doc); err != nil {
		return nil, err
	}
	return doc.Races, nil
}

// LoadGenders reads the genders table from name in fsys.
//
// Precondition: fsys must be non-nil.
// Postcondition: Returns all parsed genders in file order or a non-nil error.
func LoadGenders(fsys fs.FS, name string) ([]*Gender, error) {
	var doc struct {
		Genders []*Gender `yaml:"genders"`
	}
	if err := decodeFile(fsys, name, &doc); err != nil {
		return nil, err
	}
	return doc.Genders, nil
}

// LoadAlignments reads the alignments table from name in fsys.
//
// Precondition: fsys must be non-nil.
// Postcondition: Returns all parsed alignments in file order or a non-nil error.
func LoadAlignments(fsys fs.FS, name string) ([]*Alignment, error) {
	var doc struct {
		Alignments []*Alignment `yaml:"alignments"`
	}
	if err := decodeFile(fsys, name, &doc); err != nil {
		return nil, err
	}
	return doc.Alignments, nil
}
