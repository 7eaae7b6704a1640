package ruleset

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// Table file names inside a dataset filesystem.
const (
	AbilitiesFile  = "abilities.yaml"
	AlignmentsFile = "alignments.yaml"
	ArmourFile     = "armour.yaml"
	ClassesFile    = "classes.yaml"
	GendersFile    = "genders.yaml"
	RacesFile      = "races.yaml"
	ShieldsFile    = "shields.yaml"
	SpellsFile     = "spells.yaml"
)

// decodeFile reads name from fsys and unmarshals it into out.
// Unknown fields are rejected so that table typos fail loudly.
func decodeFile(fsys fs.FS, name string, out any) error {
	f, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}
