package ruleset

import "io/fs"

// Armour is an immutable armour row. AC is the descending armour class it grants.
type Armour struct {
	ID          int    `yaml:"id"`
	Type        string `yaml:"armour_type"`
	AC          int    `yaml:"ac"`
	DR          int    `yaml:"dr"`
	WeightClass string `yaml:"weight_class"`
	MV          int    `yaml:"mv"`
	Cost        int    `yaml:"cost"`
	Weight      int    `yaml:"weight"`
	Description string `yaml:"description"`
}

// Shield is an immutable shield row. DefMod is added to armour class.
type Shield struct {
	ID     int    `yaml:"id"`
	Type   string `yaml:"shield_type"`
	DefMod int    `yaml:"def_mod"`
	Cost   int    `yaml:"cost"`
	Weight int    `yaml:"weight"`
}

// LoadArmour reads the armour table from name in fsys.
//
// Precondition: fsys must be non-nil.
// Postcondition: Returns all parsed armour rows in file order or a non-nil error.
func LoadArmour(fsys fs.FS, name string) ([]*Armour, error) {
	var doc struct {
		Armour []*Armour `yaml:"armour"`
	}
	if err := decodeFile(fsys, name, &doc); err != nil {
		return nil, err
	}
	return doc.Armour, nil
}

// LoadShields reads the shields table from name in fsys.
//
// Precondition: fsys must be non-nil.
// Postcondition: Returns all parsed shields in file order or a non-nil error.
func LoadShields(fsys fs.FS, name string) ([]*Shield, error) {
	var doc struct {
		Shields []*Shield `yaml:"shields"`
	}
	if err := decodeFile(fsys, name, &doc); err != nil {
		return nil, err
	}
	return doc.Shields, nil
}
