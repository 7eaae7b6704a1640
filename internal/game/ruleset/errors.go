package ruleset

import "errors"

// ErrInvalidID is returned when an id is not in the valid-id set of its table.
var ErrInvalidID = errors.New("invalid id")

// ErrInvalidRange is returned when a level, score, method or ability
// abbreviation falls outside its permitted range.
var ErrInvalidRange = errors.New("value out of range")

// ErrInvalidDataset is returned by Dataset.Validate when reference tables are inconsistent.
var ErrInvalidDataset = errors.New("invalid dataset")
