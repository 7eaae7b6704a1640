// Package chargen implements the Hyperborea character generation rules:
// ability score methods, class qualification, level progression, derived
// statistics and weighted attribute draws.
//
// Every operation validates its arguments before touching the dataset or the
// random source, and returns ruleset.ErrInvalidID or ruleset.ErrInvalidRange
// on bad input.
package chargen

import (
	"fmt"

	"github.com/cory-johannsen/hyperborea/internal/game/dice"
	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
	"github.com/cory-johannsen/hyperborea/internal/reference"
)

// Engine evaluates the rules against an immutable reference Store.
//
// Engine holds no mutable state; it is safe for concurrent use provided the
// Roller's Source is.
type Engine struct {
	store  *reference.Store
	roller *dice.Roller
	method Method
}

// NewEngine builds an Engine. method is the default used by Attr.
//
// Precondition: store and roller must be non-nil.
// Postcondition: Returns ErrInvalidRange when method is not 1-6.
func NewEngine(store *reference.Store, roller *dice.Roller, method Method) (*Engine, error) {
	if store == nil || roller == nil {
		return nil, fmt.Errorf("chargen: store and roller must be non-nil")
	}
	if err := method.Validate(); err != nil {
		return nil, err
	}
	return &Engine{store: store, roller: roller, method: method}, nil
}

// Store returns the reference data the Engine reads.
func (e *Engine) Store() *reference.Store {
	return e.store
}

// Roller returns the logged roller the Engine draws from.
func (e *Engine) Roller() *dice.Roller {
	return e.roller
}

// DefaultMethod returns the method used by Attr.
func (e *Engine) DefaultMethod() Method {
	return e.method
}

// Spell returns the spell with id and its school level summary.
//
// Postcondition: Returns ErrInvalidID for an id outside the spell allow-list.
func (e *Engine) Spell(id int) (ruleset.Spell, error) {
	return e.store.Spell(id)
}

func checkLevel(level int) error {
	if level < ruleset.MinLevel || level > ruleset.MaxLevel {
		return fmt.Errorf("%w: level %d not in [%d,%d]", ruleset.ErrInvalidRange, level, ruleset.MinLevel, ruleset.MaxLevel)
	}
	return nil
}

func checkScore(a ruleset.Ability, score int) error {
	if !ruleset.ValidScore(score) {
		return fmt.Errorf("%w: %s score %d not in [%d,%d]", ruleset.ErrInvalidRange, a, score, ruleset.MinScore, ruleset.MaxScore)
	}
	return nil
}
