package character

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hyperborea/internal/game/chargen"
	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
)

// ErrNoQualifyingClass is returned when repeated ability rolls never qualify
// for any candidate class.
var ErrNoQualifyingClass = errors.New("no qualifying class")

// maxClassAttempts bounds rerolls while searching for a qualifying class.
const maxClassAttempts = 100

// Options controls a single Generate call. Zero values select defaults.
type Options struct {
	// Level is the character level (1-12); 0 means 1.
	Level int
	// ClassID fixes the class; 0 draws one among the qualifying classes.
	ClassID int
	// Method is the ability score method; 0 uses the engine default.
	Method chargen.Method
	// Subclasses allows subclasses when ClassID is 0.
	Subclasses bool
}

// Generator assembles complete characters from an Engine.
type Generator struct {
	engine *chargen.Engine
	logger *zap.Logger
}

// NewGenerator returns a Generator backed by engine.
//
// Precondition: engine and logger must be non-nil.
func NewGenerator(engine *chargen.Engine, logger *zap.Logger) *Generator {
	return &Generator{engine: engine, logger: logger}
}

// Generate rolls a complete character.
//
// Postcondition: Returns a Character with every derived field set, or a
// non-nil error. Invalid options fail before any dice are rolled.
func (g *Generator) Generate(opts Options) (*Character, error) {
	level := opts.Level
	if level == 0 {
		level = ruleset.MinLevel
	}
	if level < ruleset.MinLevel || level > ruleset.MaxLevel {
		return nil, fmt.Errorf("%w: level %d not in [%d,%d]", ruleset.ErrInvalidRange, level, ruleset.MinLevel, ruleset.MaxLevel)
	}
	method := opts.Method
	if method == 0 {
		method = g.engine.DefaultMethod()
	}
	if err := method.Validate(); err != nil {
		return nil, err
	}
	store := g.engine.Store()
	if opts.ClassID != 0 {
		if _, err := store.Class(opts.ClassID); err != nil {
			return nil, err
		}
	} else if method == chargen.MethodClassFirst {
		method = chargen.MethodDropLowest
	}

	raceID, err := g.engine.RaceID()
	if err != nil {
		return nil, err
	}
	race, err := store.Race(raceID)
	if err != nil {
		return nil, err
	}
	gender, err := g.engine.Gender()
	if err != nil {
		return nil, err
	}

	abilities, class, err := g.rollClassAndAbilities(method, opts, race)
	if err != nil {
		return nil, err
	}

	c := &Character{
		ID:         uuid.New().String(),
		Race:       race,
		Gender:     gender,
		Class:      class,
		Level:      level,
		Experience: class.Progression[level-1].XP,
		Abilities:  abilities,
	}
	if err := g.derive(c); err != nil {
		return nil, err
	}

	g.logger.Info("character generated",
		zap.String("id", c.ID),
		zap.String("race", race.Name),
		zap.String("class", class.Name),
		zap.Int("level", level),
		zap.Int("hp", c.HitPoints),
		zap.Int("ac", c.AC),
	)
	return c, nil
}

// rollClassAndAbilities rolls abilities, applies racial adjustments and
// settles the class, rerolling until the class (or, when none is fixed, some
// candidate class) qualifies.
func (g *Generator) rollClassAndAbilities(method chargen.Method, opts Options, race ruleset.Race) (chargen.AbilityScores, *ruleset.Class, error) {
	store := g.engine.Store()
	if opts.ClassID != 0 {
		class, err := store.Class(opts.ClassID)
		if err != nil {
			return nil, nil, err
		}
		abilities, err := g.rollForClass(method, class, race)
		return abilities, class, err
	}

	for attempt := 0; attempt < maxClassAttempts; attempt++ {
		abilities, err := g.rollAdjusted(method, 0, race)
		if err != nil {
			return nil, nil, err
		}
		ids, err := g.engine.QualifyingClasses(abilities.Scores(), opts.Subclasses)
		if err != nil {
			return nil, nil, err
		}
		if len(ids) == 0 {
			continue
		}
		id, err := g.pickClass(ids)
		if err != nil {
			return nil, nil, err
		}
		class, err := store.Class(id)
		return abilities, class, err
	}
	return nil, nil, fmt.Errorf("%w after %d attempts", ErrNoQualifyingClass, maxClassAttempts)
}

// rollForClass rerolls with method until the scores meet every minimum of
// class. The final attempt uses the class-first method, which raises unmet
// minimums, so only racial penalties can still leave the class out of reach.
func (g *Generator) rollForClass(method chargen.Method, class *ruleset.Class, race ruleset.Race) (chargen.AbilityScores, error) {
	for attempt := 0; attempt < maxClassAttempts; attempt++ {
		if attempt == maxClassAttempts-1 && method != chargen.MethodClassFirst {
			g.logger.Debug("falling back to class-first abilities",
				zap.Int("class", class.ID),
				zap.Int("method", int(method)),
			)
			method = chargen.MethodClassFirst
		}
		abilities, err := g.rollAdjusted(method, class.ID, race)
		if err != nil {
			return nil, err
		}
		if class.Qualifies(abilities.Scores()) {
			return abilities, nil
		}
	}
	return nil, fmt.Errorf("%w: class %d after %d attempts", ErrNoQualifyingClass, class.ID, maxClassAttempts)
}

func (g *Generator) rollAdjusted(method chargen.Method, classID int, race ruleset.Race) (chargen.AbilityScores, error) {
	rolled, err := g.engine.RollStats(method, classID)
	if err != nil {
		return nil, err
	}
	return g.engine.Scores(adjust(rolled.Scores(), race.Adjustments))
}

// pickClass draws uniformly among ids, preferring subclasses when any qualify.
func (g *Generator) pickClass(ids []int) (int, error) {
	var sub []int
	for _, id := range ids {
		c, err := g.engine.Store().Class(id)
		if err != nil {
			return 0, err
		}
		if c.IsSubclass() {
			sub = append(sub, id)
		}
	}
	if len(sub) > 0 {
		ids = sub
	}
	weights := make([]int, len(ids))
	for i := range weights {
		weights[i] = 1
	}
	i, err := g.engine.Roller().Weighted("classes", weights)
	if err != nil {
		return 0, err
	}
	return ids[i], nil
}

func (g *Generator) derive(c *Character) error {
	e := g.engine
	id := c.Class.ID

	var err error
	if c.Alignment, err = e.Alignment(id); err != nil {
		return err
	}
	if c.LevelData, err = e.ClassLevelData(id, c.Level); err != nil {
		return err
	}
	if c.HitDice, err = e.HitDice(id, c.Level); err != nil {
		return err
	}
	if c.HitPoints, err = e.RollHitPoints(id, c.Level, c.Abilities[ruleset.Constitution].Mods.HPAdj); err != nil {
		return err
	}
	if c.SaveBonuses, err = e.SaveBonuses(id); err != nil {
		return err
	}

	armour, err := e.StartingArmour(id)
	if err != nil {
		return err
	}
	c.Armour = &armour
	if c.Shield, err = e.StartingShield(id); err != nil {
		return err
	}
	shieldMod := 0
	if c.Shield != nil {
		shieldMod = c.Shield.DefMod
	}
	c.AC = chargen.CalculateAC(armour.AC, shieldMod, c.Abilities[ruleset.Dexterity].Mods.DefAdj)
	c.AAC = chargen.ACToAAC(c.AC)

	c.ThiefSkills, err = e.ThiefSkills(id, c.Level,
		c.Score(ruleset.Dexterity), c.Score(ruleset.Intelligence), c.Score(ruleset.Wisdom))
	return err
}

// adjust applies racial adjustments, clamping each score to [3,18].
func adjust(scores map[ruleset.Ability]int, adjustments map[ruleset.Ability]int) map[ruleset.Ability]int {
	out := make(map[ruleset.Ability]int, len(scores))
	for a, v := range scores {
		out[a] = min(max(v+adjustments[a], ruleset.MinScore), ruleset.MaxScore)
	}
	return out
}
