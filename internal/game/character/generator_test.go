package character_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hyperborea/internal/game/character"
	"github.com/cory-johannsen/hyperborea/internal/game/chargen"
	"github.com/cory-johannsen/hyperborea/internal/game/dice"
	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
	"github.com/cory-johannsen/hyperborea/internal/reference"
)

func newGenerator(t testing.TB, seed uint64, logger *zap.Logger) *character.Generator {
	t.Helper()
	store, err := reference.Open(context.Background(), reference.NewEmbeddedLoader(), zap.NewNop())
	require.NoError(t, err)
	engine, err := chargen.NewEngine(store, dice.NewRoller(dice.NewSeededSource(seed), zap.NewNop()), chargen.MethodDropLowest)
	require.NoError(t, err)
	return character.NewGenerator(engine, logger)
}

func TestGenerate_FixedClass(t *testing.T) {
	g := newGenerator(t, 42, zap.NewNop())
	c, err := g.Generate(character.Options{Level: 5, ClassID: 4})
	require.NoError(t, err)

	_, err = uuid.Parse(c.ID)
	assert.NoError(t, err)
	assert.Equal(t, 4, c.Class.ID)
	assert.Equal(t, 5, c.Level)
	assert.Equal(t, c.Class.Progression[4].XP, c.Experience)
	assert.Equal(t, "5d6", c.HitDice)
	assert.Len(t, c.ThiefSkills, 9)
	assert.Equal(t, 19, c.AC+c.AAC)
	assert.Contains(t, c.Class.Alignments, c.Alignment.ShortName)
	require.NotNil(t, c.Armour)
	assert.Nil(t, c.Shield)
}

func TestGenerate_Defaults(t *testing.T) {
	g := newGenerator(t, 7, zap.NewNop())
	c, err := g.Generate(character.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 0, c.Experience)
	assert.False(t, c.Class.IsSubclass(), "subclasses are off unless requested")
}

func TestGenerate_Invalid(t *testing.T) {
	g := newGenerator(t, 1, zap.NewNop())
	_, err := g.Generate(character.Options{Level: 13})
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange)
	_, err = g.Generate(character.Options{ClassID: 40})
	assert.ErrorIs(t, err, ruleset.ErrInvalidID)
	_, err = g.Generate(character.Options{Method: 9})
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange)
}

func TestGenerate_FixedClassAlwaysQualifies(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	g := newGenerator(t, 2024, zap.New(core))
	for i := 0; i < 50; i++ {
		c, err := g.Generate(character.Options{ClassID: 9, Method: chargen.MethodInOrder})
		require.NoError(t, err)
		scores := c.Abilities.Scores()
		require.True(t, c.Class.Qualifies(scores), "paladin rolled %v", scores)
		assert.GreaterOrEqual(t, scores[ruleset.Strength], 15)
		assert.GreaterOrEqual(t, scores[ruleset.Charisma], 15)
	}
	assert.NotEmpty(t, logs.FilterMessage("falling back to class-first abilities").All(),
		"in-order 3d6 rarely reaches st 15 and ch 15 within the reroll budget")
}

func TestGenerate_LogsCharacter(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	g := newGenerator(t, 3, zap.New(core))
	c, err := g.Generate(character.Options{ClassID: 1})
	require.NoError(t, err)
	entries := logs.FilterMessage("character generated").All()
	require.Len(t, entries, 1)
	assert.Equal(t, c.ID, entries[0].ContextMap()["id"])
	assert.Equal(t, "Fighter", entries[0].ContextMap()["class"])
}

func TestGenerate_Property(t *testing.T) {
	g := newGenerator(t, 99, zap.NewNop())
	rapid.Check(t, func(rt *rapid.T) {
		opts := character.Options{
			Level:      rapid.IntRange(1, 12).Draw(rt, "level"),
			ClassID:    rapid.IntRange(0, 33).Draw(rt, "class"),
			Method:     chargen.Method(rapid.IntRange(0, 6).Draw(rt, "method")),
			Subclasses: rapid.Bool().Draw(rt, "subclasses"),
		}
		c, err := g.Generate(opts)
		require.NoError(rt, err)

		for _, a := range ruleset.Abilities() {
			assert.GreaterOrEqual(rt, c.Score(a), 3)
			assert.LessOrEqual(rt, c.Score(a), 18)
		}
		assert.True(rt, c.Class.Qualifies(c.Abilities.Scores()))
		if opts.ClassID != 0 {
			assert.Equal(rt, opts.ClassID, c.Class.ID)
		} else if !opts.Subclasses {
			assert.False(rt, c.Class.IsSubclass())
		}
		assert.GreaterOrEqual(rt, c.HitPoints, c.Level)
		assert.GreaterOrEqual(rt, c.AC, 1)
		assert.LessOrEqual(rt, c.AC, 11)
		assert.Len(rt, c.SaveBonuses, 5)
		assert.Contains(rt, c.Class.Alignments, c.Alignment.ShortName)
	})
}
