package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/hyperborea/internal/game/character"
)

func TestSheet_Thief(t *testing.T) {
	g := newGenerator(t, 11, zap.NewNop())
	c, err := g.Generate(character.Options{Level: 1, ClassID: 4})
	require.NoError(t, err)

	s := c.Sheet()
	assert.Equal(t, c.ID, s.ID)
	assert.Equal(t, c.Class.Name, s.Class)
	assert.Len(t, s.Abilities, 6)
	assert.Equal(t, c.Score("st"), s.Abilities["st"])
	assert.Len(t, s.ThiefSkills, 9)
	assert.Equal(t, "-", s.ThiefSkills["read_scrolls"], "read scrolls is not available at level 1")
	assert.Equal(t, c.AC, s.AC)
	assert.Empty(t, s.Shield)

	out, err := yaml.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), "class: "+c.Class.Name)
}

func TestSheet_NoThiefSkills(t *testing.T) {
	g := newGenerator(t, 12, zap.NewNop())
	c, err := g.Generate(character.Options{Level: 3, ClassID: 1})
	require.NoError(t, err)

	s := c.Sheet()
	assert.Nil(t, s.ThiefSkills)
	assert.NotEmpty(t, s.Armour)
	assert.Len(t, s.SaveBonuses, 5)
}
