package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/hyperborea/internal/config"
	"github.com/cory-johannsen/hyperborea/internal/game/character"
	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
	"github.com/cory-johannsen/hyperborea/internal/reference"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSelectLoader_Embedded(t *testing.T) {
	loader, release, err := selectLoader(context.Background(), config.Config{
		Dataset: config.DatasetConfig{Source: config.SourceEmbedded},
	})
	require.NoError(t, err)
	defer release()

	d, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.NoError(t, d.Validate())
}

func TestSelectLoader_DirectoryMissingTables(t *testing.T) {
	loader, release, err := selectLoader(context.Background(), config.Config{
		Dataset: config.DatasetConfig{Source: config.SourceDirectory, Dir: t.TempDir()},
	})
	require.NoError(t, err)
	defer release()

	_, err = loader.Load(context.Background())
	assert.Error(t, err)
}

func TestSelectLoader_Unknown(t *testing.T) {
	_, _, err := selectLoader(context.Background(), config.Config{
		Dataset: config.DatasetConfig{Source: "redis"},
	})
	assert.Error(t, err)
}

func TestVerify_Embedded(t *testing.T) {
	out, err := execute(t, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "dataset source: embedded")
	assert.Contains(t, out, "classes:    33")
}

func TestGenerate_SeededYAML(t *testing.T) {
	out, err := execute(t, "generate", "--seed", "99", "--count", "3", "--level", "4", "--class", "4")
	require.NoError(t, err)

	dec := yaml.NewDecoder(bytes.NewBufferString(out))
	var sheets []character.Sheet
	for {
		var s character.Sheet
		if err := dec.Decode(&s); err != nil {
			require.True(t, errors.Is(err, io.EOF), "decode: %v", err)
			break
		}
		sheets = append(sheets, s)
	}
	require.Len(t, sheets, 3)
	for _, s := range sheets {
		assert.Equal(t, 4, s.Level)
		assert.Equal(t, "4d6", s.HitDice)
		assert.Len(t, s.ThiefSkills, 9)
		assert.Equal(t, 19, s.AC+s.AAC)
	}
}

func TestGenerate_InvalidLevel(t *testing.T) {
	_, err := execute(t, "generate", "--level", "13", "--class", "0", "--count", "1", "--seed", "0")
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange)
}

func TestRoll_Seeded(t *testing.T) {
	first, err := execute(t, "roll", "--seed", "7", "4d6kh3", "9d10+3")
	require.NoError(t, err)
	again, err := execute(t, "roll", "--seed", "7", "4d6kh3", "9d10+3")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	lines := strings.Split(strings.TrimSpace(first), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "4d6kh3 "))
	assert.Contains(t, lines[0], "drop")
	assert.True(t, strings.HasPrefix(lines[1], "9d10+3 "))
}

func TestRoll_InvalidExpression(t *testing.T) {
	_, err := execute(t, "roll", "--seed", "1", "d")
	assert.Error(t, err)
}

func TestModifiers(t *testing.T) {
	out, err := execute(t, "modifiers", "dx", "18")
	require.NoError(t, err)
	assert.Contains(t, out, "# Dexterity 18")

	var mods ruleset.AbilityModifiers
	require.NoError(t, yaml.Unmarshal([]byte(out), &mods))
	assert.Equal(t, 18, mods.Score)
	assert.Equal(t, 2, mods.SkillAdj)
}

func TestModifiers_InvalidInput(t *testing.T) {
	_, err := execute(t, "modifiers", "xx", "10")
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange)
	_, err = execute(t, "modifiers", "st", "19")
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange)
	_, err = execute(t, "modifiers", "st", "ten")
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange)
}

type storeSpells struct {
	store    *reference.Store
	override map[int]string
}

func (s storeSpells) GetSpell(_ context.Context, id int) (ruleset.Spell, error) {
	sp, err := s.store.Spell(id)
	if level, ok := s.override[id]; ok {
		sp.Level = level
	}
	return sp, err
}

func TestCheckSpellLevels(t *testing.T) {
	store, err := reference.Open(context.Background(), reference.NewEmbeddedLoader(), zap.NewNop())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, checkSpellLevels(context.Background(), &out, store, storeSpells{store: store}))
	assert.Contains(t, out.String(), "mismatches: 0")

	out.Reset()
	err = checkSpellLevels(context.Background(), &out, store, storeSpells{store: store, override: map[int]string{2: "run 1, clr 1, pri 1"}})
	assert.Error(t, err)
	assert.Contains(t, out.String(), "spell 2")
	assert.Contains(t, out.String(), "mismatches: 1")
}
