package chargen_test

import (
	"context"
	"regexp"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hyperborea/internal/game/chargen"
	"github.com/cory-johannsen/hyperborea/internal/game/dice"
	"github.com/cory-johannsen/hyperborea/internal/game/ruleset"
	"github.com/cory-johannsen/hyperborea/internal/reference"
)

var (
	storeOnce sync.Once
	store     *reference.Store
	storeErr  error
)

func testStore(t testing.TB) *reference.Store {
	t.Helper()
	storeOnce.Do(func() {
		store, storeErr = reference.Open(context.Background(), reference.NewEmbeddedLoader(), zap.NewNop())
	})
	require.NoError(t, storeErr)
	return store
}

func newEngine(t testing.TB, src dice.Source) *chargen.Engine {
	t.Helper()
	e, err := chargen.NewEngine(testStore(t), dice.NewRoller(src, zap.NewNop()), chargen.MethodDropLowest)
	require.NoError(t, err)
	return e
}

var thiefSkillClasses = []int{4, 5, 6, 8, 10, 18, 22, 23, 24, 25, 26, 31, 32, 33}

func allClassIDs() []int {
	ids := make([]int, 0, reference.MaxClassID)
	for id := reference.MinClassID; id <= reference.MaxClassID; id++ {
		ids = append(ids, id)
	}
	return ids
}

func TestNewEngine_RejectsBadMethod(t *testing.T) {
	_, err := chargen.NewEngine(testStore(t), dice.NewRoller(dice.NewSeededSource(1), zap.NewNop()), 7)
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange)
}

func TestClassList(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	assert.Len(t, e.ClassList(true), 33)
	base := e.ClassList(false)
	require.Len(t, base, 4)
	for i, c := range base {
		assert.Equal(t, i+1, c.ID)
	}
}

func TestQualifyingClasses_BaseOnlySubset(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	rapid.Check(t, func(rt *rapid.T) {
		scores := map[ruleset.Ability]int{}
		for _, a := range ruleset.Abilities() {
			scores[a] = rapid.IntRange(3, 18).Draw(rt, string(a))
		}
		base, err := e.QualifyingClasses(scores, false)
		require.NoError(rt, err)
		for _, id := range base {
			assert.Contains(rt, []int{1, 2, 3, 4}, id)
		}
		all, err := e.QualifyingClasses(scores, true)
		require.NoError(rt, err)
		assert.True(rt, slices.IsSorted(all))
		for _, id := range base {
			assert.Contains(rt, all, id)
		}
		for _, id := range all {
			c, err := e.Store().Class(id)
			require.NoError(rt, err)
			for a, threshold := range c.Minimums {
				assert.GreaterOrEqual(rt, scores[a], threshold)
			}
		}
	})
}

func TestQualifyingClasses_AllEighteens(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	scores := map[ruleset.Ability]int{"st": 18, "dx": 18, "cn": 18, "in": 18, "ws": 18, "ch": 18}
	ids, err := e.QualifyingClasses(scores, true)
	require.NoError(t, err)
	assert.Equal(t, allClassIDs(), ids)
}

func TestQualifyingClasses_InvalidScores(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	_, err := e.QualifyingClasses(map[ruleset.Ability]int{"st": 10}, true)
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange)
	_, err = e.QualifyingClasses(map[ruleset.Ability]int{"st": 19, "dx": 10, "cn": 10, "in": 10, "ws": 10, "ch": 10}, true)
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange)
}

func TestClassLevelData_Ranges(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	for _, id := range allClassIDs() {
		for level := 1; level <= 12; level++ {
			d, err := e.ClassLevelData(id, level)
			require.NoError(t, err)
			for _, v := range []int{d.FA, d.CA, d.TA} {
				assert.GreaterOrEqual(t, v, 0)
				assert.LessOrEqual(t, v, 12)
			}
			assert.GreaterOrEqual(t, d.SV, 11)
			assert.LessOrEqual(t, d.SV, 16)
		}
	}
}

func TestClassLevelData_Invalid(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	_, err := e.ClassLevelData(0, 1)
	assert.ErrorIs(t, err, ruleset.ErrInvalidID)
	_, err = e.ClassLevelData(1, 0)
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange)
	_, err = e.ClassLevelData(1, 13)
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange)
}

func TestLevel(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	cases := []struct{ class, xp, want int }{
		{1, 0, 1},
		{1, 1999, 1},
		{1, 2000, 2},
		{1, 10_000_000, 12},
		{4, 1250, 2},
	}
	for _, tc := range cases {
		got, err := e.Level(tc.class, tc.xp)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "class %d xp %d", tc.class, tc.xp)
	}
	_, err := e.Level(1, -1)
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange)
	_, err = e.Level(34, 100)
	assert.ErrorIs(t, err, ruleset.ErrInvalidID)
}

func TestSaveBonuses(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	for _, id := range allClassIDs() {
		saves, err := e.SaveBonuses(id)
		require.NoError(t, err)
		require.Len(t, saves, 5)
		sum := 0
		for _, v := range saves {
			assert.Contains(t, []int{0, 2}, v)
			sum += v
		}
		if slices.Contains(chargen.AllSavesClassIDs, id) {
			assert.Equal(t, 10, sum, "class %d", id)
		} else {
			assert.Equal(t, 4, sum, "class %d", id)
		}
	}
}

var hitDicePattern = regexp.MustCompile(`^([1-9])d(4|6|8|10|12)(\+\d+)?$`)

func TestHitDice(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	for _, id := range allClassIDs() {
		for level := 1; level <= 12; level++ {
			hd, err := e.HitDice(id, level)
			require.NoError(t, err)
			m := hitDicePattern.FindStringSubmatch(hd)
			require.NotNil(t, m, "class %d level %d: %q", id, level, hd)
			assert.Equal(t, byte('0'+min(level, 9)), m[1][0])
			assert.Equal(t, level > 9, m[3] != "")

			again, err := e.HitDice(id, level)
			require.NoError(t, err)
			assert.Equal(t, hd, again)
		}
	}
	hd, err := e.HitDice(1, 12)
	require.NoError(t, err)
	assert.Equal(t, "9d10+9", hd)
}

func TestRollHitPoints_Bounds(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(99))
	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.IntRange(1, 33).Draw(rt, "class")
		level := rapid.IntRange(1, 12).Draw(rt, "level")
		cn := rapid.IntRange(3, 18).Draw(rt, "cn")
		mods, err := e.AttrMod(ruleset.Constitution, cn)
		require.NoError(rt, err)

		hp, err := e.RollHitPoints(id, level, mods.HPAdj)
		require.NoError(rt, err)
		maxHP, err := e.MaxHitPoints(id, level, mods.HPAdj)
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, hp, level)
		assert.LessOrEqual(rt, hp, maxHP)
	})
}

func TestRollHitPoints_FloorAndCeiling(t *testing.T) {
	// Every die shows 1.
	low := newEngine(t, dice.NewFixedSource(0))
	hp, err := low.RollHitPoints(2, 3, -1)
	require.NoError(t, err)
	assert.Equal(t, 3, hp, "one hit point per level minimum")

	// Every d10 shows 10.
	high := newEngine(t, dice.NewFixedSource(9))
	hp, err = high.RollHitPoints(1, 12, 3)
	require.NoError(t, err)
	assert.Equal(t, 90+9+3, hp)
	maxHP, err := high.MaxHitPoints(1, 12, 3)
	require.NoError(t, err)
	assert.Equal(t, hp, maxHP)

	_, err = high.RollHitPoints(1, 13, 0)
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange)
}

func TestACToAAC(t *testing.T) {
	for ac := -10; ac < 20; ac++ {
		assert.Equal(t, 19, ac+chargen.ACToAAC(ac))
	}
}

func TestCalculateAC(t *testing.T) {
	assert.Equal(t, 3, chargen.CalculateAC(5, -1, -1))
	assert.Equal(t, 11, chargen.CalculateAC(9, 0, 2))
}

func TestStartingEquipment(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	fighterArmour, err := e.StartingArmour(1)
	require.NoError(t, err)
	assert.Equal(t, "Chain Mail", fighterArmour.Type)
	shield, err := e.StartingShield(1)
	require.NoError(t, err)
	require.NotNil(t, shield)

	shield, err = e.StartingShield(2)
	require.NoError(t, err)
	assert.Nil(t, shield, "magicians start without a shield")

	_, err = e.StartingArmour(0)
	assert.ErrorIs(t, err, ruleset.ErrInvalidID)
}

func TestStartingAC_InRange(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	for _, id := range allClassIDs() {
		armour, err := e.StartingArmour(id)
		require.NoError(t, err)
		shield, err := e.StartingShield(id)
		require.NoError(t, err)
		shieldMod := 0
		if shield != nil {
			shieldMod = shield.DefMod
		}
		for dx := 3; dx <= 18; dx++ {
			mods, err := e.AttrMod(ruleset.Dexterity, dx)
			require.NoError(t, err)
			ac := chargen.CalculateAC(armour.AC, shieldMod, mods.DefAdj)
			assert.GreaterOrEqual(t, ac, 1, "class %d dx %d", id, dx)
			assert.LessOrEqual(t, ac, 11, "class %d dx %d", id, dx)
		}
	}
}

func intp(v int) *int { return &v }

func skillRolls(skills []chargen.ThiefSkill) map[string]*int {
	out := make(map[string]*int, len(skills))
	for _, s := range skills {
		out[s.Skill] = s.Roll
	}
	return out
}

func TestThiefSkills_ThiefLevel1(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	skills, err := e.ThiefSkills(4, 1, 10, 10, 10)
	require.NoError(t, err)
	require.Len(t, skills, 9)
	order := []string{"climb", "decipher_script", "discern_noise", "hide", "manipulate_traps",
		"move_silently", "open_locks", "pick_pockets", "read_scrolls"}
	for i, s := range skills {
		assert.Equal(t, order[i], s.Skill)
	}
	assert.Equal(t, map[string]*int{
		"climb": intp(8), "decipher_script": intp(0), "discern_noise": intp(4), "hide": intp(5),
		"manipulate_traps": intp(3), "move_silently": intp(5), "open_locks": intp(3),
		"pick_pockets": intp(4), "read_scrolls": nil,
	}, skillRolls(skills))
}

func TestThiefSkills_ThiefLevel12(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	skills, err := e.ThiefSkills(4, 12, 16, 16, 16)
	require.NoError(t, err)
	assert.Equal(t, map[string]*int{
		"climb": intp(11), "decipher_script": intp(6), "discern_noise": intp(10), "hide": intp(11),
		"manipulate_traps": intp(9), "move_silently": intp(11), "open_locks": intp(9),
		"pick_pockets": intp(10), "read_scrolls": intp(6),
	}, skillRolls(skills))
}

func TestThiefSkills_GoverningStats(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	skills, err := e.ThiefSkills(4, 1, 10, 10, 10)
	require.NoError(t, err)
	stats := make([]ruleset.Ability, len(skills))
	for i, s := range skills {
		stats[i] = s.Stat
	}
	assert.Equal(t, []ruleset.Ability{"dx", "in", "ws", "dx", "dx", "dx", "dx", "dx", "in"}, stats)
}

func TestThiefSkills_NonThiefClasses(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.IntRange(1, 33).Draw(rt, "class")
		level := rapid.IntRange(1, 12).Draw(rt, "level")
		dx := rapid.IntRange(3, 18).Draw(rt, "dx")
		in := rapid.IntRange(3, 18).Draw(rt, "in")
		ws := rapid.IntRange(3, 18).Draw(rt, "ws")
		skills, err := e.ThiefSkills(id, level, dx, in, ws)
		require.NoError(rt, err)
		if slices.Contains(thiefSkillClasses, id) {
			assert.Len(rt, skills, 9)
		} else {
			assert.Nil(rt, skills)
		}
	})
}

func TestThiefSkills_Invalid(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	_, err := e.ThiefSkills(99, 1, 10, 10, 10)
	assert.ErrorIs(t, err, ruleset.ErrInvalidID)
	_, err = e.ThiefSkills(4, 0, 10, 10, 10)
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange)
	_, err = e.ThiefSkills(4, 1, 10, 2, 10)
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange)
	_, err = e.ThiefSkills(1, 1, 10, 10, 19)
	assert.ErrorIs(t, err, ruleset.ErrInvalidRange, "scores are validated even for non-thieves")
}

func TestAlignment_RespectsClassAllowList(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(7))
	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.IntRange(1, 33).Draw(rt, "class")
		a, err := e.Alignment(id)
		require.NoError(rt, err)
		c, err := e.Store().Class(id)
		require.NoError(rt, err)
		assert.Contains(rt, c.Alignments, a.ShortName)
	})
	_, err := e.Alignment(0)
	assert.ErrorIs(t, err, ruleset.ErrInvalidID)
}

func TestRaceAndGender(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(3))
	for i := 0; i < 200; i++ {
		id, err := e.RaceID()
		require.NoError(t, err)
		_, err = e.Store().Race(id)
		assert.NoError(t, err)

		g, err := e.Gender()
		require.NoError(t, err)
		assert.Contains(t, []string{"Male", "Female"}, g.Name)
	}
}

func TestSpell(t *testing.T) {
	e := newEngine(t, dice.NewSeededSource(1))
	sp, err := e.Spell(2)
	require.NoError(t, err)
	assert.Equal(t, "clr 1, pri 1", sp.Level)
	_, err = e.Spell(-3)
	assert.ErrorIs(t, err, ruleset.ErrInvalidID)
}
