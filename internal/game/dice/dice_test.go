package dice_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/cory-johannsen/hyperborea/internal/game/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"
)

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{
		Expression: "4d6kh3",
		Dice:       []int{6, 5, 3},
		Dropped:    []int{1},
		Modifier:   0,
	}
	assert.Equal(t, 14, r.Total(), "dropped dice must not count")
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())

	r = dice.RollResult{Expression: "4d6kh3", Dice: []int{6, 5, 3}, Dropped: []int{1}}
	assert.Equal(t, "4d6kh3 → [6 5 3] drop [1] +0 = 14", r.String())
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Dice: []int{4}}
	assert.Panics(t, func() { _ = r.String() })
}

// TestRollResult_Total_Property verifies Total() == sum(Dice) + Modifier.
func TestRollResult_Total_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ds := rapid.SliceOf(rapid.IntRange(1, 20)).Draw(rt, "dice")
		dropped := rapid.SliceOf(rapid.IntRange(1, 20)).Draw(rt, "dropped")
		modifier := rapid.IntRange(-100, 100).Draw(rt, "modifier")
		r := dice.RollResult{Expression: "Nd6+M", Dice: ds, Dropped: dropped, Modifier: modifier}

		expected := modifier
		for _, d := range ds {
			expected += d
		}
		assert.Equal(rt, expected, r.Total())
		assert.True(rt, strings.Contains(r.String(), fmt.Sprintf("= %d", expected)))
	})
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want dice.Expression
	}{
		{"d20", dice.Expression{Raw: "d20", Count: 1, Sides: 20}},
		{"3d6", dice.Expression{Raw: "3d6", Count: 3, Sides: 6}},
		{"9d10+3", dice.Expression{Raw: "9d10+3", Count: 9, Sides: 10, Modifier: 3}},
		{"2d4-1", dice.Expression{Raw: "2d4-1", Count: 2, Sides: 4, Modifier: -1}},
		{"4d6kh3", dice.Expression{Raw: "4d6kh3", Count: 4, Sides: 6, KeepHighest: 3}},
		{"4D6KH3+1", dice.Expression{Raw: "4D6KH3+1", Count: 4, Sides: 6, KeepHighest: 3, Modifier: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := dice.Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "6", "0d6", "3d1", "3d", "4d6kh4", "4d6kh0", "3d6+", "3x6", "d6d6"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nope") })
	assert.NotPanics(t, func() { dice.MustParse("3d6") })
}

func TestRoll_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 12).Draw(rt, "count")
		sides := rapid.SampledFrom([]int{4, 6, 8, 10, 12, 20}).Draw(rt, "sides")
		mod := rapid.IntRange(-5, 12).Draw(rt, "mod")
		expr := dice.MustParse(fmt.Sprintf("%dd%d%+d", count, sides, mod))
		if count > 1 {
			kh := rapid.IntRange(0, count-1).Draw(rt, "kh")
			expr.KeepHighest = kh
		}
		seed := rapid.Uint64().Draw(rt, "seed")

		r := dice.Roll(expr, dice.NewSeededSource(seed))
		assert.Len(rt, r.Dice, expr.Kept())
		assert.Len(rt, r.Dropped, expr.Count-expr.Kept())
		for _, d := range append(append([]int{}, r.Dice...), r.Dropped...) {
			assert.GreaterOrEqual(rt, d, 1)
			assert.LessOrEqual(rt, d, sides)
		}
		for _, kept := range r.Dice {
			for _, dropped := range r.Dropped {
				assert.GreaterOrEqual(rt, kept, dropped)
			}
		}
		assert.GreaterOrEqual(rt, r.Total(), expr.Min())
		assert.LessOrEqual(rt, r.Total(), expr.Max())
	})
}

func TestRoll_FixedSource(t *testing.T) {
	// A fixed value v shows v%sides + 1 on the die.
	r := dice.Roll(dice.MustParse("4d6kh3"), dice.NewFixedSource(5, 0, 3, 4))
	assert.Equal(t, []int{6, 5, 4}, r.Dice)
	assert.Equal(t, []int{1}, r.Dropped)
	assert.Equal(t, 15, r.Total())
}

func TestSeededSource_Reproducible(t *testing.T) {
	a, b := dice.NewSeededSource(42), dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestSources_Intn_InRange(t *testing.T) {
	for name, src := range map[string]dice.Source{
		"crypto": dice.NewCryptoSource(),
		"seeded": dice.NewSeededSource(7),
		"fixed":  dice.NewFixedSource(0, 3, 11, 99),
	} {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 500; i++ {
				v := src.Intn(6)
				assert.GreaterOrEqual(t, v, 0)
				assert.Less(t, v, 6)
			}
			assert.Panics(t, func() { src.Intn(0) })
		})
	}
}

func TestSeededSource_ConcurrentUse(t *testing.T) {
	src := dice.NewSeededSource(1)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = src.Intn(20)
			}
		}()
	}
	wg.Wait()
}

func TestWeighted(t *testing.T) {
	i, err := dice.Weighted([]int{0, 5, 0}, dice.NewSeededSource(3))
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = dice.Weighted([]int{0, -1}, dice.NewSeededSource(3))
	assert.Error(t, err)

	// Roll 0..4 lands on index 0, 5..14 on index 1.
	i, err = dice.Weighted([]int{5, 10}, dice.NewFixedSource(5))
	require.NoError(t, err)
	assert.Equal(t, 1, i)
}

func TestWeighted_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		weights := rapid.SliceOfN(rapid.IntRange(-2, 20), 1, 10).Draw(rt, "weights")
		positive := false
		for _, w := range weights {
			positive = positive || w > 0
		}
		i, err := dice.Weighted(weights, dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")))
		if !positive {
			assert.Error(rt, err)
			return
		}
		require.NoError(rt, err)
		assert.Greater(rt, weights[i], 0)
	})
}

func TestRoller_LogsRolls(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewRoller(dice.NewFixedSource(2), zap.New(core))

	result, err := r.RollExpr("3d6")
	require.NoError(t, err)
	assert.Equal(t, 9, result.Total())

	_, err = r.Weighted("races", []int{1, 1})
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "dice roll", entries[0].Message)
	assert.Equal(t, int64(9), entries[0].ContextMap()["total"])
	assert.Equal(t, "weighted draw", entries[1].Message)
	assert.Equal(t, "races", entries[1].ContextMap()["table"])

	_, err = r.RollExpr("bogus")
	assert.Error(t, err)
}
