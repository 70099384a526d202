package dice_test

import (
	"testing"

	"github.com/cory-johannsen/dicetool/internal/game/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"
)

func TestRollDice_Property_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 20).Draw(rt, "count")
		sides := rapid.IntRange(1, 100).Draw(rt, "sides")
		rolled := dice.RollDice(src, count, sides)
		if len(rolled) != count {
			rt.Fatalf("len = %d, want %d", len(rolled), count)
		}
		for _, v := range rolled {
			if v < 1 || v > sides {
				rt.Fatalf("value %d outside [1, %d]", v, sides)
			}
		}
	})
}

// TestRollDice_Uniform checks a d6 over many trials lands near 1/6 per face.
func TestRollDice_Uniform(t *testing.T) {
	const trials = 60000
	src := dice.NewPseudoSource(2024)
	counts := make([]int, 7)
	for i := 0; i < trials; i++ {
		counts[dice.RollDice(src, 1, 6)[0]]++
	}
	expected := trials / 6
	for face := 1; face <= 6; face++ {
		assert.InDelta(t, expected, counts[face], float64(expected)*0.05, "face %d", face)
	}
	assert.Zero(t, counts[0])
}

func TestRollDice_OneSidedAlwaysOne(t *testing.T) {
	assert.Equal(t, []int{1, 1, 1}, dice.RollDice(dice.NewCryptoSource(), 3, 1))
}

func TestRoll_TwoD6PlusThree(t *testing.T) {
	src := dice.NewScriptedSource(4, 5)
	out := dice.Roll(dice.ParseSegment("2d6+3"), src)
	require.Len(t, out.Dice, 2)
	assert.Equal(t, out.Dice[0]+out.Dice[1]+3, out.Total())
	assert.Equal(t, 12, out.Total())
	assert.Equal(t, "2d6+3", out.Expression)
}

func TestRoll_NegatedDiceKeepModifier(t *testing.T) {
	src := dice.NewScriptedSource(5)
	out := dice.Roll(dice.ParseSegment("-1d6+2"), src)
	require.Len(t, out.Dice, 1)
	assert.Equal(t, 2-out.Dice[0], out.Total())
	assert.Equal(t, -3, out.Total())
}

func TestRoll_Literal(t *testing.T) {
	src := dice.NewScriptedSource(1)
	out := dice.Roll(dice.ParseSegment("fireball!"), src)
	assert.Empty(t, out.Dice)
	assert.Equal(t, 0, out.Total())
	assert.Equal(t, "fireball!", out.Expression)
	assert.Zero(t, src.Draws(), "literal requests must not consume randomness")
}

func TestRoll2D6(t *testing.T) {
	out := dice.Roll2D6(dice.NewScriptedSource(6, 6), 5)
	assert.Equal(t, "2d6+5", out.Expression)
	assert.Equal(t, 12, out.Sum())
	assert.Equal(t, 17, out.Total())

	out = dice.Roll2D6(dice.NewScriptedSource(1, 2), 0)
	assert.Equal(t, "2d6", out.Expression)
	assert.Equal(t, 3, out.Total())

	out = dice.Roll2D6(dice.NewScriptedSource(1, 2), -2)
	assert.Equal(t, "2d6-2", out.Expression)
}

func TestRoll2D6_Property_RawInRange(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		mod := rapid.IntRange(-100, 100).Draw(rt, "modifier")
		out := dice.Roll2D6(src, mod)
		if out.Sum() < 2 || out.Sum() > 12 {
			rt.Fatalf("raw total %d outside [2, 12]", out.Sum())
		}
		if out.Total() != out.Sum()+mod {
			rt.Fatalf("total %d != raw %d + mod %d", out.Total(), out.Sum(), mod)
		}
	})
}

func TestLoggedRoller_LogsAtDebug(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewLoggedRoller(dice.NewScriptedSource(3, 4), zap.New(core))

	out := r.Roll2D6(1)
	assert.Equal(t, 8, out.Total())

	entries := logs.FilterMessage("dice roll").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "2d6+1", fields["expression"])
	assert.EqualValues(t, 8, fields["total"])
}

func TestLoggedRoller_SkipsLiterals(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewLoggedRoller(dice.NewScriptedSource(3), zap.New(core))

	r.Roll(dice.ParseSegment("hello"))
	r.RollDice("1d20", 1, 20)

	assert.Equal(t, 1, logs.FilterMessage("dice roll").Len())
}
