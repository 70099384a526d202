package dice_test

import (
	"fmt"
	"testing"

	"github.com/cory-johannsen/dicetool/internal/game/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseSegment_Forms(t *testing.T) {
	tests := []struct {
		input    string
		count    int
		sides    int
		modifier int
		sign     int
	}{
		{"2d6", 2, 6, 0, 1},
		{"2d6+3", 2, 6, 3, 1},
		{"4d8-2", 4, 8, -2, 1},
		{"d20", 1, 20, 0, 1},
		{"20", 1, 20, 0, 1},
		{"D20", 1, 20, 0, 1},
		{"3D10+1", 3, 10, 1, 1},
		{"-1d6+2", 1, 6, 2, -1},
		{"-d4", 1, 4, 0, -1},
		{"+2d6", 2, 6, 0, 1},
		{" 2d6 + 3 ", 2, 6, 3, 1},
		{"0d6", 1, 6, 0, 1},
		{"2d0", 2, 1, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			req := dice.ParseSegment(tt.input)
			require.False(t, req.IsLiteral(), "expected %q to parse as dice", tt.input)
			assert.Equal(t, tt.count, req.Count)
			assert.Equal(t, tt.sides, req.Sides)
			assert.Equal(t, tt.modifier, req.Modifier)
			assert.Equal(t, tt.sign, req.Sign)
		})
	}
}

func TestParseSegment_D20AndBareAgree(t *testing.T) {
	a := dice.ParseSegment("d20")
	b := dice.ParseSegment("20")
	assert.Equal(t, a.Count, b.Count)
	assert.Equal(t, a.Sides, b.Sides)
	assert.Equal(t, a.Modifier, b.Modifier)
	assert.Equal(t, 1, a.Count)
	assert.Equal(t, 20, a.Sides)
	assert.Equal(t, 0, a.Modifier)
}

func TestParseSegment_Literals(t *testing.T) {
	for _, input := range []string{"hello", "2d", "d", "-20", "2d6++3", "2d6+", "2x6", "1d6*2", "99999999999999999999d6"} {
		t.Run(input, func(t *testing.T) {
			req := dice.ParseSegment(input)
			assert.True(t, req.IsLiteral(), "expected %q to be literal", input)
			assert.Equal(t, input, req.Raw)
		})
	}
}

func TestParseSegment_KeepsRawText(t *testing.T) {
	req := dice.ParseSegment("  2D6+3 ")
	assert.Equal(t, "2D6+3", req.Raw)
	assert.Equal(t, "2d6+3", req.Label())
}

func TestParseAll_SplitsOnCommas(t *testing.T) {
	reqs := dice.ParseAll("2d6+3, d20 ,, banana,-1d6+2,")
	require.Len(t, reqs, 4)
	assert.Equal(t, "2d6+3", reqs[0].Raw)
	assert.Equal(t, "d20", reqs[1].Raw)
	assert.True(t, reqs[2].IsLiteral())
	assert.Equal(t, "banana", reqs[2].Raw)
	assert.Equal(t, -1, reqs[3].Sign)
}

func TestParseAll_Blank(t *testing.T) {
	assert.Empty(t, dice.ParseAll(""))
	assert.Empty(t, dice.ParseAll(" , ,  "))
}

func TestRequest_IsTwoD6(t *testing.T) {
	assert.True(t, dice.ParseSegment("2d6").IsTwoD6())
	assert.True(t, dice.ParseSegment("2d6+3").IsTwoD6())
	assert.False(t, dice.ParseSegment("-2d6").IsTwoD6())
	assert.False(t, dice.ParseSegment("3d6").IsTwoD6())
	assert.False(t, dice.ParseSegment("2d8").IsTwoD6())
	assert.False(t, dice.ParseSegment("nope").IsTwoD6())
}

func TestMustParse_PanicsOnLiteral(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("not dice") })
	assert.NotPanics(t, func() { dice.MustParse("1d6") })
}

// TestPropertyParseRoundTripsLabel verifies that a canonical label parses
// back to the same request.
func TestPropertyParseRoundTripsLabel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 100).Draw(rt, "count")
		sides := rapid.IntRange(1, 1000).Draw(rt, "sides")
		mod := rapid.IntRange(-500, 500).Draw(rt, "modifier")
		neg := rapid.Bool().Draw(rt, "negative")

		text := fmt.Sprintf("%dd%d", count, sides)
		if neg {
			text = "-" + text
		}
		if mod != 0 {
			text += fmt.Sprintf("%+d", mod)
		}

		req := dice.ParseSegment(text)
		if req.IsLiteral() {
			rt.Fatalf("%q parsed as literal", text)
		}
		if req.Count != count || req.Sides != sides || req.Modifier != mod {
			rt.Fatalf("%q parsed as %+v", text, req)
		}
		if req.Label() != text {
			rt.Fatalf("label %q != input %q", req.Label(), text)
		}
	})
}

// TestPropertyParseNeverPanics verifies arbitrary input is always accepted.
func TestPropertyParseNeverPanics(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.String().Draw(rt, "text")
		for _, req := range dice.ParseAll(text) {
			if !req.IsLiteral() && (req.Count < 1 || req.Sides < 1) {
				rt.Fatalf("dice request with non-positive count or sides: %+v", req)
			}
		}
	})
}
