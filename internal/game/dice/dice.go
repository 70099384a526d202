// Package dice provides the randomness abstraction, the free-form expression
// parser, and the roll engine for the dice tool.
package dice

import "fmt"

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Uniform returns an integer in the closed range [min, max], each value
// equally likely.
//
// Precondition: min <= max.
// Postcondition: min <= return value <= max.
func Uniform(src Source, min, max int) int {
	return src.Intn(max-min+1) + min
}

// Outcome holds the full audit trail for a single executed roll.
//
// Postcondition: Total() == Sign*sum(Dice) + Modifier.
type Outcome struct {
	Expression string // label of what was rolled, e.g. "2d6+3"
	Dice       []int  // individual die faces in roll order
	Sign       int    // +1, or -1 when the dice sum is negated
	Modifier   int    // flat modifier (may be negative)
}

// Sum returns the signed sum of the die faces, before the modifier.
func (o Outcome) Sum() int {
	sum := 0
	for _, d := range o.Dice {
		sum += d
	}
	if o.Sign < 0 {
		return -sum
	}
	return sum
}

// Total returns the signed dice sum plus the modifier.
//
// Postcondition: return value == o.Sum() + o.Modifier.
func (o Outcome) Total() int {
	return o.Sum() + o.Modifier
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// A negated roll is shown with a leading minus before the dice list.
//
// Precondition: o.Expression is non-empty.
func (o Outcome) String() string {
	if o.Expression == "" {
		panic("dice: Outcome.String() precondition violated: Expression must be non-empty")
	}
	diceStr := fmt.Sprintf("%v", o.Dice)
	if o.Sign < 0 {
		diceStr = "-" + diceStr
	}
	return fmt.Sprintf("%s → %s %+d = %d", o.Expression, diceStr, o.Modifier, o.Total())
}
