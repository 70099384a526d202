package dice

// TwoD6 is the ruleset's core 2d6 request.
var TwoD6 = MustParse("2d6")

// RollDice draws count independent values, each uniform in [1, sides].
//
// Precondition: count >= 1; sides >= 1; src must be non-nil. Callers clamp
// user input before calling; RollDice never fails.
// Postcondition: len(result) == count; every value is in [1, sides].
func RollDice(src Source, count, sides int) []int {
	rolled := make([]int, count)
	for i := range rolled {
		rolled[i] = Uniform(src, 1, sides)
	}
	return rolled
}

// Roll executes req against src.
//
// Precondition: src must be non-nil.
// Postcondition: Literal requests produce an Outcome with no dice and a zero
// total. Otherwise len(result.Dice) == req.Count and
// result.Total() == req.Sign*sum(result.Dice) + req.Modifier.
func Roll(req Request, src Source) Outcome {
	if req.IsLiteral() {
		return Outcome{Expression: req.Raw, Sign: 1}
	}
	sign := req.Sign
	if sign == 0 {
		sign = 1
	}
	return Outcome{
		Expression: req.Raw,
		Dice:       RollDice(src, req.Count, req.Sides),
		Sign:       sign,
		Modifier:   req.Modifier,
	}
}

// Roll2D6 rolls the ruleset's 2d6 with the given flat modifier. The
// expression label is "2d6" when modifier is 0, else "2d6+N" / "2d6-N".
//
// Postcondition: len(result.Dice) == 2; result.Sum() is in [2, 12].
func Roll2D6(src Source, modifier int) Outcome {
	req := TwoD6
	req.Modifier = modifier
	req.Raw = req.Label()
	return Roll(req, src)
}
