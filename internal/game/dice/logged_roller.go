package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged dice rolling.
// All rolls are logged at debug level with expression, dice values, sign,
// modifier, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll executes req and logs the outcome at debug level. Literal requests
// are not rolled and not logged.
//
// Postcondition: Returns the same Outcome Roll(req, src) would.
func (r *Roller) Roll(req Request) Outcome {
	out := Roll(req, r.src)
	if !req.IsLiteral() {
		r.log(out)
	}
	return out
}

// Roll2D6 rolls 2d6 with the given modifier and logs the outcome.
func (r *Roller) Roll2D6(modifier int) Outcome {
	out := Roll2D6(r.src, modifier)
	r.log(out)
	return out
}

// RollDice draws count values in [1, sides] and logs them under label.
//
// Precondition: count >= 1; sides >= 1.
func (r *Roller) RollDice(label string, count, sides int) []int {
	rolled := RollDice(r.src, count, sides)
	r.log(Outcome{Expression: label, Dice: rolled, Sign: 1})
	return rolled
}

func (r *Roller) log(out Outcome) {
	r.logger.Debug("dice roll",
		zap.String("expression", out.Expression),
		zap.Ints("dice", out.Dice),
		zap.Int("sign", out.Sign),
		zap.Int("modifier", out.Modifier),
		zap.Int("total", out.Total()),
	)
}
