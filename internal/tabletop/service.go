// Package tabletop orchestrates rolling and recording: it turns a user
// action into dice, assembles the roll record with its streak and
// timestamp, and appends it to the shared log.
package tabletop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetool/internal/game/dice"
	"github.com/cory-johannsen/dicetool/internal/game/preset"
	"github.com/cory-johannsen/dicetool/internal/game/rolllog"
)

// ErrInvalidSides is returned when a single-die roll asks for fewer than one
// side or more than the configured maximum.
var ErrInvalidSides = errors.New("die sides out of range")

// Options tunes record assembly and input limits.
type Options struct {
	// TimestampLayout formats record timestamps; see time.Layout.
	TimestampLayout string
	// MaxCount caps the number of dice in one request.
	MaxCount int
	// MaxSides caps the faces per die.
	MaxSides int
	// Now supplies the clock; nil means time.Now.
	Now func() time.Time
}

// Service is the roll API shared by every presentation. It is safe for
// concurrent use; all log mutations go through the store's lock.
type Service struct {
	roller  *dice.Roller
	store   *rolllog.Store
	presets *preset.Set
	opts    Options
	logger  *zap.Logger
}

// NewService wires a Service.
//
// Precondition: roller, store, presets, and logger must be non-nil;
// opts.MaxCount and opts.MaxSides must be >= 1.
func NewService(roller *dice.Roller, store *rolllog.Store, presets *preset.Set, opts Options, logger *zap.Logger) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TimestampLayout == "" {
		opts.TimestampLayout = "2006/1/2 15:04:05"
	}
	return &Service{roller: roller, store: store, presets: presets, opts: opts, logger: logger}
}

// Presets returns the preset set the consoles offer.
func (s *Service) Presets() *preset.Set {
	return s.presets
}

func (s *Service) timestamp() string {
	return s.opts.Now().Format(s.opts.TimestampLayout)
}

// Roll2D6 rolls the ruleset's 2d6 with a flat modifier and records it with
// its streak.
//
// Postcondition: on a nil error the returned record is at index 0 of the
// log; a non-nil error means the roll happened but was not recorded.
func (s *Service) Roll2D6(ctx context.Context, modifier int) (rolllog.Record, error) {
	rec, err := s.store.AppendFunc(ctx, func(log []rolllog.Record) rolllog.Record {
		return s.twoD6Record(s.roller.Roll2D6(modifier), log)
	})
	s.observe(rec, err)
	return rec, err
}

// RollSingle rolls one die with the given number of sides.
//
// Precondition: 1 <= sides <= MaxSides, else ErrInvalidSides.
func (s *Service) RollSingle(ctx context.Context, sides int) (rolllog.Record, error) {
	if sides < 1 || sides > s.opts.MaxSides {
		return rolllog.Record{}, fmt.Errorf("%w: 1d%d (allowed 1..%d)", ErrInvalidSides, sides, s.opts.MaxSides)
	}
	label := fmt.Sprintf("1d%d", sides)
	rec, err := s.store.AppendFunc(ctx, func([]rolllog.Record) rolllog.Record {
		rolled := s.roller.RollDice(label, 1, sides)
		return rolllog.NewOther(label, rolllog.Faces(rolled), 0, rolled[0], s.timestamp())
	})
	s.observe(rec, err)
	return rec, err
}

// RollCustom parses free-form text and records one entry per segment, left
// to right. Segments that are not dice expressions are kept as literal
// entries. Oversized requests are clamped to the configured limits.
//
// Postcondition: len(result) equals the number of non-blank segments; the
// last segment's record is the newest in the log. On a persistence error
// the records appended so far are returned with it.
func (s *Service) RollCustom(ctx context.Context, text string) ([]rolllog.Record, error) {
	reqs := dice.ParseAll(text)
	out := make([]rolllog.Record, 0, len(reqs))
	for _, req := range reqs {
		req = s.clamp(req)
		rec, err := s.store.AppendFunc(ctx, func(log []rolllog.Record) rolllog.Record {
			return s.requestRecord(req, log)
		})
		s.observe(rec, err)
		out = append(out, rec)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// RollStructured rolls count dice of the given sides plus modifier, taking
// the three values as raw form input. Non-numeric count or sides become 1
// and a non-numeric modifier becomes 0; count and sides are clamped to
// [1, limit]. The label is always "NdM+K" or "NdM-K" and a non-zero modifier
// is appended to the die list as an annotation.
func (s *Service) RollStructured(ctx context.Context, count, sides, modifier string) (rolllog.Record, error) {
	n := clampInt(leadingInt(count, 1), 1, s.opts.MaxCount)
	m := clampInt(leadingInt(sides, 1), 1, s.opts.MaxSides)
	k := leadingInt(modifier, 0)

	label := fmt.Sprintf("%dd%d%+d", n, m, k)
	rec, err := s.store.AppendFunc(ctx, func([]rolllog.Record) rolllog.Record {
		rolled := s.roller.RollDice(label, n, m)
		sum := 0
		for _, v := range rolled {
			sum += v
		}
		values := rolllog.Faces(rolled)
		if k != 0 {
			values = append(values, modifierAnnotation(k))
		}
		return rolllog.NewOther(label, values, k, sum+k, s.timestamp())
	})
	s.observe(rec, err)
	return rec, err
}

// DeleteRecord removes the record at index (0 = newest) and reports
// whether one was there to remove.
func (s *Service) DeleteRecord(ctx context.Context, index int) (bool, error) {
	removed, err := s.store.DeleteAt(ctx, index)
	if err != nil {
		s.logger.Error("deleting roll record", zap.Int("index", index), zap.Error(err))
		return false, err
	}
	return removed, nil
}

// ClearAll empties the log.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error("clearing roll log", zap.Error(err))
		return err
	}
	s.logger.Info("roll log cleared")
	return nil
}

// Log returns the current log, newest first.
func (s *Service) Log(ctx context.Context) []rolllog.Record {
	return s.store.All(ctx)
}

// twoD6Record builds a 2d6 record from out.
//
// Precondition: out holds exactly two positive d6 faces; log is the log
// before insertion.
func (s *Service) twoD6Record(out dice.Outcome, log []rolllog.Record) rolllog.Record {
	raw := out.Sum()
	return rolllog.NewTwoD6(
		out.Expression,
		out.Dice[0], out.Dice[1],
		out.Modifier,
		rolllog.ComputeStreak(raw, log),
		s.timestamp(),
	)
}

func (s *Service) requestRecord(req dice.Request, log []rolllog.Record) rolllog.Record {
	if req.IsLiteral() {
		return rolllog.NewLiteral(req.Raw, s.timestamp())
	}
	out := s.roller.Roll(req)
	if req.IsTwoD6() {
		return s.twoD6Record(out, log)
	}
	values := rolllog.Faces(out.Dice)
	if out.Modifier != 0 {
		values = append(values, modifierAnnotation(out.Modifier))
	}
	return rolllog.NewOther(out.Expression, values, out.Modifier, out.Total(), s.timestamp())
}

// clamp limits a parsed request to the configured maxima, relabelling it
// when anything changed.
func (s *Service) clamp(req dice.Request) dice.Request {
	if req.IsLiteral() {
		return req
	}
	count := clampInt(req.Count, 1, s.opts.MaxCount)
	sides := clampInt(req.Sides, 1, s.opts.MaxSides)
	if count == req.Count && sides == req.Sides {
		return req
	}
	s.logger.Warn("dice request clamped",
		zap.String("expression", req.Raw),
		zap.Int("count", count),
		zap.Int("sides", sides),
	)
	req.Count, req.Sides = count, sides
	req.Raw = req.Label()
	return req
}

func (s *Service) observe(rec rolllog.Record, err error) {
	if err != nil {
		s.logger.Error("recording roll",
			zap.String("expression", rec.Expression),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("roll recorded",
		zap.String("expression", rec.Expression),
		zap.String("kind", string(rec.Kind)),
		zap.Int("total", rec.Total),
		zap.Int("streak", rec.Streak),
	)
}

func modifierAnnotation(k int) rolllog.DieValue {
	return rolllog.Annotation(fmt.Sprintf("(%+d)", k))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
