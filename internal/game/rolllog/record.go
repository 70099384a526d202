// Package rolllog holds the roll history: the record model, the streak
// detector for repeated 2d6 raw totals, and the persistent newest-first store.
package rolllog

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind distinguishes the ruleset's 2d6 mechanic from generic rolls.
type Kind string

const (
	// KindTwoD6 records are streak-, critical- and fumble-eligible.
	KindTwoD6 Kind = "2d6"
	// KindOther covers every other roll, including unparsed literals.
	KindOther Kind = "other"
)

// Raw totals with special meaning on a 2d6 roll.
const (
	CriticalRaw = 12
	FumbleRaw   = 2
)

// DieValue is one entry of a record's die list: either a rolled face or a
// display-only annotation such as "(+3)".
//
// Invariant: exactly one of the face or the annotation is meaningful.
type DieValue struct {
	face       int
	annotation string
	annotated  bool
}

// Face returns a DieValue holding a rolled face.
func Face(v int) DieValue {
	return DieValue{face: v}
}

// Annotation returns a display-only DieValue.
func Annotation(text string) DieValue {
	return DieValue{annotation: text, annotated: true}
}

// Faces wraps each value as a Face.
func Faces(values []int) []DieValue {
	out := make([]DieValue, len(values))
	for i, v := range values {
		out[i] = Face(v)
	}
	return out
}

// IsAnnotation reports whether d is display-only.
func (d DieValue) IsAnnotation() bool {
	return d.annotated
}

// Value returns the face and true, or 0 and false for annotations.
func (d DieValue) Value() (int, bool) {
	if d.annotated {
		return 0, false
	}
	return d.face, true
}

// String renders the face number or the annotation text.
func (d DieValue) String() string {
	if d.annotated {
		return d.annotation
	}
	return strconv.Itoa(d.face)
}

// MarshalJSON encodes faces as JSON numbers and annotations as strings.
func (d DieValue) MarshalJSON() ([]byte, error) {
	if d.annotated {
		return json.Marshal(d.annotation)
	}
	return json.Marshal(d.face)
}

// UnmarshalJSON accepts a JSON integer or string.
func (d *DieValue) UnmarshalJSON(data []byte) error {
	var face int
	if err := json.Unmarshal(data, &face); err == nil {
		*d = Face(face)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*d = Annotation(text)
		return nil
	}
	return fmt.Errorf("die value must be an integer or string, got %s", data)
}

// Record is one immutable roll-log entry. Records are identified by their
// position in the log, not by a stable id.
//
// Invariant: for KindTwoD6, Dice holds exactly two faces in [1, 6],
// RawTotal == Dice[0]+Dice[1], Total == RawTotal+Modifier, and Streak >= 1.
type Record struct {
	Expression string     `json:"expr"`
	Kind       Kind       `json:"type"`
	Dice       []DieValue `json:"rolls"`
	Modifier   int        `json:"modifier"`
	RawTotal   int        `json:"rawTotal,omitempty"`
	Total      int        `json:"total"`
	Streak     int        `json:"streak,omitempty"`
	Timestamp  string     `json:"time"`
}

// NewTwoD6 builds a 2d6 record.
//
// Precondition: d1 and d2 are in [1, 6]; streak comes from ComputeStreak
// against the log as it was before this record is appended.
func NewTwoD6(expr string, d1, d2, modifier, streak int, timestamp string) Record {
	raw := d1 + d2
	return Record{
		Expression: expr,
		Kind:       KindTwoD6,
		Dice:       []DieValue{Face(d1), Face(d2)},
		Modifier:   modifier,
		RawTotal:   raw,
		Total:      raw + modifier,
		Streak:     streak,
		Timestamp:  timestamp,
	}
}

// NewOther builds a generic record. total is taken as given because a
// negated roll's total is not the plain sum of its faces.
func NewOther(expr string, dice []DieValue, modifier, total int, timestamp string) Record {
	if dice == nil {
		dice = []DieValue{}
	}
	return Record{
		Expression: expr,
		Kind:       KindOther,
		Dice:       dice,
		Modifier:   modifier,
		Total:      total,
		Timestamp:  timestamp,
	}
}

// NewLiteral builds the zero-value record kept for input that is not a
// dice expression.
func NewLiteral(text, timestamp string) Record {
	return NewOther(text, nil, 0, 0, timestamp)
}

// FaceValues returns the rolled faces, skipping annotations.
func (r Record) FaceValues() []int {
	faces := make([]int, 0, len(r.Dice))
	for _, d := range r.Dice {
		if v, ok := d.Value(); ok {
			faces = append(faces, v)
		}
	}
	return faces
}

// IsTwoD6 reports whether r is a 2d6 record.
func (r Record) IsTwoD6() bool {
	return r.Kind == KindTwoD6
}

// Critical reports a 2d6 raw 12.
func (r Record) Critical() bool {
	return r.IsTwoD6() && r.RawTotal == CriticalRaw
}

// Fumble reports a 2d6 raw 2.
func (r Record) Fumble() bool {
	return r.IsTwoD6() && r.RawTotal == FumbleRaw
}

// Double reports a 2d6 whose two faces match.
func (r Record) Double() bool {
	if !r.IsTwoD6() {
		return false
	}
	faces := r.FaceValues()
	return len(faces) == 2 && faces[0] == faces[1]
}

// Repeated reports a 2d6 whose raw total repeats the previous roll.
func (r Record) Repeated() bool {
	return r.IsTwoD6() && r.Streak > 1
}
