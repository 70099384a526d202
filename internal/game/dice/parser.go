package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// RequestKind distinguishes rollable requests from literal text.
type RequestKind int

const (
	// KindDice is a rollable NdM request.
	KindDice RequestKind = iota
	// KindLiteral is input that matched no dice form; it is recorded
	// verbatim and never rolled.
	KindLiteral
)

// Request is one parsed segment of a free-form dice expression.
//
// Invariant: when Kind == KindDice, Count >= 1, Sides >= 1, and Sign is +1 or -1.
type Request struct {
	Raw      string      // trimmed segment text as typed
	Kind     RequestKind // KindDice or KindLiteral
	Count    int         // number of dice
	Sides    int         // faces per die
	Modifier int         // flat modifier (may be negative); never negated by Sign
	Sign     int         // +1, or -1 to negate the summed dice
}

// IsLiteral reports whether r is an unparsed literal segment.
func (r Request) IsLiteral() bool {
	return r.Kind == KindLiteral
}

// IsTwoD6 reports whether r rolls exactly two positive six-sided dice,
// the ruleset's core mechanic.
func (r Request) IsTwoD6() bool {
	return r.Kind == KindDice && r.Count == 2 && r.Sides == 6 && r.Sign > 0
}

// ParseAll splits text on commas and parses every non-empty segment.
// Parsing never fails: segments matching no dice form come back as
// KindLiteral requests, in input order.
//
// Postcondition: len(result) == number of non-blank comma-separated segments.
func ParseAll(text string) []Request {
	var reqs []Request
	for _, seg := range strings.Split(text, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		reqs = append(reqs, ParseSegment(seg))
	}
	return reqs
}

// ParseSegment parses a single segment. Supported forms, case-insensitive:
//
//	[sign][count]d<sides>[(+|-)modifier]   "2d6+3", "d20", "-1d6+2", "-d4"
//	[d]<sides>                             "20", "d20" (one die)
//
// Interior whitespace is ignored. A zero count or zero sides is raised to 1
// so the request is always rollable.
//
// Postcondition: Returns a KindDice request, or a KindLiteral request whose
// Raw is the trimmed input.
func ParseSegment(seg string) Request {
	raw := strings.TrimSpace(seg)
	compact := strings.ToLower(strings.Join(strings.Fields(raw), ""))

	if req, ok := parseDice(compact); ok {
		req.Raw = raw
		return req
	}
	if req, ok := parseBare(compact); ok {
		req.Raw = raw
		return req
	}
	return Request{Raw: raw, Kind: KindLiteral, Sign: 1}
}

// MustParse parses expr and panics if it is not a single dice request.
// Useful for package-level constants.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Request {
	req := ParseSegment(expr)
	if req.IsLiteral() {
		panic("dice: MustParse failed for expression " + expr)
	}
	return req
}

// Label renders r in canonical NdM±K form, e.g. "-1d6+2". Literal
// requests render as their raw text.
func (r Request) Label() string {
	if r.IsLiteral() {
		return r.Raw
	}
	var b strings.Builder
	if r.Sign < 0 {
		b.WriteByte('-')
	}
	fmt.Fprintf(&b, "%dd%d", r.Count, r.Sides)
	if r.Modifier != 0 {
		fmt.Fprintf(&b, "%+d", r.Modifier)
	}
	return b.String()
}

// scanner walks a compact, lowercased segment one byte at a time.
type scanner struct {
	s   string
	pos int
}

func (sc *scanner) done() bool {
	return sc.pos >= len(sc.s)
}

func (sc *scanner) accept(c byte) bool {
	if !sc.done() && sc.s[sc.pos] == c {
		sc.pos++
		return true
	}
	return false
}

// number consumes one or more decimal digits.
// Returns false, consuming nothing, when no digit is present or the value
// overflows int.
func (sc *scanner) number() (int, bool) {
	start := sc.pos
	for !sc.done() && sc.s[sc.pos] >= '0' && sc.s[sc.pos] <= '9' {
		sc.pos++
	}
	if sc.pos == start {
		return 0, false
	}
	n, err := strconv.Atoi(sc.s[start:sc.pos])
	if err != nil {
		sc.pos = start
		return 0, false
	}
	return n, true
}

// parseDice matches [sign][count]d<sides>[(+|-)modifier].
func parseDice(s string) (Request, bool) {
	sc := &scanner{s: s}
	req := Request{Kind: KindDice, Count: 1, Sign: 1}

	if sc.accept('-') {
		req.Sign = -1
	} else {
		sc.accept('+')
	}
	if n, ok := sc.number(); ok {
		req.Count = max(n, 1)
	}
	if !sc.accept('d') {
		return Request{}, false
	}
	sides, ok := sc.number()
	if !ok {
		return Request{}, false
	}
	req.Sides = max(sides, 1)

	switch {
	case sc.accept('+'):
		mod, ok := sc.number()
		if !ok {
			return Request{}, false
		}
		req.Modifier = mod
	case sc.accept('-'):
		mod, ok := sc.number()
		if !ok {
			return Request{}, false
		}
		req.Modifier = -mod
	}

	if !sc.done() {
		return Request{}, false
	}
	return req, true
}

// parseBare matches [d]<sides>, read as one die with that many sides.
func parseBare(s string) (Request, bool) {
	sc := &scanner{s: s}
	sc.accept('d')
	sides, ok := sc.number()
	if !ok || !sc.done() {
		return Request{}, false
	}
	return Request{Kind: KindDice, Count: 1, Sides: max(sides, 1), Sign: 1}, true
}
