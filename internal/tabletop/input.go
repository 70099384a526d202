package tabletop

import "strings"

// leadingInt reads an optionally signed decimal integer from the start of s,
// ignoring surrounding whitespace and any trailing text, the way form
// fields are read: "3", " 3 ", "3 dice", and "+3" all give 3. It returns
// def when s holds no leading digits or the value is zero.
func leadingInt(s string, def int) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	const limit = 1 << 31
	v, digits := 0, 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		if v < limit {
			v = v*10 + int(s[digits]-'0')
		}
	}
	if digits == 0 || v == 0 {
		return def
	}
	v = min(v, limit)
	if neg {
		return -v
	}
	return v
}
