// Package telnet serves the dice console over Telnet: a TCP acceptor, a
// line-oriented connection, and ANSI styling helpers.
package telnet

import "strings"

// ANSI SGR sequences used by the console.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightBlack  = "\033[90m"
	BrightRed    = "\033[91m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
)

// Colorize wraps text in the given SGR codes followed by Reset. With no
// codes it returns text unchanged.
//
// Postcondition: StripANSI(Colorize(codes..., text)) == text for text without escapes.
func Colorize(text string, codes ...string) string {
	if len(codes) == 0 {
		return text
	}
	return strings.Join(codes, "") + text + Reset
}

// StripANSI removes every ESC '[' ... 'm' sequence from s, for measuring
// printable width and for plain-text clients.
func StripANSI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			if end := strings.IndexByte(s[i+2:], 'm'); end >= 0 {
				i += 2 + end
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
