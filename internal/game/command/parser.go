package command

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the text after the command with inner spacing kept, so
	// comma-separated expressions reach the dice parser intact.
	RawArgs string
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	head, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	res := ParseResult{Command: strings.ToLower(head), RawArgs: rest}
	if rest != "" {
		res.Args = strings.Fields(rest)
	}
	return res
}

// IntArg returns argument i as an integer. A leading '+' is accepted.
//
// Postcondition: Returns def when the argument is absent; an error when it
// is present but not an integer.
func (p ParseResult) IntArg(i, def int) (int, error) {
	if i >= len(p.Args) {
		return def, nil
	}
	v, err := strconv.Atoi(p.Args[i])
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", p.Args[i])
	}
	return v, nil
}

// Arg returns argument i, or "" when absent.
func (p ParseResult) Arg(i int) string {
	if i >= len(p.Args) {
		return ""
	}
	return p.Args[i]
}
