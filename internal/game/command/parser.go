package command

import "strings"

// ParseResult holds the parsed command word and its arguments.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command, case preserved.
	Args []string
	// RawArgs is Args joined by single spaces, so "rock   throw" and
	// "rock throw" name the same attack.
	RawArgs string
}

// Parse splits a line of player input on any run of whitespace.
//
// Postcondition: Command is empty iff line is blank. Args is nil when the
// line holds a single word.
func Parse(line string) ParseResult {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ParseResult{}
	}
	res := ParseResult{Command: strings.ToLower(fields[0])}
	if len(fields) > 1 {
		res.Args = fields[1:]
		res.RawArgs = strings.Join(res.Args, " ")
	}
	return res
}
