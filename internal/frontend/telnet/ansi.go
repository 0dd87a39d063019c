// Package telnet provides the Telnet listener, connection handling, and the
// ANSI styling used by the battle screens.
package telnet

import (
	"fmt"
	"strings"
)

// ANSI escape codes.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"
)

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns text wrapped with the color code and Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf wraps a formatted string with the given ANSI color code.
func Colorf(color, format string, args ...interface{}) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

// HealthColor picks the bar color for current/max: green above half,
// yellow above a quarter, red otherwise.
func HealthColor(current, max int) string {
	if max <= 0 {
		return Red
	}
	switch {
	case current*2 > max:
		return Green
	case current*4 > max:
		return Yellow
	default:
		return Red
	}
}

// HealthBar renders a fixed-width bar such as "[######....] 30/50".
// The filled cell count rounds up so any living entity shows at least one.
//
// Precondition: width > 0.
// Postcondition: StripANSI of the result has exactly width cells between the brackets.
func HealthBar(current, max, width int) string {
	if current < 0 {
		current = 0
	}
	if current > max {
		current = max
	}
	filled := 0
	if max > 0 {
		filled = (current*width + max - 1) / max
	}
	bar := strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
	return "[" + Colorize(HealthColor(current, max), bar) + fmt.Sprintf("] %d/%d", current, max)
}

// StripANSI removes all ANSI escape sequences from a string.
//
// Postcondition: Returns text with all \033[...m sequences removed.
func StripANSI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			if end := strings.IndexByte(s[i:], 'm'); end >= 0 {
				i += end
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
