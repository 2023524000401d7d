package toolkit

import "fmt"

// Character bounds applied to tool output before it reaches the model's
// context. Stream bounds cover stdout/stderr; read bounds cover file content.
const (
	MaxStreamChars = 8000
	MaxReadChars   = 12000
)

// TailLimit keeps the last max characters of s. When truncation happens the
// result is prefixed with an elision marker so the model knows output is
// missing. Tail truncation is the right bias for command output and file
// reads: errors and recent state live at the end.
func TailLimit(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	removed := len(s) - max
	return fmt.Sprintf("[... %d characters elided ...]\n", removed) + s[removed:]
}

// HeadTailLimit keeps the first and last halves of s within max characters,
// eliding the middle. Used where both the opening banner and the trailing
// error of a long command matter.
func HeadTailLimit(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	half := max / 2
	removed := len(s) - max
	return s[:half] +
		fmt.Sprintf("\n[... %d characters elided ...]\n", removed) +
		s[len(s)-half:]
}
