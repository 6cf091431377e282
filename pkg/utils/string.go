// Package utils holds small helpers shared by the commands.
package utils

// Truncate shortens s to at most maxLen runes, marking a cut with "...".
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
