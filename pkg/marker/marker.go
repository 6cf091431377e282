// Package marker extracts the out-of-band identifier marker that the search
// assistant appends to its answers, e.g. "[IDS: 11, 42]", and derives the
// user-facing text with the marker removed.
package marker

import (
	"regexp"
	"strings"
)

// pattern matches "[ID: ...]" or "[IDS: ...]" in any letter case. The payload
// is everything up to the closing bracket.
var pattern = regexp.MustCompile(`(?i)\[IDS?:\s*([^\]]+)\]`)

// ExtractIDs returns the identifiers listed in the first marker of text, in
// order and with duplicates kept. Tokens are trimmed and empty tokens
// dropped. It returns nil when text has no marker.
func ExtractIDs(text string) []string {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	var ids []string
	for _, tok := range strings.Split(m[1], ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			ids = append(ids, tok)
		}
	}
	return ids
}

// Clean removes every marker from text and trims surrounding whitespace.
// Removal is repeated until no marker is left, so that a marker assembled
// from the pieces around a removed one is stripped too. Clean is idempotent.
func Clean(text string) string {
	for pattern.MatchString(text) {
		text = pattern.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// Parse returns both the cleaned display text and the extracted identifiers.
func Parse(text string) (string, []string) {
	return Clean(text), ExtractIDs(text)
}

// Has reports whether text contains a marker.
func Has(text string) bool {
	return pattern.MatchString(text)
}
