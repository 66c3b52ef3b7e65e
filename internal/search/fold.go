// Package search provides text normalization for catalog product search.
// Product names are folded once at write time (via a GORM hook) into a
// dedicated column, and incoming search terms are folded the same way, so a
// plain substring match behaves case- and accent-insensitively: "Creme"
// finds "Crème Brûlée".
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// folder decomposes to NFD, strips combining marks, and recomposes to NFC.
// Shared and stateless; Transformer values are safe for concurrent use via
// transform.String.
var folder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Fold canonicalizes s for matching: diacritics removed, lowercased, and
// interior whitespace collapsed to single spaces. Folding is idempotent.
// If the transform fails on malformed input, the lowercased original is
// returned so search degrades rather than errors.
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if out, _, err := transform.String(folder, s); err == nil {
		s = out
	}
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
