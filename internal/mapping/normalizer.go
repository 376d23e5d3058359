package mapping

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes header text for comparison: lowercase, every run
// of non-alphanumeric runes collapsed to one space, outer spaces trimmed.
// Original headers are never replaced by their normalized form. Input is
// composed to NFC first so a combining accent stays inside its word.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range strings.ToLower(norm.NFC.String(text)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// normalizeAll keeps declaration order; every tier depends on it.
func normalizeAll(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = Normalize(h)
	}
	return out
}
