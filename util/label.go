package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeLabel turns a column label into a snake_case identifier: lower
// case, surrounding whitespace trimmed, every rune that is not a letter or
// digit replaced by '_', runs of '_' collapsed and leading/trailing '_'
// removed. The result may be empty.
func NormalizeLabel(label string) string {
	// Casers are stateful, one per call.
	s := cases.Lower(language.Und).String(norm.NFC.String(label))
	s = strings.TrimSpace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '_' })
	return strings.Join(parts, "_")
}
