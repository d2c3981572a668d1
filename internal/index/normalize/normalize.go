// Package normalize canonicalises search tokens so that index keys and query
// terms compare equal regardless of casing, punctuation, or surrounding
// whitespace.
package normalize

import (
	"strings"
	"unicode"
)

// Normalize lowercases term, removes punctuation and symbol runes, and trims
// leading and trailing whitespace. It operates on a single token or short
// phrase and is idempotent: normalizing an already-normalized term returns it
// unchanged.
func Normalize(term string) string {
	var b strings.Builder
	b.Grow(len(term))
	for _, r := range strings.ToLower(term) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Tokenize splits text on non-letter, non-digit boundaries and lowercases
// each token. Tokens produced here contain only letters and digits, so they
// are already in normalized form.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
