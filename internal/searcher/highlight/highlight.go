// Package highlight wraps matched query terms in emphasis markers for
// display. It operates purely on caller-supplied text and never consults the
// index.
package highlight

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Marker is the emphasis marker wrapped around each matched term.
const Marker = "**"

// DefaultExcerptRadius is the window, in runes, kept on either side of the
// first match when building an excerpt.
const DefaultExcerptRadius = 80

// Highlight wraps every case-insensitive occurrence of each whitespace-
// separated query term in emphasis markers, preserving the casing of the
// matched text. Terms are matched literally; regexp metacharacters in a term
// (a literal "$", "(" and so on) carry no pattern meaning. Terms are applied
// in sequence, so a term overlapping an earlier match is wrapped again.
// When nothing matches, text is returned unchanged.
func Highlight(text, query string) string {
	seen := make(map[string]struct{})
	for _, term := range strings.Fields(query) {
		lower := strings.ToLower(term)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(term))
		text = re.ReplaceAllString(text, Marker+"${0}"+Marker)
	}
	return text
}

// Excerpt returns a highlighted window of roughly radius runes on either
// side of the first query term found in text, ellipsized where the window
// cuts into the surrounding text. When no term matches, the window is taken
// from the start of the text. A radius of zero or less uses
// DefaultExcerptRadius.
func Excerpt(text, query string, radius int) string {
	if radius <= 0 {
		radius = DefaultExcerptRadius
	}
	runes := []rune(text)
	if len(runes) <= 2*radius {
		return Highlight(text, query)
	}

	center := firstMatch(text, query)
	start := center - radius
	if start < 0 {
		start = 0
	}
	end := center + radius
	if end > len(runes) {
		end = len(runes)
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString("...")
	}
	b.WriteString(Highlight(string(runes[start:end]), query))
	if end < len(runes) {
		b.WriteString("...")
	}
	return b.String()
}

// firstMatch returns the rune offset of the earliest occurrence of any query
// term in text, or zero when nothing matches.
func firstMatch(text, query string) int {
	lowerText := strings.ToLower(text)
	best := -1
	for _, term := range strings.Fields(query) {
		off := strings.Index(lowerText, strings.ToLower(term))
		if off >= 0 && (best < 0 || off < best) {
			best = off
		}
	}
	if best < 0 {
		return 0
	}
	return utf8.RuneCountInString(text[:best])
}
