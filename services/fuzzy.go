package services

import (
	"strings"
	"unicode"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Scorer rates how close two strings are, 0..100.
type Scorer func(a, b string) int

// TokenSetRatio is order- and duplication-insensitive: "giorgio armani" and
// "armani" score high. Used for brand extraction from free-form messages.
// forceAscii is off so Cyrillic and Kazakh text survive preprocessing.
func TokenSetRatio(a, b string) int {
	return fuzzy.TokenSetRatio(a, b, false)
}

// TokenSortRatio is order-insensitive but duplication-sensitive. Used for
// product name matching.
func TokenSortRatio(a, b string) int {
	return fuzzy.TokenSortRatio(a, b, false)
}

// PartialRatio scores the best-matching substring window. Used for "is this
// still about the last product" checks.
func PartialRatio(a, b string) int {
	return fuzzy.PartialRatio(a, b)
}

// BestMatch returns the candidate with the highest score for query. The
// caller applies its own threshold; ok is false only for an empty candidate
// list.
func BestMatch(query string, candidates []string, score Scorer) (string, int, bool) {
	best := ""
	bestScore := -1
	for _, c := range candidates {
		if s := score(query, c); s > bestScore {
			best = c
			bestScore = s
		}
	}
	if bestScore < 0 {
		return "", 0, false
	}
	return best, bestScore, true
}

// StripPunctuation lowercases a message and removes punctuation so keyword
// and brand matching see clean tokens.
func StripPunctuation(message string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(message) {
		if unicode.IsPunct(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
