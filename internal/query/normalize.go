// Package query canonicalizes free text and interprets conversational search
// input: prefix stripping, "Category: question" splitting and slug/URL
// detection.
package query

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Normalize lower-cases text, collapses every run of non-word characters into
// a single space and trims the result.
func Normalize(text string) string {
	return strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(text), " "))
}

// Tokens returns the whitespace-delimited tokens of the normalized text.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

// TokenSet returns the normalized tokens of text as a set.
func TokenSet(text string) map[string]struct{} {
	toks := Tokens(text)
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}
