package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minQueryLen is the shortest query worth sending upstream.
const minQueryLen = 2

// conversationalPrefixes are tried in order; more specific forms come first so
// "search markets for:" is not cut down to "markets for: ...".
var conversationalPrefixes = []string{
	"search markets for:",
	"search markets for",
	"search for:",
	"search for",
	"search markets:",
	"search markets",
	"show me",
	"find",
}

var quotePairs = map[rune]rune{
	'"':  '"',
	'\'': '\'',
	'`':  '`',
	'“':  '”',
	'‘':  '’',
}

// Sanitize turns conversational input into a catalog query. It never returns
// something shorter than two characters when the trimmed input was longer;
// in that case the trimmed input is returned unchanged.
func Sanitize(input string) string {
	original := strings.TrimSpace(input)

	q := stripQuotes(original)
	q = stripPrefix(q)

	if i := strings.LastIndex(q, ":"); i > 0 && i < len(q)-1 {
		tail := strings.TrimSpace(q[i+1:])
		if utf8.RuneCountInString(tail) >= minQueryLen {
			q = tail
		}
	}

	if utf8.RuneCountInString(q) < minQueryLen {
		return original
	}
	return q
}

func stripQuotes(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	closing, ok := quotePairs[first]
	if !ok {
		return s
	}
	last, lastSize := utf8.DecodeLastRuneInString(s)
	if last != closing || len(s) < size+lastSize {
		return s
	}
	return strings.TrimSpace(s[size : len(s)-lastSize])
}

func stripPrefix(s string) string {
	for _, p := range conversationalPrefixes {
		if len(s) < len(p) || !strings.EqualFold(s[:len(p)], p) {
			continue
		}
		rest := s[len(p):]
		// "find" must not eat the start of "findings".
		if !strings.HasSuffix(p, ":") && rest != "" {
			r, _ := utf8.DecodeRuneInString(rest)
			if !unicode.IsSpace(r) && r != ':' {
				continue
			}
		}
		return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), ":"))
	}
	return s
}
