package query

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultPublicDomain is the host of the catalog's public website.
const DefaultPublicDomain = "polymarket.com"

var (
	pathSlugRe = regexp.MustCompile(`(?i)(?:^|[^a-z0-9-])(?:event|market)/([a-z0-9-]+)`)
	bareSlugRe = regexp.MustCompile(`(?i)^[a-z0-9-]{4,}$`)
)

// SlugExtractor recognises market and event slugs in user input: full URLs on
// the public domain, "event/<slug>" fragments, or a bare slug-like token.
type SlugExtractor struct {
	domain string
}

// NewSlugExtractor creates an extractor for URLs on the given public domain.
// An empty domain falls back to DefaultPublicDomain.
func NewSlugExtractor(domain string) *SlugExtractor {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		domain = DefaultPublicDomain
	}
	return &SlugExtractor{domain: domain}
}

// Extract returns the slug referenced by input, if any.
func (e *SlugExtractor) Extract(input string) (string, bool) {
	text := strings.TrimSpace(input)
	if text == "" {
		return "", false
	}

	if strings.Contains(strings.ToLower(text), e.domain) {
		if slug, ok := slugFromURL(text); ok {
			return slug, true
		}
	}

	if m := pathSlugRe.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1]), true
	}

	if !strings.ContainsAny(text, " \t\r\n") && bareSlugRe.MatchString(text) {
		return strings.ToLower(text), true
	}
	return "", false
}

// ExtractSlug is Extract on the default public domain.
func ExtractSlug(input string) (string, bool) {
	return NewSlugExtractor(DefaultPublicDomain).Extract(input)
}

func slugFromURL(text string) (string, bool) {
	raw := text
	if !strings.Contains(raw, "://") {
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i < len(segments)-1; i++ {
		switch strings.ToLower(segments[i]) {
		case "event", "market":
			if next := segments[i+1]; next != "" {
				return strings.ToLower(next), true
			}
		}
	}
	return "", false
}
