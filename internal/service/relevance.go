package service

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/alanyoungcy/polylens/internal/domain"
	"github.com/alanyoungcy/polylens/internal/query"
)

// Relevance weights. Each rule is evaluated independently and the results are
// summed, so an exact match also collects the prefix and substring bonuses.
const (
	scoreExact     = 1000
	scorePrefix    = 300
	scoreSubstring = 200
	scorePerToken  = 25
	scoreAllTokens = 120
)

// Score rates how well market m answers keyword, given surrounding context
// text such as the parent event's title and slug. Higher is better; the
// popularity term breaks ties between otherwise equal text matches.
func Score(m domain.Market, keyword, context string) float64 {
	score := math.Log10(m.Popularity() + 1)

	kw := query.Normalize(keyword)
	if kw == "" {
		return score
	}

	question := query.Normalize(m.Question)
	haystack := strings.TrimSpace(question + " " + query.Normalize(context))

	if question == kw || haystack == kw {
		score += scoreExact
	}
	if strings.HasPrefix(question, kw) || strings.HasPrefix(haystack, kw) {
		score += scorePrefix
	}
	if strings.Contains(question, kw) || strings.Contains(haystack, kw) {
		score += scoreSubstring
	}

	tokens := strings.Fields(kw)
	hay := query.TokenSet(haystack)
	found := 0
	for _, tok := range tokens {
		if _, ok := hay[tok]; ok {
			found++
		}
	}
	score += float64(found * scorePerToken)
	if found == len(tokens) {
		score += scoreAllTokens
	}
	return score
}

// ScoreMarket scores m against keyword using its event title and slug as
// context.
func ScoreMarket(m domain.Market, keyword string) float64 {
	return Score(m, keyword, m.Context())
}

// rankMarkets scores markets against keyword and returns at most limit of
// them, best first. Equal scores keep their input order.
func rankMarkets(markets []domain.Market, keyword string, limit int) []domain.Market {
	cands := make([]domain.ScoredCandidate, 0, len(markets))
	for _, m := range markets {
		cands = append(cands, domain.ScoredCandidate{Market: m, Score: ScoreMarket(m, keyword)})
	}
	return topCandidates(cands, limit)
}

// topCandidates stable-sorts candidates by descending score and returns the
// first limit markets.
func topCandidates(cands []domain.ScoredCandidate, limit int) []domain.Market {
	slices.SortStableFunc(cands, func(a, b domain.ScoredCandidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	out := make([]domain.Market, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Market)
	}
	return out
}

// dedupMarkets drops markets without a question and repeated ids; the first
// occurrence wins.
func dedupMarkets(markets []domain.Market) []domain.Market {
	seen := make(map[string]struct{}, len(markets))
	out := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if m.Question == "" {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

func flattenEvents(events []domain.Event) []domain.Market {
	var out []domain.Market
	for _, ev := range events {
		out = append(out, ev.Markets...)
	}
	return out
}

func truncateMarkets(markets []domain.Market, limit int) []domain.Market {
	if limit > 0 && len(markets) > limit {
		return markets[:limit]
	}
	return markets
}
