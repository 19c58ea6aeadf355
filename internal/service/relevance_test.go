package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/polylens/internal/domain"
)

func TestScore_Rules(t *testing.T) {
	m := domain.Market{Question: "Will it rain in London?"}

	tests := []struct {
		name    string
		keyword string
		context string
		want    float64
	}{
		// exact + prefix + substring + 5 tokens + all tokens
		{"exact", "will it rain in london", "", 1000 + 300 + 200 + 5*25 + 120},
		{"prefix", "will it rain", "", 300 + 200 + 3*25 + 120},
		{"substring", "rain in london", "", 200 + 3*25 + 120},
		{"tokens only", "london rain", "", 2*25 + 120},
		{"partial tokens", "london snow", "", 25},
		{"context tokens", "weather london", "UK Weather", 2*25 + 120},
		{"no match", "bitcoin", "", 0},
		{"empty keyword", "  ?? ", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(m, tt.keyword, tt.context), 1e-9)
		})
	}
}

func TestScore_ExactBeatsPrefixBeatsSubstring(t *testing.T) {
	m := domain.Market{Question: "Fed cuts rates in March", Volume24h: 5_000_000}

	exact := Score(m, "fed cuts rates in march", "")
	prefix := Score(m, "fed cuts rates", "")
	substring := Score(m, "cuts rates in", "")

	assert.Greater(t, exact, prefix)
	assert.Greater(t, prefix, substring)
}

func TestScore_PopularityTerm(t *testing.T) {
	quiet := domain.Market{Question: "Q", Volume: 9}
	busy := domain.Market{Question: "Q", Volume: 500, Volume24h: 999}

	assert.InDelta(t, 1, Score(quiet, "", ""), 1e-9)
	assert.InDelta(t, 3, Score(busy, "", ""), 1e-9)
	assert.InDelta(t, 0, Score(domain.Market{Question: "Q", Volume: -5}, "", ""), 1e-9)
	assert.Greater(t, Score(busy, "q", ""), Score(quiet, "q", ""))
}

func TestScore_Total(t *testing.T) {
	for _, kw := range []string{"", "x", "🙂", "a b c d e f", "\x00\xff"} {
		s := Score(domain.Market{}, kw, "ctx")
		assert.False(t, math.IsNaN(s) || math.IsInf(s, 0), "keyword %q", kw)
	}
}

func TestScoreMarket_UsesEventContext(t *testing.T) {
	m := domain.Market{Question: "Winner?", EventTitle: "Super Bowl", EventSlug: "super-bowl-2027"}
	assert.InDelta(t, Score(m, "super bowl 2027", "Super Bowl super-bowl-2027"), ScoreMarket(m, "super bowl 2027"), 1e-9)
	assert.Greater(t, ScoreMarket(m, "super bowl"), 0.0)
}

func TestRankMarkets_StableAndLimited(t *testing.T) {
	in := []domain.Market{
		market("a", "Alpha beta"),
		market("b", "Gamma"),
		market("c", "Alpha gamma"),
		market("d", "Alpha"),
	}
	got := rankMarkets(in, "alpha", 3)
	// "Alpha" is exact; the two prefix matches keep their input order.
	assert.Equal(t, []string{"d", "a", "c"}, ids(got))
}

func TestDedupMarkets(t *testing.T) {
	in := []domain.Market{market("a", "First"), market("b", ""), market("a", "Second"), market("c", "Third")}
	got := dedupMarkets(in)
	assert.Equal(t, []string{"a", "c"}, ids(got))
	assert.Equal(t, "First", got[0].Question)
}
