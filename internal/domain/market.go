package domain

import (
	"math"
	"time"
)

// DefaultPrice is the probability assumed for an outcome whose price is
// missing or malformed in the catalog response.
const DefaultPrice = 0.5

// Market is a single binary-outcome question as seen in one catalog fetch.
// Markets are value snapshots; nothing mutates them after conversion.
type Market struct {
	ID              string     `json:"id"`
	Question        string     `json:"question"`
	Slug            string     `json:"slug,omitempty"`
	ConditionID     string     `json:"condition_id,omitempty"`
	TokenIDs        [2]string  `json:"token_ids"`      // YES, NO
	Prices          [2]float64 `json:"outcome_prices"` // YES, NO in [0,1]
	Volume          float64    `json:"volume"`
	Volume24h       float64    `json:"volume_24h"`
	Liquidity       float64    `json:"liquidity"`
	HasLiquidity    bool       `json:"-"`
	Active          bool       `json:"active"`
	Closed          bool       `json:"closed"`
	AcceptingOrders bool       `json:"accepting_orders"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	EventTitle      string     `json:"event_title,omitempty"`
	EventSlug       string     `json:"event_slug,omitempty"`
}

// YesPrice returns the probability of the first outcome.
func (m Market) YesPrice() float64 { return m.Prices[0] }

// NoPrice returns the probability of the second outcome.
func (m Market) NoPrice() float64 { return m.Prices[1] }

// Popularity is the volume used for tie-breaking and per-event selection:
// 24h volume when the catalog reported any, otherwise lifetime volume.
func (m Market) Popularity() float64 {
	if m.Volume24h > 0 {
		return m.Volume24h
	}
	if m.Volume > 0 {
		return m.Volume
	}
	return 0
}

// IsLive reports whether the market can still be traded at now: not closed,
// not marked inactive, and not past its end date when it carries one.
func (m Market) IsLive(now time.Time) bool {
	if m.Closed || !m.Active {
		return false
	}
	if m.EndDate != nil && !m.EndDate.After(now) {
		return false
	}
	return true
}

// Context is the text that surrounds the question when scoring relevance.
func (m Market) Context() string {
	if m.EventSlug == "" {
		return m.EventTitle
	}
	return m.EventTitle + " " + m.EventSlug
}

// ValidPrice reports whether p is a usable outcome probability.
func ValidPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0 && p <= 1
}

// Event groups related markets under one title, e.g. every candidate of a
// multi-outcome election.
type Event struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug"`
	Volume24h float64    `json:"volume_24h"`
	Active    bool       `json:"active"`
	Closed    bool       `json:"closed"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Markets   []Market   `json:"markets"`
}

// Tag is a topic label from the catalog.
type Tag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// ScoredCandidate pairs a market with its relevance score for one ranking
// call. Scores are only comparable within that call.
type ScoredCandidate struct {
	Market Market
	Score  float64
}
