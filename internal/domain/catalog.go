package domain

import "context"

// EventQuery holds the filters of an event listing.
type EventQuery struct {
	Active      bool
	Closed      bool
	Order       string // e.g. "volume24hr"
	Ascending   bool
	Limit       int
	Offset      int
	TagID       string
	RelatedTags bool
}

// SearchQuery holds the parameters of a full-text catalog search.
type SearchQuery struct {
	Query        string
	EventsStatus string // "active" restricts results to open events
	LimitPerType int
	SearchTags   bool
	Page         int
	Sort         string
	Ascending    bool
}

// Catalog is the read-only market catalog.
type Catalog interface {
	ListMarkets(ctx context.Context, limit int, closed bool) ([]Market, error)
	MarketsBySlug(ctx context.Context, slug string) ([]Market, error)
	ListEvents(ctx context.Context, q EventQuery) ([]Event, error)
	EventsBySlug(ctx context.Context, slug string) ([]Event, error)
	PublicSearch(ctx context.Context, q SearchQuery) ([]Event, error)
	ListTags(ctx context.Context) ([]Tag, error)
}

// TradeSource serves recent public trades of a condition.
type TradeSource interface {
	Trades(ctx context.Context, conditionID string, limit int) ([]Trade, error)
}
