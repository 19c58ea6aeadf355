package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alanyoungcy/polylens/internal/config"
	"github.com/alanyoungcy/polylens/internal/domain"
	"github.com/alanyoungcy/polylens/internal/query"
)

var errUpstream = errors.New("upstream unavailable")

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

// fakeCatalog is an in-memory domain.Catalog. Volume-ordered event listings
// are served page by page from eventPages; tag listings from tagEvents.
type fakeCatalog struct {
	mu sync.Mutex

	markets    []domain.Market
	marketsErr error

	marketsBySlug map[string][]domain.Market
	eventsBySlug  map[string][]domain.Event
	slugErr       error

	search      []domain.Event
	searchErr   error
	searchCalls []domain.SearchQuery

	eventPages [][]domain.Event
	failPage   int // page index whose fetch fails; -1 for none
	tagEvents  map[string][]domain.Event
	eventCalls []domain.EventQuery

	tags      []domain.Tag
	tagsErr   error
	tagsDelay time.Duration
	tagsCalls atomic.Int32
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		marketsBySlug: map[string][]domain.Market{},
		eventsBySlug:  map[string][]domain.Event{},
		tagEvents:     map[string][]domain.Event{},
		failPage:      -1,
	}
}

func (f *fakeCatalog) ListMarkets(_ context.Context, limit int, closed bool) ([]domain.Market, error) {
	if f.marketsErr != nil {
		return nil, f.marketsErr
	}
	out := f.markets
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCatalog) MarketsBySlug(_ context.Context, slug string) ([]domain.Market, error) {
	if f.slugErr != nil {
		return nil, f.slugErr
	}
	return f.marketsBySlug[slug], nil
}

func (f *fakeCatalog) EventsBySlug(_ context.Context, slug string) ([]domain.Event, error) {
	if f.slugErr != nil {
		return nil, f.slugErr
	}
	return f.eventsBySlug[slug], nil
}

func (f *fakeCatalog) PublicSearch(_ context.Context, q domain.SearchQuery) ([]domain.Event, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, q)
	f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.search, nil
}

func (f *fakeCatalog) ListEvents(_ context.Context, q domain.EventQuery) ([]domain.Event, error) {
	f.mu.Lock()
	f.eventCalls = append(f.eventCalls, q)
	f.mu.Unlock()

	if q.TagID != "" {
		return f.tagEvents[q.TagID], nil
	}
	page := 0
	if q.Limit > 0 {
		page = q.Offset / q.Limit
	}
	if page == f.failPage {
		return nil, errUpstream
	}
	if page < len(f.eventPages) {
		return f.eventPages[page], nil
	}
	return nil, nil
}

func (f *fakeCatalog) ListTags(context.Context) ([]domain.Tag, error) {
	f.tagsCalls.Add(1)
	if f.tagsDelay > 0 {
		time.Sleep(f.tagsDelay)
	}
	if f.tagsErr != nil {
		return nil, f.tagsErr
	}
	return f.tags, nil
}

func (f *fakeCatalog) pagesFetched() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.eventCalls {
		if q.TagID == "" {
			n++
		}
	}
	return n
}

// fakeTrades is an in-memory domain.TradeSource.
type fakeTrades struct {
	trades []domain.Trade
	err    error
	calls  []string
}

func (f *fakeTrades) Trades(_ context.Context, conditionID string, limit int) ([]domain.Trade, error) {
	f.calls = append(f.calls, conditionID)
	if f.err != nil {
		return nil, f.err
	}
	out := f.trades
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// market builds a live, tradeable market.
func market(id, question string) domain.Market {
	return domain.Market{
		ID:              id,
		Question:        question,
		ConditionID:     "cond-" + id,
		Prices:          [2]float64{0.5, 0.5},
		Active:          true,
		AcceptingOrders: true,
	}
}

func event(id, title string, markets ...domain.Market) domain.Event {
	slug := strings.ReplaceAll(query.Normalize(title), " ", "-")
	markets = slices.Clone(markets)
	for i := range markets {
		markets[i].EventTitle = title
		markets[i].EventSlug = slug
	}
	return domain.Event{ID: id, Title: title, Slug: slug, Active: true, Markets: markets}
}

func newTestResolver(cat *fakeCatalog) *MarketResolver {
	return newTestResolverWith(cat, config.Defaults().Search)
}

func newTestResolverWith(cat *fakeCatalog, cfg config.SearchConfig) *MarketResolver {
	r := NewMarketResolver(cat, NewTagResolver(cat, discardLogger()), query.NewSlugExtractor(""), cfg, discardLogger())
	r.now = func() time.Time { return testNow }
	return r
}

func ids(markets []domain.Market) []string {
	out := make([]string, 0, len(markets))
	for _, m := range markets {
		out = append(out, m.ID)
	}
	return out
}
