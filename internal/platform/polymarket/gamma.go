package polymarket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/alanyoungcy/polylens/internal/domain"
)

// GammaClient is the REST client for the Polymarket Gamma API, which
// provides market discovery, metadata, tags and search.
type GammaClient struct {
	rest restClient
}

// NewGammaClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string, opts Options) *GammaClient {
	if baseURL == "" {
		baseURL = DefaultGammaURL
	}
	return &GammaClient{rest: newRestClient(baseURL, opts)}
}

func eventValues(q domain.EventQuery) url.Values {
	params := url.Values{}
	params.Set("active", strconv.FormatBool(q.Active))
	params.Set("closed", strconv.FormatBool(q.Closed))
	if q.Order != "" {
		params.Set("order", q.Order)
		params.Set("ascending", strconv.FormatBool(q.Ascending))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.TagID != "" {
		params.Set("tag_id", q.TagID)
		if q.RelatedTags {
			params.Set("related_tags", "true")
		}
	}
	return params
}

func searchValues(q domain.SearchQuery) url.Values {
	params := url.Values{}
	params.Set("q", q.Query)
	if q.EventsStatus != "" {
		params.Set("events_status", q.EventsStatus)
	}
	if q.LimitPerType > 0 {
		params.Set("limit_per_type", strconv.Itoa(q.LimitPerType))
	}
	params.Set("search_tags", strconv.FormatBool(q.SearchTags))
	page := q.Page
	if page <= 0 {
		page = 1
	}
	params.Set("page", strconv.Itoa(page))
	if q.Sort != "" {
		params.Set("sort", q.Sort)
		params.Set("ascending", strconv.FormatBool(q.Ascending))
	}
	return params
}

// ListMarkets returns up to limit markets in catalog order. closed selects
// resolved markets instead of open ones.
func (g *GammaClient) ListMarkets(ctx context.Context, limit int, closed bool) ([]domain.Market, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("closed", strconv.FormatBool(closed))

	var apiMarkets []APIMarket
	if err := g.getJSON(ctx, "list markets", "/markets?"+params.Encode(), &apiMarkets); err != nil {
		return nil, err
	}
	return toDomainMarkets(apiMarkets), nil
}

// MarketsBySlug returns the markets published under slug. The endpoint
// answers with a single object or an array; both are accepted.
func (g *GammaClient) MarketsBySlug(ctx context.Context, slug string) ([]domain.Market, error) {
	path := "/markets/slug/" + url.PathEscape(slug)

	var apiMarkets []APIMarket
	if err := g.getOneOrMany(ctx, "markets by slug", path, &apiMarkets); err != nil {
		return nil, err
	}
	return toDomainMarkets(apiMarkets), nil
}

// ListEvents returns events matching q, each with its embedded markets.
func (g *GammaClient) ListEvents(ctx context.Context, q domain.EventQuery) ([]domain.Event, error) {
	var apiEvents []APIEvent
	if err := g.getJSON(ctx, "list events", "/events?"+eventValues(q).Encode(), &apiEvents); err != nil {
		return nil, err
	}
	return toDomainEvents(apiEvents), nil
}

// EventsBySlug returns the events published under slug.
func (g *GammaClient) EventsBySlug(ctx context.Context, slug string) ([]domain.Event, error) {
	path := "/events/slug/" + url.PathEscape(slug)

	var apiEvents []APIEvent
	if err := g.getOneOrMany(ctx, "events by slug", path, &apiEvents); err != nil {
		return nil, err
	}
	return toDomainEvents(apiEvents), nil
}

// PublicSearch runs a full-text search and returns the matching events.
func (g *GammaClient) PublicSearch(ctx context.Context, q domain.SearchQuery) ([]domain.Event, error) {
	var resp searchResponse
	if err := g.getJSON(ctx, "public search", "/public-search?"+searchValues(q).Encode(), &resp); err != nil {
		return nil, err
	}
	return toDomainEvents(resp.Events), nil
}

// ListTags returns the full tag catalog.
func (g *GammaClient) ListTags(ctx context.Context) ([]domain.Tag, error) {
	var apiTags []APITag
	if err := g.getJSON(ctx, "list tags", "/tags", &apiTags); err != nil {
		return nil, err
	}
	tags := make([]domain.Tag, 0, len(apiTags))
	for i := range apiTags {
		tags = append(tags, apiTags[i].ToDomainTag())
	}
	return tags, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

func (g *GammaClient) getJSON(ctx context.Context, op, path string, out any) error {
	body, err := g.rest.doGet(ctx, path)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// getOneOrMany decodes either a JSON object or an array of objects into the
// slice pointed to by out.
func (g *GammaClient) getOneOrMany(ctx context.Context, op, path string, out any) error {
	body, err := g.rest.doGet(ctx, path)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		body = append(append([]byte{'['}, body...), ']')
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

func toDomainMarkets(apiMarkets []APIMarket) []domain.Market {
	markets := make([]domain.Market, 0, len(apiMarkets))
	for i := range apiMarkets {
		markets = append(markets, apiMarkets[i].ToDomainMarket())
	}
	return markets
}

func toDomainEvents(apiEvents []APIEvent) []domain.Event {
	events := make([]domain.Event, 0, len(apiEvents))
	for i := range apiEvents {
		events = append(events, apiEvents[i].ToDomainEvent())
	}
	return events
}
