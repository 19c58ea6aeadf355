package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/alanyoungcy/polylens/internal/config"
	"github.com/alanyoungcy/polylens/internal/domain"
	"github.com/alanyoungcy/polylens/internal/query"
)

// Resolution tiers, in the order they are tried.
const (
	TierSlug   = "slug"
	TierSearch = "search"
	TierTag    = "tag"
	TierScan   = "scan"
)

// Resolution is the outcome of resolving one query. Tier names the strategy
// that produced Markets; it is empty when nothing matched.
type Resolution struct {
	Query   string          `json:"query"`
	Keyword string          `json:"keyword"`
	Tier    string          `json:"tier,omitempty"`
	Markets []domain.Market `json:"markets"`
}

// Found reports whether any market matched.
func (r Resolution) Found() bool { return len(r.Markets) > 0 }

// Best returns the top-ranked market.
func (r Resolution) Best() (domain.Market, bool) {
	if len(r.Markets) == 0 {
		return domain.Market{}, false
	}
	return r.Markets[0], true
}

// resolveInput carries the per-call state shared by all tiers.
type resolveInput struct {
	raw     string // trimmed user input
	keyword string // sanitized query
	limit   int
	now     time.Time
}

type tier struct {
	name string
	run  func(ctx context.Context, in resolveInput) []domain.Market
}

// MarketResolver turns free text, URLs or slugs into a ranked list of
// markets. Strategies are tried in a fixed order (slug lookup, full-text
// search, tag browse, paginated scan) and the first non-empty result wins.
// Upstream failures only empty the tier they occur in.
type MarketResolver struct {
	catalog domain.Catalog
	tags    *TagResolver
	slugs   *query.SlugExtractor
	cfg     config.SearchConfig
	logger  *slog.Logger
	now     func() time.Time
	tiers   []tier
}

// NewMarketResolver creates a MarketResolver with all required dependencies.
func NewMarketResolver(
	catalog domain.Catalog,
	tags *TagResolver,
	slugs *query.SlugExtractor,
	cfg config.SearchConfig,
	logger *slog.Logger,
) *MarketResolver {
	r := &MarketResolver{
		catalog: catalog,
		tags:    tags,
		slugs:   slugs,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "market_resolver")),
		now:     time.Now,
	}
	r.tiers = []tier{
		{name: TierSlug, run: r.bySlug},
		{name: TierSearch, run: r.bySearch},
		{name: TierTag, run: r.byTag},
		{name: TierScan, run: r.byScan},
	}
	return r
}

// Resolve returns up to limit markets for input, best first. A non-positive
// limit uses the configured default.
func (r *MarketResolver) Resolve(ctx context.Context, input string, limit int) Resolution {
	raw := strings.TrimSpace(input)
	if limit <= 0 {
		limit = r.cfg.DefaultLimit
	}
	res := Resolution{
		Query:   raw,
		Keyword: query.Sanitize(raw),
		Markets: []domain.Market{},
	}
	if raw == "" {
		return res
	}

	in := resolveInput{raw: raw, keyword: res.Keyword, limit: limit, now: r.now()}
	for _, t := range r.tiers {
		if ctx.Err() != nil {
			break
		}
		markets := t.run(ctx, in)
		if len(markets) == 0 {
			r.logger.DebugContext(ctx, "market_resolver: tier empty",
				slog.String("tier", t.name),
				slog.String("keyword", in.keyword),
			)
			continue
		}
		res.Tier = t.name
		res.Markets = markets
		r.logger.DebugContext(ctx, "market_resolver: resolved",
			slog.String("tier", t.name),
			slog.String("keyword", in.keyword),
			slog.Int("count", len(markets)),
		)
		return res
	}
	return res
}

// bySlug looks up an explicit slug or URL. A single hit is returned as is;
// several hits are ranked against the slug text. Liveness is not checked:
// a user naming a market directly gets it even when it has closed.
func (r *MarketResolver) bySlug(ctx context.Context, in resolveInput) []domain.Market {
	slug, ok := r.slugs.Extract(in.raw)
	if !ok {
		slug, ok = r.slugs.Extract(in.keyword)
	}
	if !ok {
		return nil
	}

	markets, err := r.catalog.MarketsBySlug(ctx, slug)
	if err != nil {
		r.degraded(ctx, TierSlug, err)
	}
	cands := dedupMarkets(markets)
	if len(cands) == 0 {
		events, err := r.catalog.EventsBySlug(ctx, slug)
		if err != nil {
			r.degraded(ctx, TierSlug, err)
		}
		cands = dedupMarkets(flattenEvents(events))
	}

	if len(cands) <= 1 {
		return cands
	}
	return rankMarkets(cands, query.Normalize(slug), in.limit)
}

// bySearch uses the catalog's full-text search. Live markets are preferred;
// if none of the hits is live, the unfiltered hits are ranked instead.
func (r *MarketResolver) bySearch(ctx context.Context, in resolveInput) []domain.Market {
	events, err := r.catalog.PublicSearch(ctx, domain.SearchQuery{
		Query:        in.keyword,
		EventsStatus: r.cfg.SearchEventsStatus,
		LimitPerType: r.cfg.SearchLimitPerType,
		SearchTags:   true,
		Page:         1,
		Sort:         r.cfg.SearchSort,
		Ascending:    false,
	})
	if err != nil {
		r.degraded(ctx, TierSearch, err)
		return nil
	}

	cands := dedupMarkets(flattenEvents(events))
	if live := liveMarkets(cands, in.now); len(live) > 0 {
		cands = live
	}
	return rankMarkets(cands, in.keyword, in.limit)
}

// byTag browses the open events of the tag matching the keyword, in catalog
// order.
func (r *MarketResolver) byTag(ctx context.Context, in resolveInput) []domain.Market {
	tag, ok := r.tags.Resolve(ctx, in.keyword)
	if !ok {
		return nil
	}

	events, err := r.catalog.ListEvents(ctx, domain.EventQuery{
		Active:      true,
		Closed:      false,
		Limit:       r.cfg.ScanPageSize,
		TagID:       tag.ID,
		RelatedTags: true,
	})
	if err != nil {
		r.degraded(ctx, TierTag, err)
		return nil
	}

	cands := liveMarkets(dedupMarkets(flattenEvents(events)), in.now)
	return truncateMarkets(cands, in.limit)
}

// byScan pages through open events by 24h volume and matches keyword tokens
// against each market's question and event. Markets containing every token
// are preferred; partial matches are only used when there are none, at a
// reduced score.
func (r *MarketResolver) byScan(ctx context.Context, in resolveInput) []domain.Market {
	tokens := query.Tokens(in.keyword)
	if len(tokens) == 0 {
		return nil
	}

	pageSize := r.cfg.ScanPageSize
	enough := r.cfg.ScanEarlyStopFactor * in.limit
	seen := make(map[string]struct{})
	var full, loose []domain.ScoredCandidate

	for page := 0; page < r.cfg.ScanMaxPages; page++ {
		events, err := r.catalog.ListEvents(ctx, domain.EventQuery{
			Active:    true,
			Closed:    false,
			Order:     "volume24hr",
			Ascending: false,
			Limit:     pageSize,
			Offset:    page * pageSize,
		})
		if err != nil {
			r.degraded(ctx, TierScan, err)
			break
		}

		for _, ev := range events {
			for _, m := range ev.Markets {
				if m.Question == "" || !m.IsLive(in.now) {
					continue
				}
				if _, dup := seen[m.ID]; dup {
					continue
				}

				hay := query.TokenSet(m.Question + " " + m.EventTitle + " " + m.EventSlug)
				matched := 0
				for _, tok := range tokens {
					if _, ok := hay[tok]; ok {
						matched++
					}
				}
				switch {
				case matched == len(tokens):
					seen[m.ID] = struct{}{}
					full = append(full, domain.ScoredCandidate{Market: m, Score: ScoreMarket(m, in.keyword)})
				case matched > 0:
					seen[m.ID] = struct{}{}
					loose = append(loose, domain.ScoredCandidate{
						Market: m,
						Score:  ScoreMarket(m, in.keyword) * r.cfg.LooseMatchWeight,
					})
				}
			}
		}

		if len(full) >= enough || len(events) < pageSize {
			break
		}
	}

	pool := full
	if len(pool) == 0 {
		pool = loose
	}
	return topCandidates(pool, in.limit)
}

// degraded logs a failed catalog call. Missing slugs are routine and only
// logged at debug level.
func (r *MarketResolver) degraded(ctx context.Context, tierName string, err error) {
	level := slog.LevelWarn
	if errors.Is(err, domain.ErrNotFound) {
		level = slog.LevelDebug
	}
	r.logger.Log(ctx, level, "market_resolver: catalog fetch failed",
		slog.String("tier", tierName),
		slog.String("error", err.Error()),
	)
}

func liveMarkets(markets []domain.Market, now time.Time) []domain.Market {
	out := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if m.IsLive(now) {
			out = append(out, m)
		}
	}
	return out
}
