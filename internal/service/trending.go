package service

import (
	"context"
	"log/slog"

	"github.com/alanyoungcy/polylens/internal/config"
	"github.com/alanyoungcy/polylens/internal/domain"
)

// defaultListLimit applies when a caller passes a non-positive limit.
const defaultListLimit = 10

// TrendingSelector picks the markets worth showing on a front page: the most
// active events, one tradeable market each.
type TrendingSelector struct {
	catalog domain.Catalog
	cfg     config.TrendingConfig
	logger  *slog.Logger
}

// NewTrendingSelector creates a TrendingSelector.
func NewTrendingSelector(catalog domain.Catalog, cfg config.TrendingConfig, logger *slog.Logger) *TrendingSelector {
	return &TrendingSelector{
		catalog: catalog,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "trending")),
	}
}

// Trending returns up to limit markets from the events with the highest 24h
// volume. From each event only its most popular eligible market is kept, so
// a multi-candidate election cannot fill the whole list.
func (s *TrendingSelector) Trending(ctx context.Context, limit int) []domain.Market {
	if limit <= 0 {
		limit = defaultListLimit
	}

	events, err := s.catalog.ListEvents(ctx, domain.EventQuery{
		Active:    true,
		Closed:    false,
		Order:     "volume24hr",
		Ascending: false,
		Limit:     max(s.cfg.MinEvents, 2*limit),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "trending: list events failed",
			slog.String("error", err.Error()),
		)
		return []domain.Market{}
	}

	out := make([]domain.Market, 0, limit)
	seen := make(map[string]struct{}, limit)
	for _, ev := range events {
		var best *domain.Market
		for i := range ev.Markets {
			m := &ev.Markets[i]
			if !s.eligible(*m) {
				continue
			}
			if best == nil || m.Popularity() > best.Popularity() {
				best = m
			}
		}
		if best == nil {
			continue
		}
		if _, dup := seen[best.ID]; dup {
			continue
		}
		seen[best.ID] = struct{}{}
		out = append(out, *best)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// Recent returns up to limit open markets in catalog order.
func (s *TrendingSelector) Recent(ctx context.Context, limit int) []domain.Market {
	if limit <= 0 {
		limit = defaultListLimit
	}

	markets, err := s.catalog.ListMarkets(ctx, limit, false)
	if err != nil {
		s.logger.WarnContext(ctx, "trending: list markets failed",
			slog.String("error", err.Error()),
		)
		return []domain.Market{}
	}
	return truncateMarkets(dedupMarkets(markets), limit)
}

// eligible reports whether m is tradeable and still undecided: it accepts
// orders, has enough liquidity when the catalog reports any, and at least
// one outcome is priced away from certainty.
func (s *TrendingSelector) eligible(m domain.Market) bool {
	if m.Question == "" || !m.AcceptingOrders {
		return false
	}
	if m.HasLiquidity && m.Liquidity < s.cfg.MinLiquidity {
		return false
	}
	return s.undecided(m.YesPrice()) || s.undecided(m.NoPrice())
}

func (s *TrendingSelector) undecided(p float64) bool {
	return p >= s.cfg.PriceFloor && p <= s.cfg.PriceCeiling
}
