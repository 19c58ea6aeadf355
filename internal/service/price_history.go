package service

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/alanyoungcy/polylens/internal/config"
	"github.com/alanyoungcy/polylens/internal/domain"
)

// HistorySampler builds a compact YES-price series for a market from its
// recent trades.
type HistorySampler struct {
	trades domain.TradeSource
	cfg    config.HistoryConfig
	logger *slog.Logger
}

// NewHistorySampler creates a HistorySampler.
func NewHistorySampler(trades domain.TradeSource, cfg config.HistoryConfig, logger *slog.Logger) *HistorySampler {
	return &HistorySampler{
		trades: trades,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "price_history")),
	}
}

// History returns up to MaxPoints (timestamp, price) points in ascending time
// order. Every Stride-th YES trade of the most recent TradeLimit trades is
// sampled. Any failure yields an empty series.
func (h *HistorySampler) History(ctx context.Context, conditionID string) []domain.PricePoint {
	points := []domain.PricePoint{}

	conditionID = strings.TrimSpace(conditionID)
	if conditionID == "" {
		return points
	}

	trades, err := h.trades.Trades(ctx, conditionID, h.cfg.TradeLimit)
	if err != nil {
		h.logger.WarnContext(ctx, "price_history: fetch trades failed",
			slog.String("condition_id", conditionID),
			slog.String("error", err.Error()),
		)
		return points
	}

	yes := make([]domain.Trade, 0, len(trades))
	for _, t := range trades {
		if t.OutcomeIndex == h.cfg.YesOutcomeIndex {
			yes = append(yes, t)
		}
	}

	stride := max(h.cfg.Stride, 1)
	for i := 0; i < len(yes); i += stride {
		if !domain.ValidPrice(yes[i].Price) {
			continue
		}
		points = append(points, domain.PricePoint{Timestamp: yes[i].Timestamp, Price: yes[i].Price})
	}

	slices.SortStableFunc(points, func(a, b domain.PricePoint) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	if n := h.cfg.MaxPoints; n > 0 && len(points) > n {
		points = points[len(points)-n:]
	}
	return points
}
