// Package feed periodically recomputes derived views and publishes them on
// the signal bus for WebSocket fan-out.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/polylens/internal/config"
	"github.com/alanyoungcy/polylens/internal/domain"
)

// TrendingSource produces the current trending list.
type TrendingSource interface {
	Trending(ctx context.Context, limit int) []domain.Market
}

// TrendingFeed publishes a trending snapshot on domain.ChannelTrending once
// at start and then every broadcast interval.
type TrendingFeed struct {
	source TrendingSource
	bus    domain.SignalBus
	cfg    config.TrendingConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewTrendingFeed creates a TrendingFeed.
func NewTrendingFeed(source TrendingSource, bus domain.SignalBus, cfg config.TrendingConfig, logger *slog.Logger) *TrendingFeed {
	return &TrendingFeed{
		source: source,
		bus:    bus,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "trending_feed")),
		now:    time.Now,
	}
}

// Run publishes until ctx is cancelled. Publish failures are logged and the
// next tick retries.
func (f *TrendingFeed) Run(ctx context.Context) error {
	f.logger.Info("trending feed started",
		slog.Duration("interval", f.cfg.BroadcastInterval.Duration),
		slog.Int("limit", f.cfg.BroadcastLimit),
	)
	defer f.logger.Info("trending feed stopped")

	ticker := time.NewTicker(f.cfg.BroadcastInterval.Duration)
	defer ticker.Stop()

	for {
		if err := f.PublishOnce(ctx); err != nil && ctx.Err() == nil {
			f.logger.Warn("feed: publish trending failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// PublishOnce computes one snapshot and publishes it.
func (f *TrendingFeed) PublishOnce(ctx context.Context) error {
	snap := domain.TrendingSnapshot{
		Markets:     f.source.Trending(ctx, f.cfg.BroadcastLimit),
		GeneratedAt: f.now().UTC(),
	}
	data, err := json.Marshal(domain.Envelope{Type: domain.EnvelopeTrending, Payload: snap})
	if err != nil {
		return fmt.Errorf("feed: marshal snapshot: %w", err)
	}
	if err := f.bus.Publish(ctx, domain.ChannelTrending, data); err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	f.logger.Debug("trending snapshot published", slog.Int("markets", len(snap.Markets)))
	return nil
}
