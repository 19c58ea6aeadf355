package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/polylens/internal/cache/memory"
	"github.com/alanyoungcy/polylens/internal/cache/redis"
	"github.com/alanyoungcy/polylens/internal/config"
	"github.com/alanyoungcy/polylens/internal/domain"
	"github.com/alanyoungcy/polylens/internal/platform/polymarket"
	"github.com/alanyoungcy/polylens/internal/query"
	"github.com/alanyoungcy/polylens/internal/server/handler"
	"github.com/alanyoungcy/polylens/internal/service"
)

// Services bundles the catalog clients and the query services built on them.
// Building it performs no I/O.
type Services struct {
	Catalog  domain.Catalog
	Trades   domain.TradeSource
	Tags     *service.TagResolver
	Resolver *service.MarketResolver
	Trending *service.TrendingSelector
	History  *service.HistorySampler
}

// NewServices builds the upstream clients and services from cfg.
func NewServices(cfg *config.Config, logger *slog.Logger) *Services {
	opts := polymarket.Options{
		UserAgent: cfg.Polymarket.UserAgent,
		Timeout:   cfg.Polymarket.HTTPTimeout.Duration,
	}
	catalog := polymarket.NewGammaClient(cfg.Polymarket.GammaHost, opts)
	trades := polymarket.NewDataClient(cfg.Polymarket.DataHost, opts)

	tags := service.NewTagResolver(catalog, logger)
	return &Services{
		Catalog: catalog,
		Trades:  trades,
		Tags:    tags,
		Resolver: service.NewMarketResolver(
			catalog,
			tags,
			query.NewSlugExtractor(cfg.Polymarket.PublicDomain),
			cfg.Search,
			logger,
		),
		Trending: service.NewTrendingSelector(catalog, cfg.Trending, logger),
		History:  service.NewHistorySampler(trades, cfg.History, logger),
	}
}

// Dependencies adds the serve-time infrastructure to Services.
type Dependencies struct {
	*Services

	SignalBus   domain.SignalBus
	RateLimiter domain.RateLimiter // nil when Redis is disabled
	Health      map[string]handler.HealthCheck
}

// Wire constructs every dependency the API server needs and returns them
// with a cleanup function that releases external connections.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Services: NewServices(cfg, logger),
		Health:   map[string]handler.HealthCheck{},
	}

	if !cfg.Redis.Enabled {
		logger.InfoContext(ctx, "redis disabled: rate limiting off, in-process signal bus")
		deps.SignalBus = memory.NewSignalBus()
		return deps, cleanup, nil
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.SignalBus = redis.NewSignalBus(redisClient)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.Health["redis"] = redisClient.Ping

	return deps, cleanup, nil
}
