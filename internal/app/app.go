// Package app wires the catalog clients, query services, optional Redis
// infrastructure and the API server, and runs them for the serve command.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polylens/internal/config"
	"github.com/alanyoungcy/polylens/internal/feed"
	"github.com/alanyoungcy/polylens/internal/server"
	"github.com/alanyoungcy/polylens/internal/server/handler"
	"github.com/alanyoungcy/polylens/internal/server/ws"
)

const shutdownTimeout = 10 * time.Second

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Serve wires dependencies and runs the HTTP API, the WebSocket hub and the
// trending feed until ctx is cancelled or one of them fails.
func (a *App) Serve(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting api server",
		slog.Int("port", a.cfg.Server.Port),
		slog.Bool("redis", a.cfg.Redis.Enabled),
		slog.String("log_level", a.cfg.LogLevel),
	)
	a.logger.DebugContext(ctx, "active configuration", slog.Any("config", config.RedactedConfig(a.cfg)))

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	g, ctx := errgroup.WithContext(ctx)

	hub := ws.NewHub(deps.SignalBus, a.cfg.Server.CORSOrigins, a.logger)
	g.Go(func() error { return hub.Run(ctx) })

	trendingFeed := feed.NewTrendingFeed(deps.Trending, deps.SignalBus, a.cfg.Trending, a.logger)
	g.Go(func() error { return trendingFeed.Run(ctx) })

	srv := server.NewServer(a.cfg.Server, server.Handlers{
		Health:  handler.NewHealthHandler(deps.Health, a.logger),
		Markets: handler.NewMarketHandler(deps.Resolver, deps.Trending, deps.History, a.logger),
	}, hub, deps.RateLimiter, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
