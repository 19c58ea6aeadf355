// Package config defines the top-level configuration for polylens and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from an
// optional TOML file and then overridden by POLYLENS_* environment variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Search     SearchConfig     `toml:"search"`
	Trending   TrendingConfig   `toml:"trending"`
	History    HistoryConfig    `toml:"history"`
	Redis      RedisConfig      `toml:"redis"`
	Server     ServerConfig     `toml:"server"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds the catalog endpoints and HTTP client settings.
type PolymarketConfig struct {
	GammaHost    string   `toml:"gamma_host"`
	DataHost     string   `toml:"data_host"`
	PublicDomain string   `toml:"public_domain"`
	UserAgent    string   `toml:"user_agent"`
	HTTPTimeout  duration `toml:"http_timeout"`
}

// SearchConfig tunes the tiered market resolver.
type SearchConfig struct {
	DefaultLimit       int    `toml:"default_limit"`
	SearchLimitPerType int    `toml:"search_limit_per_type"`
	SearchEventsStatus string `toml:"search_events_status"`
	SearchSort         string `toml:"search_sort"`
	// Scan tier: events per page, page cap, and how many all-token matches
	// (as a multiple of the limit) end the scan early.
	ScanPageSize        int `toml:"scan_page_size"`
	ScanMaxPages        int `toml:"scan_max_pages"`
	ScanEarlyStopFactor int `toml:"scan_early_stop_factor"`
	// LooseMatchWeight scales the score of markets matching only some tokens.
	LooseMatchWeight float64 `toml:"loose_match_weight"`
}

// TrendingConfig tunes trending selection and the periodic broadcast.
type TrendingConfig struct {
	MinEvents         int      `toml:"min_events"`
	MinLiquidity      float64  `toml:"min_liquidity"`
	PriceFloor        float64  `toml:"price_floor"`
	PriceCeiling      float64  `toml:"price_ceiling"`
	BroadcastInterval duration `toml:"broadcast_interval"`
	BroadcastLimit    int      `toml:"broadcast_limit"`
}

// HistoryConfig tunes price history sampling.
type HistoryConfig struct {
	TradeLimit      int `toml:"trade_limit"`
	Stride          int `toml:"stride"`
	MaxPoints       int `toml:"max_points"`
	YesOutcomeIndex int `toml:"yes_outcome_index"`
}

// RedisConfig holds Redis connection parameters. Redis is optional; without
// it rate limiting is off and trending broadcasts stay in-process.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// APIKey, when set, is required on every /api request except health.
	APIKey     string   `toml:"api_key"`
	RateLimit  int      `toml:"rate_limit"`
	RateWindow duration `toml:"rate_window"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost:    "https://gamma-api.polymarket.com",
			DataHost:     "https://data-api.polymarket.com",
			PublicDomain: "polymarket.com",
			UserAgent:    "polylens/1.0",
			HTTPTimeout:  duration{30 * time.Second},
		},
		Search: SearchConfig{
			DefaultLimit:        10,
			SearchLimitPerType:  50,
			SearchEventsStatus:  "active",
			SearchSort:          "volume_24hr",
			ScanPageSize:        100,
			ScanMaxPages:        20,
			ScanEarlyStopFactor: 3,
			LooseMatchWeight:    0.7,
		},
		Trending: TrendingConfig{
			MinEvents:         20,
			MinLiquidity:      5000,
			PriceFloor:        0.05,
			PriceCeiling:      0.95,
			BroadcastInterval: duration{time.Minute},
			BroadcastLimit:    10,
		},
		History: HistoryConfig{
			TradeLimit:      200,
			Stride:          4,
			MaxPoints:       50,
			YesOutcomeIndex: 0,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   120,
			RateWindow:  duration{time.Minute},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Polymarket endpoints
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.DataHost == "" {
		errs = append(errs, "polymarket: data_host must not be empty")
	}
	if c.Polymarket.HTTPTimeout.Duration <= 0 {
		errs = append(errs, "polymarket: http_timeout must be > 0")
	}

	// Search
	if c.Search.DefaultLimit < 1 {
		errs = append(errs, "search: default_limit must be >= 1")
	}
	if c.Search.SearchLimitPerType < 1 {
		errs = append(errs, "search: search_limit_per_type must be >= 1")
	}
	if c.Search.ScanPageSize < 1 {
		errs = append(errs, "search: scan_page_size must be >= 1")
	}
	if c.Search.ScanMaxPages < 1 {
		errs = append(errs, "search: scan_max_pages must be >= 1")
	}
	if c.Search.ScanEarlyStopFactor < 1 {
		errs = append(errs, "search: scan_early_stop_factor must be >= 1")
	}
	if c.Search.LooseMatchWeight < 0 || c.Search.LooseMatchWeight > 1 {
		errs = append(errs, fmt.Sprintf("search: loose_match_weight must be in [0,1], got %g", c.Search.LooseMatchWeight))
	}

	// Trending
	if c.Trending.MinEvents < 1 {
		errs = append(errs, "trending: min_events must be >= 1")
	}
	if c.Trending.PriceFloor < 0 || c.Trending.PriceCeiling > 1 || c.Trending.PriceFloor > c.Trending.PriceCeiling {
		errs = append(errs, "trending: need 0 <= price_floor <= price_ceiling <= 1")
	}
	if c.Trending.BroadcastInterval.Duration <= 0 {
		errs = append(errs, "trending: broadcast_interval must be > 0")
	}
	if c.Trending.BroadcastLimit < 1 {
		errs = append(errs, "trending: broadcast_limit must be >= 1")
	}

	// History
	if c.History.TradeLimit < 1 {
		errs = append(errs, "history: trade_limit must be >= 1")
	}
	if c.History.Stride < 1 {
		errs = append(errs, "history: stride must be >= 1")
	}
	if c.History.MaxPoints < 1 {
		errs = append(errs, "history: max_points must be >= 1")
	}
	if c.History.YesOutcomeIndex != 0 && c.History.YesOutcomeIndex != 1 {
		errs = append(errs, fmt.Sprintf("history: yes_outcome_index must be 0 or 1, got %d", c.History.YesOutcomeIndex))
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "server: rate_limit must be >= 0")
	}
	if c.Server.RateLimit > 0 && c.Server.RateWindow.Duration <= 0 {
		errs = append(errs, "server: rate_window must be > 0 when rate_limit is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
