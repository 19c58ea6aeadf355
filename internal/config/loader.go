package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load merges the TOML file at path on top of the built-in defaults, applies
// POLYLENS_* environment variable overrides, and returns the final Config. An
// empty path skips the file. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return nil, fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// FileExists reports whether path names a readable regular file.
func FileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// applyEnvOverrides reads well-known POLYLENS_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "POLYLENS_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.DataHost, "POLYLENS_POLYMARKET_DATA_HOST")
	setStr(&cfg.Polymarket.PublicDomain, "POLYLENS_POLYMARKET_PUBLIC_DOMAIN")
	setStr(&cfg.Polymarket.UserAgent, "POLYLENS_POLYMARKET_USER_AGENT")
	setDuration(&cfg.Polymarket.HTTPTimeout, "POLYLENS_POLYMARKET_HTTP_TIMEOUT")

	// ── Search ──
	setInt(&cfg.Search.DefaultLimit, "POLYLENS_SEARCH_DEFAULT_LIMIT")
	setInt(&cfg.Search.SearchLimitPerType, "POLYLENS_SEARCH_LIMIT_PER_TYPE")
	setStr(&cfg.Search.SearchEventsStatus, "POLYLENS_SEARCH_EVENTS_STATUS")
	setStr(&cfg.Search.SearchSort, "POLYLENS_SEARCH_SORT")
	setInt(&cfg.Search.ScanPageSize, "POLYLENS_SEARCH_SCAN_PAGE_SIZE")
	setInt(&cfg.Search.ScanMaxPages, "POLYLENS_SEARCH_SCAN_MAX_PAGES")
	setInt(&cfg.Search.ScanEarlyStopFactor, "POLYLENS_SEARCH_SCAN_EARLY_STOP_FACTOR")
	setFloat64(&cfg.Search.LooseMatchWeight, "POLYLENS_SEARCH_LOOSE_MATCH_WEIGHT")

	// ── Trending ──
	setInt(&cfg.Trending.MinEvents, "POLYLENS_TRENDING_MIN_EVENTS")
	setFloat64(&cfg.Trending.MinLiquidity, "POLYLENS_TRENDING_MIN_LIQUIDITY")
	setFloat64(&cfg.Trending.PriceFloor, "POLYLENS_TRENDING_PRICE_FLOOR")
	setFloat64(&cfg.Trending.PriceCeiling, "POLYLENS_TRENDING_PRICE_CEILING")
	setDuration(&cfg.Trending.BroadcastInterval, "POLYLENS_TRENDING_BROADCAST_INTERVAL")
	setInt(&cfg.Trending.BroadcastLimit, "POLYLENS_TRENDING_BROADCAST_LIMIT")

	// ── History ──
	setInt(&cfg.History.TradeLimit, "POLYLENS_HISTORY_TRADE_LIMIT")
	setInt(&cfg.History.Stride, "POLYLENS_HISTORY_STRIDE")
	setInt(&cfg.History.MaxPoints, "POLYLENS_HISTORY_MAX_POINTS")
	setInt(&cfg.History.YesOutcomeIndex, "POLYLENS_HISTORY_YES_OUTCOME_INDEX")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "POLYLENS_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "POLYLENS_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYLENS_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYLENS_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "POLYLENS_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "POLYLENS_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "POLYLENS_REDIS_TLS_ENABLED")

	// ── Server ──
	setInt(&cfg.Server.Port, "POLYLENS_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "POLYLENS_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "POLYLENS_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "POLYLENS_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "POLYLENS_SERVER_RATE_WINDOW")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "POLYLENS_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
