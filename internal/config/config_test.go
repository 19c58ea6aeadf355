package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, 100, cfg.Search.ScanPageSize)
	assert.Equal(t, 20, cfg.Search.ScanMaxPages)
	assert.Equal(t, 3, cfg.Search.ScanEarlyStopFactor)
	assert.InDelta(t, 0.7, cfg.Search.LooseMatchWeight, 1e-9)
	assert.Equal(t, 20, cfg.Trending.MinEvents)
	assert.InDelta(t, 5000, cfg.Trending.MinLiquidity, 1e-9)
	assert.Equal(t, 200, cfg.History.TradeLimit)
	assert.Equal(t, 4, cfg.History.Stride)
	assert.Equal(t, 50, cfg.History.MaxPoints)
	assert.Equal(t, 30*time.Second, cfg.Polymarket.HTTPTimeout.Duration)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().Polymarket.GammaHost, cfg.Polymarket.GammaHost)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeFile(t, `
log_level = "debug"

[search]
default_limit = 5
loose_match_weight = 0.5

[trending]
broadcast_interval = "15s"

[redis]
enabled = true
password = "from-file"
`)
	t.Setenv("POLYLENS_REDIS_PASSWORD", "from-env")
	t.Setenv("POLYLENS_SERVER_CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("POLYLENS_HISTORY_STRIDE", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5, cfg.Search.DefaultLimit)
	assert.InDelta(t, 0.5, cfg.Search.LooseMatchWeight, 1e-9)
	assert.Equal(t, 100, cfg.Search.ScanPageSize, "unset keys keep defaults")
	assert.Equal(t, 15*time.Second, cfg.Trending.BroadcastInterval.Duration)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "from-env", cfg.Redis.Password)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 4, cfg.History.Stride, "unparsable env values are ignored")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "[search]\nno_such_key = 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.no_such_key")
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "loud"
	cfg.Search.DefaultLimit = 0
	cfg.Search.LooseMatchWeight = 2
	cfg.History.Stride = 0
	cfg.Server.Port = 70000
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"log_level", "default_limit", "loose_match_weight", "stride", "port", "redis: addr"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Password = "secret"
	cfg.Server.APIKey = "key"

	out := RedactedConfig(&cfg)
	assert.Equal(t, "***", out.Redis.Password)
	assert.Equal(t, "***", out.Server.APIKey)
	assert.Equal(t, "secret", cfg.Redis.Password)

	out.Server.CORSOrigins[0] = "changed"
	assert.NotEqual(t, "changed", cfg.Server.CORSOrigins[0])
}

func TestExampleFileMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}
