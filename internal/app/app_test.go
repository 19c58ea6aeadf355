package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polylens/internal/cache/memory"
	"github.com/alanyoungcy/polylens/internal/config"
	"github.com/alanyoungcy/polylens/internal/service"
)

const searchBody = `{"events":[{"id":"e1","title":"Crypto","slug":"crypto","markets":[
  {"id":"m1","question":"Bitcoin up in March?","conditionId":"0xc1",
   "outcomePrices":"[\"0.6\",\"0.4\"]","volume24hr":1200,"active":true,"closed":false,"acceptingOrders":true}
]}]}`

const tradesBody = `[
  {"conditionId":"0xc1","outcomeIndex":0,"timestamp":200,"price":0.62,"size":5,"side":"BUY"},
  {"conditionId":"0xc1","outcomeIndex":1,"timestamp":150,"price":0.38,"size":5,"side":"SELL"},
  {"conditionId":"0xc1","outcomeIndex":0,"timestamp":100,"price":0.55,"size":5,"side":"BUY"}
]`

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /markets/slug/{slug}", http.NotFound)
	mux.HandleFunc("GET /events/slug/{slug}", http.NotFound)
	mux.HandleFunc("GET /public-search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchBody)
	})
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("GET /trades", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, tradesBody)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func testConfig(upstream string) *config.Config {
	cfg := config.Defaults()
	cfg.Polymarket.GammaHost = upstream
	cfg.Polymarket.DataHost = upstream
	return &cfg
}

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestNewServices_ResolveThenHistory(t *testing.T) {
	up := newUpstream(t)
	svc := NewServices(testConfig(up.URL), discardLogger())
	ctx := context.Background()

	res := svc.Resolver.Resolve(ctx, "bitcoin up", 5)
	require.Equal(t, service.TierSearch, res.Tier)
	best, ok := res.Best()
	require.True(t, ok)
	assert.Equal(t, "m1", best.ID)
	assert.Equal(t, "Crypto", best.EventTitle)
	assert.InDelta(t, 0.6, best.YesPrice(), 1e-9)

	points := svc.History.History(ctx, best.ConditionID)
	require.Len(t, points, 1, "stride 4 keeps only the newest YES trade")
	assert.Equal(t, int64(200), points[0].Timestamp)
	assert.InDelta(t, 0.62, points[0].Price, 1e-9)
}

func TestWire_WithoutRedis(t *testing.T) {
	up := newUpstream(t)
	deps, cleanup, err := Wire(context.Background(), testConfig(up.URL), discardLogger())
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &memory.SignalBus{}, deps.SignalBus)
	assert.Nil(t, deps.RateLimiter)
	assert.Empty(t, deps.Health)
	assert.NotNil(t, deps.Resolver)
}

func TestWire_RedisUnreachable(t *testing.T) {
	cfg := config.Defaults()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = "127.0.0.1:1"
	cfg.Redis.MaxRetries = -1

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := Wire(ctx, &cfg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wire: redis")
}

func TestServe_StopsOnCancel(t *testing.T) {
	up := newUpstream(t)
	cfg := testConfig(up.URL)
	cfg.Server.Port = 0

	a := New(cfg, discardLogger())
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
