package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polylens/internal/config"
)

// newTestClient connects to POLYLENS_TEST_REDIS_ADDR, skipping when unset.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("POLYLENS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("POLYLENS_TEST_REDIS_ADDR not set")
	}
	cfg := config.Defaults().Redis
	cfg.Addr = addr

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	c := newTestClient(t)
	rl := NewRateLimiter(c)
	ctx := context.Background()
	key := "test:" + t.Name() + ":" + time.Now().Format(time.RFC3339Nano)

	base := time.Now()
	rl.now = func() time.Time { return base }
	for i := range 3 {
		ok, err := rl.Allow(ctx, key, 3, time.Second)
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, err := rl.Allow(ctx, key, 3, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	rl.now = func() time.Time { return base.Add(1100 * time.Millisecond) }
	ok, err = rl.Allow(ctx, key, 3, time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "window has slid past the earlier requests")
}

func TestRateLimiter_DisabledLimit(t *testing.T) {
	rl := &RateLimiter{}
	ok, err := rl.Allow(context.Background(), "k", 0, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignalBus_PublishSubscribe(t *testing.T) {
	c := newTestClient(t)
	bus := NewSignalBus(c)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, "test-trending")
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, "test-trending", []byte(`{"type":"trending"}`)))

	select {
	case got := <-ch:
		assert.JSONEq(t, `{"type":"trending"}`, string(got))
	case <-time.After(3 * time.Second):
		t.Fatal("no message received")
	}

	cancel()
	for range ch {
	}
}

func TestNew_UnreachableServer(t *testing.T) {
	cfg := config.Defaults().Redis
	cfg.Addr = "127.0.0.1:1"
	cfg.MaxRetries = -1

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := New(ctx, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: ping 127.0.0.1:1")
}
