package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case got := <-ch:
		return got
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for payload")
		return nil
	}
}

func TestSignalBus_FanOut(t *testing.T) {
	bus := NewSignalBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := bus.Subscribe(ctx, "trending")
	require.NoError(t, err)
	b, err := bus.Subscribe(ctx, "trending")
	require.NoError(t, err)
	other, err := bus.Subscribe(ctx, "other")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, "trending", []byte("x")))
	assert.Equal(t, []byte("x"), receive(t, a))
	assert.Equal(t, []byte("x"), receive(t, b))
	assert.Empty(t, other)
}

func TestSignalBus_CancelClosesSubscription(t *testing.T) {
	bus := NewSignalBus()
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := bus.Subscribe(ctx, "trending")
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}

	require.Eventually(t, func() bool {
		bus.mu.RLock()
		defer bus.mu.RUnlock()
		return len(bus.subs) == 0
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, bus.Publish(context.Background(), "trending", []byte("y")))
}

func TestSignalBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewSignalBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := bus.Subscribe(ctx, "trending")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for range subscriberBuffer * 2 {
			_ = bus.Publish(ctx, "trending", []byte("z"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}
