package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, max, maxKeys int) (*SlidingWindowLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 18, 10, 0, 0, 0, time.UTC)}
	l := NewSlidingWindowLimiter(max, time.Minute, maxKeys)
	l.now = clock.Now
	t.Cleanup(func() { _ = l.Close() })
	return l, clock
}

func TestSlidingWindowLimiter_Allow(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to max then rejects", func(t *testing.T) {
		l, _ := newTestLimiter(t, 3, 100)
		for i := 0; i < 3; i++ {
			ok, err := l.Allow(ctx, "T1")
			require.NoError(t, err)
			assert.True(t, ok, "request %d should pass", i+1)
		}
		ok, err := l.Allow(ctx, "T1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("keys are independent", func(t *testing.T) {
		l, _ := newTestLimiter(t, 1, 100)
		ok, _ := l.Allow(ctx, "T1")
		assert.True(t, ok)
		ok, _ = l.Allow(ctx, "T2")
		assert.True(t, ok)
		ok, _ = l.Allow(ctx, "T1")
		assert.False(t, ok)
	})

	t.Run("window slides", func(t *testing.T) {
		l, clock := newTestLimiter(t, 2, 100)
		ok, _ := l.Allow(ctx, "T1")
		assert.True(t, ok)
		clock.Advance(30 * time.Second)
		ok, _ = l.Allow(ctx, "T1")
		assert.True(t, ok)
		ok, _ = l.Allow(ctx, "T1")
		assert.False(t, ok)

		// first hit leaves the window
		clock.Advance(31 * time.Second)
		ok, _ = l.Allow(ctx, "T1")
		assert.True(t, ok)
		ok, _ = l.Allow(ctx, "T1")
		assert.False(t, ok)
	})

	t.Run("rejected requests do not extend the block", func(t *testing.T) {
		l, clock := newTestLimiter(t, 1, 100)
		ok, _ := l.Allow(ctx, "T1")
		assert.True(t, ok)
		for i := 0; i < 5; i++ {
			clock.Advance(10 * time.Second)
			ok, _ = l.Allow(ctx, "T1")
			assert.False(t, ok)
		}
		clock.Advance(11 * time.Second)
		ok, _ = l.Allow(ctx, "T1")
		assert.True(t, ok)
	})

	t.Run("bounded key count evicts the stalest key", func(t *testing.T) {
		l, clock := newTestLimiter(t, 1, 2)
		l.Allow(ctx, "A")
		clock.Advance(time.Second)
		l.Allow(ctx, "B")
		clock.Advance(time.Second)
		l.Allow(ctx, "C")

		assert.Equal(t, 2, l.Size())
		ok, _ := l.Allow(ctx, "A")
		assert.True(t, ok, "A was evicted so its budget is fresh")
	})
}

func TestSlidingWindowLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(t, 5, 100)
	ctx := context.Background()

	l.Allow(ctx, "T1")
	l.Allow(ctx, "T2")
	assert.Equal(t, 2, l.Size())

	clock.Advance(2 * time.Minute)
	l.cleanup()
	assert.Equal(t, 0, l.Size())
}

func TestSlidingWindowLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, 50, 100)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow(ctx, "T1"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestSlidingWindowLimiter_CloseIsIdempotent(t *testing.T) {
	l := NewSlidingWindowLimiter(1, time.Minute, 10)
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}
