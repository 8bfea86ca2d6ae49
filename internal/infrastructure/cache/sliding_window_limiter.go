package cache

import (
	"context"
	"sync"
	"time"
)

// SlidingWindowLimiter counts requests per key over a trailing window.
// It is process local; multi-instance deployments use RedisSlidingWindowLimiter.
type SlidingWindowLimiter struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	max     int
	window  time.Duration
	maxKeys int
	now     func() time.Time

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewSlidingWindowLimiter allows max requests per key per window and tracks
// at most maxKeys keys. It starts a janitor that drops idle keys.
func NewSlidingWindowLimiter(max int, window time.Duration, maxKeys int) *SlidingWindowLimiter {
	l := &SlidingWindowLimiter{
		hits:     make(map[string][]time.Time),
		max:      max,
		window:   window,
		maxKeys:  maxKeys,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Allow records a request for key and reports whether it is within budget.
// Rejected requests are not recorded.
func (l *SlidingWindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.prune(l.hits[key], now)
	if len(recent) >= l.max {
		l.hits[key] = recent
		return false, nil
	}

	if _, tracked := l.hits[key]; !tracked && l.maxKeys > 0 && len(l.hits) >= l.maxKeys {
		l.evictOldest()
	}
	l.hits[key] = append(recent, now)
	return true, nil
}

// prune drops timestamps that fell out of the window. Caller holds mu.
func (l *SlidingWindowLimiter) prune(times []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}

// evictOldest removes the key whose last request is the oldest. Caller holds mu.
func (l *SlidingWindowLimiter) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, times := range l.hits {
		last := time.Time{}
		if len(times) > 0 {
			last = times[len(times)-1]
		}
		if oldestKey == "" || last.Before(oldest) {
			oldestKey, oldest = key, last
		}
	}
	delete(l.hits, oldestKey)
}

// Close stops the janitor. Safe to call multiple times.
func (l *SlidingWindowLimiter) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *SlidingWindowLimiter) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

// cleanup removes keys with no request inside the window
func (l *SlidingWindowLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, times := range l.hits {
		if recent := l.prune(times, now); len(recent) == 0 {
			delete(l.hits, key)
		} else {
			l.hits[key] = recent
		}
	}
}

// Size returns the number of tracked keys (for testing/monitoring)
func (l *SlidingWindowLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}
