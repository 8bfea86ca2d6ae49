package cache

import (
	"io"
	"testing"
	"time"

	"github.com/erp/posgateway/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterFactory_CreateLimiter(t *testing.T) {
	cfg := config.POSConfig{
		RateLimitMax:     60,
		RateLimitWindow:  time.Minute,
		RateLimitBackend: "memory",
		RateLimitMaxKeys: 100,
	}

	t.Run("memory backend", func(t *testing.T) {
		limiter, err := NewRateLimiterFactory(cfg, nil).CreateLimiter()
		require.NoError(t, err)
		assert.IsType(t, &SlidingWindowLimiter{}, limiter)
		require.Implements(t, (*io.Closer)(nil), limiter)
		assert.NoError(t, limiter.(io.Closer).Close())
	})

	t.Run("redis backend without client falls back", func(t *testing.T) {
		redisCfg := cfg
		redisCfg.RateLimitBackend = "redis"
		limiter, err := NewRateLimiterFactory(redisCfg, nil).CreateLimiter()
		require.NoError(t, err)
		assert.IsType(t, &SlidingWindowLimiter{}, limiter)
		_ = limiter.(io.Closer).Close()
	})

	t.Run("redis backend without client and no fallback fails", func(t *testing.T) {
		redisCfg := cfg
		redisCfg.RateLimitBackend = "redis"
		_, err := NewRateLimiterFactory(redisCfg, nil, WithInMemoryFallback(false)).CreateLimiter()
		assert.Error(t, err)
	})
}
