package cache

import (
	"context"
	"fmt"
	"time"

	apppos "github.com/erp/posgateway/internal/application/pos"
	"github.com/erp/posgateway/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RateLimiterFactory creates the terminal rate limiter based on configuration
type RateLimiterFactory struct {
	posConfig             config.POSConfig
	client                *redis.Client
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RateLimiterFactoryOption is a functional option for configuring the factory
type RateLimiterFactoryOption func(*RateLimiterFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RateLimiterFactoryOption {
	return func(f *RateLimiterFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether a redis backend without a client
// degrades to the in-memory limiter. Default is true.
func WithInMemoryFallback(allow bool) RateLimiterFactoryOption {
	return func(f *RateLimiterFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRateLimiterFactory creates a new factory. client may be nil when redis is disabled.
func NewRateLimiterFactory(cfg config.POSConfig, client *redis.Client, opts ...RateLimiterFactoryOption) *RateLimiterFactory {
	f := &RateLimiterFactory{
		posConfig:             cfg,
		client:                client,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateLimiter returns the configured limiter. In-memory limiters own a
// janitor goroutine; callers stop it through io.Closer.
func (f *RateLimiterFactory) CreateLimiter() (apppos.RateLimiter, error) {
	cfg := f.posConfig
	if cfg.RateLimitBackend == "redis" {
		if f.client != nil {
			f.logger.Info("using Redis terminal rate limiter")
			return NewRedisSlidingWindowLimiter(f.client, cfg.RateLimitMax, cfg.RateLimitWindow), nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis rate limiter configured but no redis client available")
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory rate limiter. " +
			"Limits are enforced per instance.")
	}
	return NewSlidingWindowLimiter(cfg.RateLimitMax, cfg.RateLimitWindow, cfg.RateLimitMaxKeys), nil
}

// Ensure limiters implement RateLimiter
var (
	_ apppos.RateLimiter      = (*SlidingWindowLimiter)(nil)
	_ apppos.RateLimiter      = (*RedisSlidingWindowLimiter)(nil)
	_ apppos.SaleLocker       = (*RedisSaleLocker)(nil)
	_ apppos.SettingsProvider = (*SettingsProvider)(nil)
)
