package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSaleLocker serializes work on one transaction id across instances
type RedisSaleLocker struct {
	locker    *redislock.Client
	keyPrefix string
	ttl       time.Duration
	retry     time.Duration
	logger    *zap.Logger
}

// NewRedisSaleLocker creates a locker whose locks expire after ttl
func NewRedisSaleLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisSaleLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSaleLocker{
		locker:    redislock.New(client),
		keyPrefix: "pos:lock:sale:",
		ttl:       ttl,
		retry:     50 * time.Millisecond,
		logger:    logger,
	}
}

// Acquire waits for the lock until ctx is done
func (l *RedisSaleLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := l.keyPrefix + key
	lock, err := l.locker.Obtain(ctx, lockKey, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.retry),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("lock %s busy: %w", lockKey, err)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", lockKey, err)
	}

	return func() {
		// the request context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("Failed to release sale lock", zap.String("key", lockKey), zap.Error(err))
		}
	}, nil
}
