package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSlidingWindowLimiter keeps one sorted set per key, scored by request
// time in milliseconds, so every instance shares the same window.
type RedisSlidingWindowLimiter struct {
	client    *redis.Client
	keyPrefix string
	max       int
	window    time.Duration
	now       func() time.Time
}

// NewRedisSlidingWindowLimiter creates a limiter on an existing client
func NewRedisSlidingWindowLimiter(client *redis.Client, max int, window time.Duration) *RedisSlidingWindowLimiter {
	return &RedisSlidingWindowLimiter{
		client:    client,
		keyPrefix: "pos:ratelimit:",
		max:       max,
		window:    window,
		now:       time.Now,
	}
}

// Allow records a request for key and reports whether it is within budget.
// A rejected request is removed again so it does not extend the block.
func (l *RedisSlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.keyPrefix + key
	now := l.now()
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()
	cutoff := now.Add(-l.window).UnixMilli()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(cutoff, 10))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMilli()), Member: member})
	count := pipe.ZCard(ctx, redisKey)
	pipe.PExpire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit pipeline: %w", err)
	}

	if count.Val() <= int64(l.max) {
		return true, nil
	}
	if err := l.client.ZRem(ctx, redisKey, member).Err(); err != nil {
		return false, fmt.Errorf("rate limit rollback: %w", err)
	}
	return false, nil
}
