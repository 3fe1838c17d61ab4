package httpmiddleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window per-key counter shared across instances.
// Window state lives in redis under one key per client per minute.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a limiter allowing perMinute requests per key.
func NewRedisLimiter(client *redis.Client, perMinute int) *RedisLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RedisLimiter{client: client, limit: perMinute, window: time.Minute}
}

// Allow increments the client's window counter and admits while it stays
// within the limit. Redis being unreachable fails open: rate limiting is
// protection, not an availability dependency.
func (l *RedisLimiter) Allow(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	bucket := "ratelimit:" + key + ":" + time.Now().UTC().Format("200601021504")
	count, err := l.client.Incr(ctx, bucket).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		l.client.Expire(ctx, bucket, l.window)
	}
	return count <= int64(l.limit)
}
