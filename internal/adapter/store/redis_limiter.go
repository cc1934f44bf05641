package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const usageWindow = 24 * time.Hour

// RedisLimiter tracks token usage per chat session against a fixed budget.
// Counters expire on a rolling window so stale sessions free their budget.
type RedisLimiter struct {
	client *redis.Client
	limit  int
}

func NewRedisLimiter(client *redis.Client, limit int) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit}
}

func (r *RedisLimiter) CheckLimit(ctx context.Context, sessionID string) (bool, error) {
	val, err := r.client.Get(ctx, usageKey(sessionID)).Result()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	usage, _ := strconv.Atoi(val)
	return usage < r.limit, nil
}

func (r *RedisLimiter) Increment(ctx context.Context, sessionID string, tokens int) error {
	pipe := r.client.TxPipeline()
	pipe.IncrBy(ctx, usageKey(sessionID), int64(tokens))
	pipe.Expire(ctx, usageKey(sessionID), usageWindow)
	_, err := pipe.Exec(ctx)
	return err
}

func usageKey(sessionID string) string {
	return "usage:session:" + sessionID
}
