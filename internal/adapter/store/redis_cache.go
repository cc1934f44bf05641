package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"orchestratai-core/internal/domain/entity"
)

const (
	cacheListKey    = "cag_cache"
	cacheMaxEntries = 1000
)

type cacheRecord struct {
	Embedding []float32           `json:"embedding"`
	Payload   entity.CachePayload `json:"payload"`
}

// RedisCache is the shared semantic cache: a Redis list of
// embedding+payload records, newest first. Set pushes to the front, trims
// the list to cacheMaxEntries, and refreshes one TTL on the whole
// collection; Get scans every entry and returns the first whose cosine
// similarity meets the threshold.
//
// Front-insertion plus trim is approximate LRU (reads do not reorder
// entries), and the lookup is O(store size). Both are deliberate: the
// store is capped small, and replacing the scan with an index only makes
// sense if the cap is revisited too. Concurrent safety comes from Redis
// command atomicity, not an in-process lock, so the store can be shared
// across processes.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, embedding []float32, threshold float64) (*entity.CachePayload, float64, error) {
	items, err := c.client.LRange(ctx, cacheListKey, 0, -1).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("cache range read failed: %w", err)
	}

	for _, raw := range items {
		var rec cacheRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, 0, fmt.Errorf("cache entry decode failed: %w", err)
		}
		if score := cosineSimilarity(rec.Embedding, embedding); score >= threshold {
			payload := rec.Payload
			return &payload, score, nil
		}
	}
	return nil, 0.0, nil
}

func (c *RedisCache) Set(ctx context.Context, embedding []float32, payload entity.CachePayload) error {
	raw, err := json.Marshal(cacheRecord{Embedding: embedding, Payload: payload})
	if err != nil {
		return fmt.Errorf("cache entry encode failed: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, cacheListKey, raw)
	pipe.LTrim(ctx, cacheListKey, 0, cacheMaxEntries-1)
	pipe.Expire(ctx, cacheListKey, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}
