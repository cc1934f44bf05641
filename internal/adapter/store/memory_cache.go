package store

import (
	"context"
	"sync"
	"time"

	"orchestratai-core/internal/domain/entity"
)

type memoryEntry struct {
	embedding []float32
	payload   entity.CachePayload
}

// MemoryCache implements the semantic-cache contract in-process with the
// same semantics as RedisCache: front-insertion, size trim, one TTL on the
// whole collection, linear cosine scan. It backs tests and deployments
// without a Redis.
type MemoryCache struct {
	mu        sync.Mutex
	entries   []memoryEntry // index 0 is newest
	max       int
	ttl       time.Duration
	expiresAt time.Time
}

func NewMemoryCache(max int, ttl time.Duration) *MemoryCache {
	if max <= 0 {
		max = cacheMaxEntries
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryCache{max: max, ttl: ttl}
}

func (c *MemoryCache) Get(_ context.Context, embedding []float32, threshold float64) (*entity.CachePayload, float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireLocked()

	for _, e := range c.entries {
		if score := cosineSimilarity(e.embedding, embedding); score >= threshold {
			payload := e.payload
			return &payload, score, nil
		}
	}
	return nil, 0.0, nil
}

func (c *MemoryCache) Set(_ context.Context, embedding []float32, payload entity.CachePayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireLocked()

	c.entries = append([]memoryEntry{{embedding: embedding, payload: payload}}, c.entries...)
	if len(c.entries) > c.max {
		c.entries = c.entries[:c.max]
	}
	c.expiresAt = time.Now().Add(c.ttl)
	return nil
}

// Len reports the current number of entries, for tests and diagnostics.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireLocked()
	return len(c.entries)
}

// expireLocked drops the whole collection once its TTL lapses, matching
// the Redis EXPIRE-on-key behavior.
func (c *MemoryCache) expireLocked() {
	if !c.expiresAt.IsZero() && time.Now().After(c.expiresAt) {
		c.entries = nil
		c.expiresAt = time.Time{}
	}
}
