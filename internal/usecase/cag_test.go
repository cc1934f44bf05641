package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orchestratai-core/internal/domain/entity"
)

func TestCAGWorkerHit(t *testing.T) {
	provider := &stubProvider{err: errors.New("must not generate on a hit")}
	cache := &stubCache{
		payload: &entity.CachePayload{
			Message:   "cached pricing answer",
			Metrics:   entity.CachedMetrics{TokensInput: 150, TokensOutput: 90, Cost: 0.012},
			Timestamp: 1700000000,
		},
		similarity: 0.91,
	}
	w := NewCAGWorker(provider, cache, &stubEmbedder{}, nil)

	resp, err := w.Handle(context.Background(), entity.ChatRequest{Message: "how much is pro?"})
	require.NoError(t, err)

	assert.Equal(t, "cached pricing answer", resp.Message)
	assert.Equal(t, entity.AgentBilling, resp.Agent)
	assert.InDelta(t, cagHitConfidence, resp.Confidence, 1e-9)

	// A hit must cost nothing.
	assert.Zero(t, resp.Metrics.TokensUsed)
	assert.Zero(t, resp.Metrics.Cost)
	assert.Equal(t, entity.CacheHit, resp.Metrics.CacheStatus)

	require.Len(t, resp.Logs, 1)
	assert.Equal(t, entity.LogCache, resp.Logs[0].Type)
	data, ok := resp.Logs[0].Data.(entity.CacheOpData)
	require.True(t, ok)
	assert.Equal(t, "hit", data.Operation)
	assert.InDelta(t, 0.91, data.SimilarityScore, 1e-9)
	assert.InDelta(t, 0.012, data.SavedCost, 1e-9)

	assert.Zero(t, cache.setCount(), "a hit must not rewrite the cache")
}

func TestCAGWorkerMissGeneratesAndWritesBack(t *testing.T) {
	provider := &stubProvider{content: "fresh answer", tokensIn: 200, tokensOut: 100, cost: 0.02}
	cache := &stubCache{}
	search := &stubVectorSearch{docs: []entity.ScoredDocument{
		{Content: "pricing table", Metadata: map[string]any{"source": "pricing.md"}, Distance: 0.3},
	}}
	w := NewCAGWorker(provider, cache, &stubEmbedder{}, search)

	resp, err := w.Handle(context.Background(), entity.ChatRequest{Message: "how much is pro?"})
	require.NoError(t, err)

	assert.Equal(t, "fresh answer", resp.Message)
	assert.InDelta(t, cagMissConfidence, resp.Confidence, 1e-9)
	assert.Equal(t, 300, resp.Metrics.TokensUsed)
	assert.InDelta(t, 0.02, resp.Metrics.Cost, 1e-9)
	assert.Equal(t, entity.CacheMiss, resp.Metrics.CacheStatus)

	// Retrieval is logged before the cache outcome.
	require.Len(t, resp.Logs, 2)
	assert.Equal(t, entity.LogVectorSearch, resp.Logs[0].Type)
	assert.Equal(t, entity.LogCache, resp.Logs[1].Type)
	data, ok := resp.Logs[1].Data.(entity.CacheOpData)
	require.True(t, ok)
	assert.Equal(t, "miss", data.Operation)

	require.Equal(t, 1, cache.setCount())
	stored := cache.sets[0]
	assert.Equal(t, "fresh answer", stored.Message)
	assert.Equal(t, 200, stored.Metrics.TokensInput)
	assert.Equal(t, 100, stored.Metrics.TokensOutput)
	assert.InDelta(t, 0.02, stored.Metrics.Cost, 1e-9)
	assert.NotZero(t, stored.Timestamp)

	call := provider.lastCall()
	require.Len(t, call, 2)
	assert.Contains(t, call[1].Content, "[Document 1]\npricing table")
}

func TestCAGWorkerMissWithoutVectorStore(t *testing.T) {
	cache := &stubCache{}
	w := NewCAGWorker(&stubProvider{content: "general answer", cost: 0.001}, cache, &stubEmbedder{}, nil)

	resp, err := w.Handle(context.Background(), entity.ChatRequest{Message: "refund window?"})
	require.NoError(t, err)

	require.Len(t, resp.Logs, 1)
	assert.Equal(t, entity.LogCache, resp.Logs[0].Type)
	assert.Equal(t, 1, cache.setCount())
}

func TestCAGWorkerMalformedEntryFailsLoudly(t *testing.T) {
	cache := &stubCache{payload: &entity.CachePayload{Message: ""}, similarity: 0.95}
	w := NewCAGWorker(&stubProvider{}, cache, &stubEmbedder{}, nil)

	_, err := w.Handle(context.Background(), entity.ChatRequest{Message: "q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrMalformedCacheEntry)
}

func TestCAGWorkerForIntentSelectsAgent(t *testing.T) {
	cache := &stubCache{payload: &entity.CachePayload{Message: "cached"}, similarity: 0.9}
	base := NewCAGWorker(&stubProvider{}, cache, &stubEmbedder{}, nil)

	billing, err := base.ForIntent(entity.IntentPricingQuestion).Handle(context.Background(), entity.ChatRequest{Message: "q"})
	require.NoError(t, err)
	assert.Equal(t, entity.AgentBilling, billing.Agent)
	assert.Equal(t, entity.StatusComplete, billing.AgentStatus[entity.AgentBilling])

	policy, err := base.ForIntent(entity.IntentPolicyQuestion).Handle(context.Background(), entity.ChatRequest{Message: "q"})
	require.NoError(t, err)
	assert.Equal(t, entity.AgentPolicy, policy.Agent)
	assert.Equal(t, entity.StatusComplete, policy.AgentStatus[entity.AgentPolicy])
	assert.Equal(t, entity.StatusIdle, policy.AgentStatus[entity.AgentBilling])

	// The base worker is untouched by the clones.
	assert.Equal(t, entity.AgentBilling, base.agentID())
}

func TestCAGWorkerEmbeddingFailureIsFatal(t *testing.T) {
	w := NewCAGWorker(&stubProvider{}, &stubCache{}, &stubEmbedder{err: errors.New("embedder down")}, nil)

	_, err := w.Handle(context.Background(), entity.ChatRequest{Message: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query embedding failed")
}

func TestCAGWorkerCacheWriteFailureIsFatal(t *testing.T) {
	cache := &stubCache{setErr: errors.New("redis write refused")}
	w := NewCAGWorker(&stubProvider{content: "answer"}, cache, &stubEmbedder{}, nil)

	_, err := w.Handle(context.Background(), entity.ChatRequest{Message: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache write failed")
}
