package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orchestratai-core/internal/domain/entity"
)

func TestSimilarityFromDistance(t *testing.T) {
	assert.InDelta(t, 1.0, similarityFromDistance(0), 1e-9)
	assert.InDelta(t, 0.5, similarityFromDistance(1), 1e-9)
	assert.InDelta(t, 0.0, similarityFromDistance(2), 1e-9)
	// Never below zero, even for out-of-range distances.
	assert.InDelta(t, 0.0, similarityFromDistance(3), 1e-9)
}

func TestRAGWorkerGroundsCompletionOnRetrieval(t *testing.T) {
	provider := &stubProvider{content: "grounded answer", tokensIn: 120, tokensOut: 80, cost: 0.004}
	search := &stubVectorSearch{docs: []entity.ScoredDocument{
		{Content: "alpha doc", Metadata: map[string]any{"source": "handbook.pdf"}, Distance: 0.0},
		{Content: "beta doc", Metadata: map[string]any{"source": "faq.md"}, Distance: 1.0},
	}}
	w := NewRAGWorker(provider, search)

	resp, err := w.Handle(context.Background(), entity.ChatRequest{Message: "how do retries work?"})
	require.NoError(t, err)

	assert.Equal(t, "grounded answer", resp.Message)
	assert.Equal(t, entity.AgentTechnical, resp.Agent)
	assert.InDelta(t, ragConfidence, resp.Confidence, 1e-9)
	assert.Equal(t, 200, resp.Metrics.TokensUsed)
	assert.InDelta(t, 0.004, resp.Metrics.Cost, 1e-9)
	assert.Equal(t, entity.CacheNone, resp.Metrics.CacheStatus)

	require.Len(t, resp.Logs, 1)
	assert.Equal(t, entity.LogVectorSearch, resp.Logs[0].Type)
	data, ok := resp.Logs[0].Data.(entity.VectorSearchData)
	require.True(t, ok)
	assert.Equal(t, 2, data.ChunksRetrieved)
	require.Len(t, resp.Logs[0].Chunks, 2)
	assert.Equal(t, "handbook.pdf", resp.Logs[0].Chunks[0].Source)
	assert.InDelta(t, 1.0, resp.Logs[0].Chunks[0].Similarity, 1e-9)
	assert.InDelta(t, 0.5, resp.Logs[0].Chunks[1].Similarity, 1e-9)

	// The prompt carries the enumerated context with per-chunk similarity.
	call := provider.lastCall()
	require.Len(t, call, 2)
	assert.Equal(t, entity.RoleSystem, call[0].Role)
	assert.Contains(t, call[1].Content, "Document 1 (similarity: 1.00):\nalpha doc")
	assert.Contains(t, call[1].Content, "Document 2 (similarity: 0.50):\nbeta doc")
	assert.Contains(t, call[1].Content, "Question: how do retries work?")

	assert.Equal(t, entity.StatusComplete, resp.AgentStatus[entity.AgentTechnical])
	assert.Equal(t, entity.StatusIdle, resp.AgentStatus[entity.AgentBilling])
}

func TestRAGWorkerSearchFailureIsFatal(t *testing.T) {
	w := NewRAGWorker(&stubProvider{}, &stubVectorSearch{err: errors.New("qdrant unreachable")})

	_, err := w.Handle(context.Background(), entity.ChatRequest{Message: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector search failed")
}

func TestRAGWorkerCompletionFailureIsFatal(t *testing.T) {
	w := NewRAGWorker(&stubProvider{err: errors.New("model overloaded")}, &stubVectorSearch{})

	_, err := w.Handle(context.Background(), entity.ChatRequest{Message: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rag completion failed")
}

func TestChunksFromResultsDefaultsUnknownSource(t *testing.T) {
	chunks := chunksFromResults([]entity.ScoredDocument{{Content: "bare", Distance: 0.4}})
	require.Len(t, chunks, 1)
	assert.Equal(t, "unknown", chunks[0].Source)
	assert.Equal(t, 0, chunks[0].ID)
}
