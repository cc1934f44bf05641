package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogStampsIdentityAndTime(t *testing.T) {
	l := NewLog(LogRouting, "title", RoutingDecisionData{Intent: IntentDomainQuestion}, LogSuccess)

	_, err := uuid.Parse(l.ID)
	assert.NoError(t, err)
	_, err = time.Parse(time.RFC3339Nano, l.Timestamp)
	assert.NoError(t, err)
	assert.Equal(t, LogRouting, l.Type)
	assert.Equal(t, LogSuccess, l.Status)
	assert.Nil(t, l.Chunks)
}

func TestRoutingLogWireFields(t *testing.T) {
	l := NewLog(LogRouting, "routed", RoutingDecisionData{
		Intent:      IntentPricingQuestion,
		Confidence:  0.9,
		TargetAgent: "billing",
		Reasoning:   "asks about cost",
	}, LogSuccess)

	raw, err := json.Marshal(l)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	data, ok := decoded["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "PRICING_QUESTION", data["intent"])
	assert.Equal(t, "billing", data["target_agent"])
	assert.Equal(t, "asks about cost", data["reasoning"])

	// Chunks must not appear on a chunk-less entry.
	_, present := decoded["chunks"]
	assert.False(t, present)
}

func TestFallbackLogWireFields(t *testing.T) {
	l := NewLog(LogRouting, "fallback", FallbackData{
		AttemptedAgents: []string{"hybrid", "rag"},
		SuccessfulAgent: "direct",
		FallbackReason:  "previous_agents_failed",
	}, LogSuccess)

	raw, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"attempted_agents":["hybrid","rag"]`)
	assert.Contains(t, string(raw), `"successful_agent":"direct"`)
	assert.Contains(t, string(raw), `"fallback_reason":"previous_agents_failed"`)
}

func TestCacheLogWireFields(t *testing.T) {
	l := NewLog(LogCache, "hit", CacheOpData{
		Operation:       "hit",
		LatencyMs:       12,
		SimilarityScore: 0.91,
		SavedCost:       0.02,
	}, LogSuccess)

	raw, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"operation":"hit"`)
	assert.Contains(t, string(raw), `"similarity_score":0.91`)
	assert.Contains(t, string(raw), `"saved_cost":0.02`)
	assert.Contains(t, string(raw), `"latency_ms":12`)
}

func TestNewChunkLogCarriesChunks(t *testing.T) {
	chunks := []DocumentChunk{{ID: 0, Content: "body", Similarity: 0.8, Source: "doc.md"}}
	l := NewChunkLog(LogVectorSearch, "retrieved", VectorSearchData{
		Collection:      "knowledge_base_v1",
		ChunksRetrieved: 1,
	}, LogSuccess, chunks)

	raw, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"chunks_retrieved":1`)
	assert.Contains(t, string(raw), `"chunks":[`)
	assert.Contains(t, string(raw), `"source":"doc.md"`)
}
