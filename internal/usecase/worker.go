package usecase

import (
	"context"

	"orchestratai-core/internal/domain/entity"
)

// Worker is the common contract every response-generation strategy
// implements. A worker either returns a complete response or an error,
// never a partial result; the fallback executor depends on that boundary.
type Worker interface {
	Handle(ctx context.Context, req entity.ChatRequest) (*entity.ChatResponse, error)
}

// Per-strategy confidence constants. These are design knobs, not computed
// probabilities: cache-hit responses rank above cache-miss responses of the
// same strategy, and multi-source corroboration ranks highest.
const (
	directConfidence  = 0.70
	ragConfidence     = 0.85
	cagMissConfidence = 0.85
	cagHitConfidence  = 0.90
	hybridConfidence  = 0.90
)

const (
	retrievalTopK     = 5
	cacheHitThreshold = 0.85
	knowledgeBaseName = "knowledge_base_v1"
)

// similarityFromDistance converts a store distance (0 = perfect match,
// 2 = poor match) to a similarity in [0,1]: similarity = max(0, 1 - d/2).
// Downstream consumers assume this exact normalization.
func similarityFromDistance(distance float64) float64 {
	sim := 1.0 - distance/2.0
	if sim < 0 {
		return 0
	}
	return sim
}

// chunksFromResults normalizes scored documents into loggable chunks.
func chunksFromResults(results []entity.ScoredDocument) []entity.DocumentChunk {
	chunks := make([]entity.DocumentChunk, 0, len(results))
	for i, res := range results {
		source := "unknown"
		if s, ok := res.Metadata["source"].(string); ok && s != "" {
			source = s
		}
		chunks = append(chunks, entity.DocumentChunk{
			ID:         i,
			Content:    res.Content,
			Similarity: similarityFromDistance(res.Distance),
			Source:     source,
			Metadata:   res.Metadata,
		})
	}
	return chunks
}
