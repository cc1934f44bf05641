package repository

import (
	"context"

	"orchestratai-core/internal/domain/entity"
)

// LLMProvider is a pluggable text-completion capability. Implementations
// must honor the system role and preserve message ordering.
type LLMProvider interface {
	Complete(ctx context.Context, messages []entity.Message) (*entity.CompletionResult, error)
}

// Embedder turns text into a vector for similarity operations.
type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// VectorSearch is a pluggable nearest-neighbor document search. Results are
// ordered best-first; Distance is the store's raw score where lower is
// better.
type VectorSearch interface {
	SearchWithScores(ctx context.Context, query string, k int) ([]entity.ScoredDocument, error)
}

// ResponseCache is the semantic cache shared by the CAG and Hybrid workers.
// Get returns the first stored payload whose cosine similarity to the query
// embedding meets the threshold, along with that similarity; a miss is
// (nil, 0.0, nil). Implementations must be safe under concurrent use.
type ResponseCache interface {
	Get(ctx context.Context, embedding []float32, threshold float64) (*entity.CachePayload, float64, error)
	Set(ctx context.Context, embedding []float32, payload entity.CachePayload) error
}

// TokenLimiter enforces a per-session token budget.
type TokenLimiter interface {
	CheckLimit(ctx context.Context, sessionID string) (bool, error)
	Increment(ctx context.Context, sessionID string, tokens int) error
}
