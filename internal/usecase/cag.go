package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"orchestratai-core/internal/domain/entity"
	"orchestratai-core/internal/domain/repository"
)

const cagSystemPrompt = `You are a helpful AI assistant specializing in policy and pricing questions. Use the provided context documents to answer the user's question accurately. If the context doesn't contain relevant information, acknowledge that and provide a general response.`

// CAGWorker serves recurring questions from the semantic cache. On a hit it
// answers at zero generation cost; on a miss it optionally grounds the
// answer on the vector store, generates, and writes the result back.
//
// The same strategy serves both the pricing and policy domains: the intent
// override selects which agent identity the response reports.
type CAGWorker struct {
	provider    repository.LLMProvider
	cache       repository.ResponseCache
	embedder    repository.Embedder
	vectorStore repository.VectorSearch // optional
	intent      entity.Intent
}

func NewCAGWorker(
	provider repository.LLMProvider,
	cache repository.ResponseCache,
	embedder repository.Embedder,
	vectorStore repository.VectorSearch,
) *CAGWorker {
	return &CAGWorker{
		provider:    provider,
		cache:       cache,
		embedder:    embedder,
		vectorStore: vectorStore,
	}
}

// ForIntent returns a copy of the worker that reports the agent identity
// matching the given intent (pricing → billing, policy → policy).
func (w *CAGWorker) ForIntent(intent entity.Intent) *CAGWorker {
	clone := *w
	clone.intent = intent
	return &clone
}

func (w *CAGWorker) agentID() entity.AgentID {
	if w.intent == entity.IntentPolicyQuestion {
		return entity.AgentPolicy
	}
	return entity.AgentBilling
}

func (w *CAGWorker) Handle(ctx context.Context, req entity.ChatRequest) (*entity.ChatResponse, error) {
	start := time.Now()

	embedding, err := w.embedder.CreateEmbedding(ctx, req.Message)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	cacheStart := time.Now()
	cached, similarity, err := w.cache.Get(ctx, embedding, cacheHitThreshold)
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}
	cacheLatency := time.Since(cacheStart).Milliseconds()

	if cached != nil {
		// A cached entry without its message is a failure, not a miss:
		// the fallback executor decides what happens next.
		if cached.Message == "" {
			return nil, entity.ErrMalformedCacheEntry
		}
		return w.buildHitResponse(cached, similarity, time.Since(start).Milliseconds(), cacheLatency), nil
	}

	var chunks []entity.DocumentChunk
	var retrievalLatency int64
	context_ := ""
	if w.vectorStore != nil {
		retrievalStart := time.Now()
		results, err := w.vectorStore.SearchWithScores(ctx, req.Message, retrievalTopK)
		if err != nil {
			return nil, fmt.Errorf("vector search failed: %w", err)
		}
		retrievalLatency = time.Since(retrievalStart).Milliseconds()
		chunks = chunksFromResults(results)
		context_ = buildNumberedContext(chunks)
	}

	result, err := w.provider.Complete(ctx, []entity.Message{
		{Role: entity.RoleSystem, Content: cagSystemPrompt},
		{Role: entity.RoleUser, Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", context_, req.Message)},
	})
	if err != nil {
		return nil, fmt.Errorf("cag completion failed: %w", err)
	}

	// Written only after a successful generation, so a cancelled request
	// never leaves partial state behind.
	payload := entity.CachePayload{
		Message: result.Content,
		Metrics: entity.CachedMetrics{
			TokensInput:  result.TokensIn,
			TokensOutput: result.TokensOut,
			Cost:         result.Cost,
		},
		Timestamp: time.Now().Unix(),
	}
	if err := w.cache.Set(ctx, embedding, payload); err != nil {
		return nil, fmt.Errorf("cache write failed: %w", err)
	}

	return w.buildMissResponse(result, chunks, time.Since(start).Milliseconds(), cacheLatency, retrievalLatency), nil
}

func (w *CAGWorker) buildHitResponse(cached *entity.CachePayload, similarity float64, totalLatency, cacheLatency int64) *entity.ChatResponse {
	cacheLog := entity.NewLog(
		entity.LogCache,
		fmt.Sprintf("Cache hit (similarity: %.2f)", similarity),
		entity.CacheOpData{
			Operation:       "hit",
			LatencyMs:       cacheLatency,
			SimilarityScore: similarity,
			SavedCost:       cached.Metrics.Cost,
		},
		entity.LogSuccess,
	)

	agent := w.agentID()
	return &entity.ChatResponse{
		Message:    cached.Message,
		Agent:      agent,
		Confidence: cagHitConfidence,
		Logs:       []entity.RetrievalLog{cacheLog},
		Metrics: entity.ChatMetrics{
			TokensUsed:  0,
			Cost:        0,
			Latency:     totalLatency,
			CacheStatus: entity.CacheHit,
		},
		AgentStatus: entity.AgentStatusWith(entity.AgentOrchestrator, agent),
	}
}

func (w *CAGWorker) buildMissResponse(result *entity.CompletionResult, chunks []entity.DocumentChunk, totalLatency, cacheLatency, retrievalLatency int64) *entity.ChatResponse {
	var logs []entity.RetrievalLog
	if len(chunks) > 0 {
		logs = append(logs, entity.NewChunkLog(
			entity.LogVectorSearch,
			fmt.Sprintf("Retrieved %d documents from knowledge base", len(chunks)),
			entity.VectorSearchData{
				Collection:      knowledgeBaseName,
				ChunksRetrieved: len(chunks),
				LatencyMs:       retrievalLatency,
			},
			entity.LogSuccess,
			chunks,
		))
	}
	logs = append(logs, entity.NewLog(
		entity.LogCache,
		"Cache miss - generated new response",
		entity.CacheOpData{
			Operation:       "miss",
			LatencyMs:       cacheLatency,
			SimilarityScore: 0.0,
			SavedCost:       0.0,
		},
		entity.LogSuccess,
	))

	agent := w.agentID()
	return &entity.ChatResponse{
		Message:    result.Content,
		Agent:      agent,
		Confidence: cagMissConfidence,
		Logs:       logs,
		Metrics: entity.ChatMetrics{
			TokensUsed:  result.TokensIn + result.TokensOut,
			Cost:        result.Cost,
			Latency:     totalLatency,
			CacheStatus: entity.CacheMiss,
		},
		AgentStatus: entity.AgentStatusWith(entity.AgentOrchestrator, agent),
	}
}

// buildNumberedContext renders chunks as plain numbered documents, without
// similarity annotations.
func buildNumberedContext(chunks []entity.DocumentChunk) string {
	var b strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Document %d]\n%s", i+1, chunk.Content)
	}
	return b.String()
}
