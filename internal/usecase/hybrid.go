package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"orchestratai-core/internal/domain/entity"
	"orchestratai-core/internal/domain/repository"
)

const hybridSystemPrompt = `You are a helpful AI assistant with access to both retrieved documents and cached insights.
Use the provided context to answer complex questions accurately.
Synthesize information from multiple sources when relevant.
Always cite which sources you used in your response.`

// HybridWorker runs RAG retrieval and a semantic-cache lookup concurrently,
// merges the two evidence sources, and grounds one completion call on the
// combined context. It reports the system's highest confidence, reflecting
// multi-source corroboration.
type HybridWorker struct {
	provider repository.LLMProvider
	rag      *RAGWorker
	cache    repository.ResponseCache
	embedder repository.Embedder
}

func NewHybridWorker(
	provider repository.LLMProvider,
	rag *RAGWorker,
	cache repository.ResponseCache,
	embedder repository.Embedder,
) *HybridWorker {
	return &HybridWorker{provider: provider, rag: rag, cache: cache, embedder: embedder}
}

type ragOutcome struct {
	resp *entity.ChatResponse
	err  error
}

type cacheOutcome struct {
	payload    *entity.CachePayload
	similarity float64
	err        error
}

func (w *HybridWorker) Handle(ctx context.Context, req entity.ChatRequest) (*entity.ChatResponse, error) {
	start := time.Now()

	embedding, err := w.embedder.CreateEmbedding(ctx, req.Message)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	// Two-way join: both branches must settle before merging. A failure in
	// either branch fails the whole worker; the fallback executor catches
	// it one level up.
	ragCh := make(chan ragOutcome, 1)
	cacheCh := make(chan cacheOutcome, 1)
	parallelStart := time.Now()
	go func() {
		resp, err := w.rag.Handle(ctx, req)
		ragCh <- ragOutcome{resp: resp, err: err}
	}()
	go func() {
		payload, similarity, err := w.cache.Get(ctx, embedding, cacheHitThreshold)
		cacheCh <- cacheOutcome{payload: payload, similarity: similarity, err: err}
	}()
	ragOut := <-ragCh
	cacheOut := <-cacheCh
	parallelLatency := time.Since(parallelStart).Milliseconds()

	if ragOut.err != nil {
		return nil, fmt.Errorf("hybrid retrieval branch failed: %w", ragOut.err)
	}
	if cacheOut.err != nil {
		return nil, fmt.Errorf("hybrid cache branch failed: %w", cacheOut.err)
	}

	var ragChunks []entity.DocumentChunk
	for _, l := range ragOut.resp.Logs {
		if l.Type == entity.LogVectorSearch {
			ragChunks = append(ragChunks, l.Chunks...)
		}
	}

	var cacheChunks []entity.DocumentChunk
	if cacheOut.payload != nil {
		cacheChunks = append(cacheChunks, entity.DocumentChunk{
			ID:         len(ragChunks),
			Content:    cacheOut.payload.Message,
			Similarity: cacheOut.similarity,
			Source:     "cache",
			Metadata: map[string]any{
				"source":    "semantic_cache",
				"timestamp": cacheOut.payload.Timestamp,
			},
		})
	}

	merged := dedupeChunks(ragChunks, cacheChunks)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})

	context_ := w.buildMergedContext(merged, cacheOut)

	result, err := w.provider.Complete(ctx, []entity.Message{
		{Role: entity.RoleSystem, Content: hybridSystemPrompt},
		{Role: entity.RoleUser, Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", context_, req.Message)},
	})
	if err != nil {
		return nil, fmt.Errorf("hybrid completion failed: %w", err)
	}

	// Logs keep causal order: the RAG branch's retrieval first, then the
	// cache outcome.
	var logs []entity.RetrievalLog
	for _, l := range ragOut.resp.Logs {
		if l.Type == entity.LogVectorSearch {
			logs = append(logs, l)
		}
	}
	logs = append(logs, w.buildCacheLog(cacheOut, cacheChunks, parallelLatency))

	// Cost and tokens aggregate the RAG sub-call with this worker's own
	// completion; the cache lookup itself is free.
	totalTokens := ragOut.resp.Metrics.TokensUsed + result.TokensIn + result.TokensOut
	totalCost := ragOut.resp.Metrics.Cost + result.Cost

	return &entity.ChatResponse{
		Message:    result.Content,
		Agent:      entity.AgentTechnical,
		Confidence: hybridConfidence,
		Logs:       logs,
		Metrics: entity.ChatMetrics{
			TokensUsed: totalTokens,
			Cost:       totalCost,
			Latency:    time.Since(start).Milliseconds(),
			// Generation always runs here, so the hit/miss outcome lives in
			// the cache log; reporting "hit" would break the
			// zero-cost-on-hit contract.
			CacheStatus: entity.CacheNone,
		},
		AgentStatus: entity.AgentStatusWith(entity.AgentOrchestrator, entity.AgentTechnical),
	}, nil
}

func (w *HybridWorker) buildMergedContext(merged []entity.DocumentChunk, cacheOut cacheOutcome) string {
	var parts []string
	if cacheOut.payload != nil {
		parts = append(parts, fmt.Sprintf("Cached Insight (similarity: %.2f):\n%s", cacheOut.similarity, cacheOut.payload.Message))
	}
	n := 0
	for _, chunk := range merged {
		if chunk.Source == "cache" {
			continue
		}
		n++
		parts = append(parts, fmt.Sprintf("Document %d (similarity: %.2f, source: %s):\n%s", n, chunk.Similarity, chunk.Source, chunk.Content))
	}
	return strings.Join(parts, "\n\n")
}

func (w *HybridWorker) buildCacheLog(cacheOut cacheOutcome, cacheChunks []entity.DocumentChunk, latency int64) entity.RetrievalLog {
	if cacheOut.payload != nil {
		return entity.NewChunkLog(
			entity.LogCache,
			fmt.Sprintf("Cache hit (similarity: %.2f)", cacheOut.similarity),
			entity.CacheOpData{
				Operation:       "hit",
				LatencyMs:       latency,
				SimilarityScore: cacheOut.similarity,
				SavedCost:       cacheOut.payload.Metrics.Cost,
			},
			entity.LogSuccess,
			cacheChunks,
		)
	}
	return entity.NewLog(
		entity.LogCache,
		"Cache miss",
		entity.CacheOpData{
			Operation:       "miss",
			LatencyMs:       latency,
			SimilarityScore: 0.0,
		},
		entity.LogSuccess,
	)
}

// dedupeChunks merges both evidence sources, keeping the first chunk seen
// for each (source, page) key.
func dedupeChunks(ragChunks, cacheChunks []entity.DocumentChunk) []entity.DocumentChunk {
	type key struct {
		source string
		page   string
	}
	seen := make(map[key]bool)
	merged := make([]entity.DocumentChunk, 0, len(ragChunks)+len(cacheChunks))
	for _, chunk := range append(append([]entity.DocumentChunk{}, ragChunks...), cacheChunks...) {
		source := chunk.Source
		page := ""
		if chunk.Metadata != nil {
			if s, ok := chunk.Metadata["source"].(string); ok && s != "" {
				source = s
			}
			if p, ok := chunk.Metadata["page"]; ok {
				page = fmt.Sprint(p)
			}
		}
		k := key{source: source, page: page}
		if seen[k] {
			continue
		}
		seen[k] = true
		merged = append(merged, chunk)
	}
	return merged
}
