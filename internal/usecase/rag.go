package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"orchestratai-core/internal/domain/entity"
	"orchestratai-core/internal/domain/repository"
)

const ragSystemPrompt = `You are a helpful AI assistant with access to relevant documents.
Use the provided context to answer the user's question accurately.
If the context doesn't contain enough information, say so clearly.
Always cite which documents you used in your response.`

// RAGWorker retrieves top-k documents from the vector store and grounds one
// completion call on them.
type RAGWorker struct {
	provider    repository.LLMProvider
	vectorStore repository.VectorSearch
	topK        int
}

func NewRAGWorker(provider repository.LLMProvider, vectorStore repository.VectorSearch) *RAGWorker {
	return &RAGWorker{provider: provider, vectorStore: vectorStore, topK: retrievalTopK}
}

func (w *RAGWorker) Handle(ctx context.Context, req entity.ChatRequest) (*entity.ChatResponse, error) {
	start := time.Now()

	retrievalStart := time.Now()
	results, err := w.vectorStore.SearchWithScores(ctx, req.Message, w.topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	retrievalLatency := time.Since(retrievalStart).Milliseconds()

	chunks := chunksFromResults(results)
	context_ := buildDocumentContext(chunks)

	result, err := w.provider.Complete(ctx, []entity.Message{
		{Role: entity.RoleSystem, Content: ragSystemPrompt},
		{Role: entity.RoleUser, Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", context_, req.Message)},
	})
	if err != nil {
		return nil, fmt.Errorf("rag completion failed: %w", err)
	}

	searchLog := entity.NewChunkLog(
		entity.LogVectorSearch,
		fmt.Sprintf("Retrieved %d documents from knowledge base", len(chunks)),
		entity.VectorSearchData{
			Collection:      knowledgeBaseName,
			ChunksRetrieved: len(chunks),
			LatencyMs:       retrievalLatency,
		},
		entity.LogSuccess,
		chunks,
	)

	return &entity.ChatResponse{
		Message:    result.Content,
		Agent:      entity.AgentTechnical,
		Confidence: ragConfidence,
		Logs:       []entity.RetrievalLog{searchLog},
		Metrics: entity.ChatMetrics{
			TokensUsed:  result.TokensIn + result.TokensOut,
			Cost:        result.Cost,
			Latency:     time.Since(start).Milliseconds(),
			CacheStatus: entity.CacheNone,
		},
		AgentStatus: entity.AgentStatusWith(entity.AgentOrchestrator, entity.AgentTechnical),
	}, nil
}

// buildDocumentContext enumerates chunks with their per-chunk similarity so
// the model can weigh sources.
func buildDocumentContext(chunks []entity.DocumentChunk) string {
	var b strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Document %d (similarity: %.2f):\n%s", i+1, chunk.Similarity, chunk.Content)
	}
	return b.String()
}
