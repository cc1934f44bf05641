package usecase

import (
	"context"
	"fmt"
	"time"

	"orchestratai-core/internal/domain/entity"
	"orchestratai-core/internal/domain/repository"
)

const directSystemPrompt = `You are a helpful AI assistant.
Provide friendly, concise responses to user queries.
If asked about complex topics, acknowledge that specialized assistance may be needed.`

// DirectWorker answers without retrieval or caching. It is the terminal
// member of every fallback chain: barring a transport failure in the
// completion call itself, it always succeeds.
type DirectWorker struct {
	provider repository.LLMProvider
}

func NewDirectWorker(provider repository.LLMProvider) *DirectWorker {
	return &DirectWorker{provider: provider}
}

func (w *DirectWorker) Handle(ctx context.Context, req entity.ChatRequest) (*entity.ChatResponse, error) {
	start := time.Now()

	result, err := w.provider.Complete(ctx, []entity.Message{
		{Role: entity.RoleSystem, Content: directSystemPrompt},
		{Role: entity.RoleUser, Content: req.Message},
	})
	if err != nil {
		return nil, fmt.Errorf("direct completion failed: %w", err)
	}

	latency := time.Since(start).Milliseconds()
	routingLog := entity.NewLog(
		entity.LogRouting,
		"Direct conversational response (no retrieval)",
		entity.DirectModeData{
			Agent:     "direct",
			Mode:      "conversational",
			Retrieval: false,
			LatencyMs: latency,
		},
		entity.LogSuccess,
	)

	return &entity.ChatResponse{
		Message:    result.Content,
		Agent:      entity.AgentOrchestrator,
		Confidence: directConfidence,
		Logs:       []entity.RetrievalLog{routingLog},
		Metrics: entity.ChatMetrics{
			TokensUsed:  result.TokensIn + result.TokensOut,
			Cost:        result.Cost,
			Latency:     latency,
			CacheStatus: entity.CacheNone,
		},
		AgentStatus: entity.AgentStatusWith(entity.AgentOrchestrator),
	}, nil
}
