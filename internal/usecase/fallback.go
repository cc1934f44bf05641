package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"orchestratai-core/internal/domain/entity"
)

// apologyMessage is the only failure text a user ever sees. Internal error
// detail never leaks into it.
const apologyMessage = "I apologize, but I'm experiencing technical difficulties. Please try again later."

// chainEntry names one worker in a fallback chain.
type chainEntry struct {
	name   string
	worker Worker
}

// executeWithFallback invokes each chain member in order and returns the
// first successful response. A failed worker is recorded and skipped, never
// retried. When a later member succeeds, a provenance log naming every
// attempted agent is prepended; when the whole chain fails, the terminal
// apology response is synthesized instead.
func executeWithFallback(ctx context.Context, chain []chainEntry, req entity.ChatRequest) *entity.ChatResponse {
	var attempted []string

	for _, entry := range chain {
		resp, err := entry.worker.Handle(ctx, req)
		if err != nil {
			log.Printf("[FALLBACK] agent %s failed: %v", entry.name, err)
			attempted = append(attempted, entry.name)
			continue
		}

		if len(attempted) > 0 {
			chainNames := strings.Join(append(append([]string{}, attempted...), entry.name), " → ")
			fallbackLog := entity.NewLog(
				entity.LogRouting,
				fmt.Sprintf("Fallback chain used: %s", chainNames),
				entity.FallbackData{
					AttemptedAgents: attempted,
					SuccessfulAgent: entry.name,
					FallbackReason:  "previous_agents_failed",
				},
				entity.LogSuccess,
			)
			resp.Logs = append([]entity.RetrievalLog{fallbackLog}, resp.Logs...)
		}
		return resp
	}

	log.Printf("[FALLBACK] all agents failed: %s", strings.Join(attempted, ", "))
	return exhaustedResponse(attempted)
}

// exhaustedResponse is the terminal error response: fixed apology, zero
// confidence, a single error-status log naming every attempted agent, and
// every agent slot idle (no specific agent is user-visible at this point).
func exhaustedResponse(attempted []string) *entity.ChatResponse {
	errorLog := entity.NewLog(
		entity.LogRouting,
		"All agents failed",
		entity.ChainErrorData{
			AttemptedAgents: attempted,
			Error:           fmt.Sprintf("All agents failed: %s", strings.Join(attempted, ", ")),
		},
		entity.LogError,
	)

	return &entity.ChatResponse{
		Message:    apologyMessage,
		Agent:      entity.AgentOrchestrator,
		Confidence: 0.0,
		Logs:       []entity.RetrievalLog{errorLog},
		Metrics: entity.ChatMetrics{
			TokensUsed:  0,
			Cost:        0,
			Latency:     0,
			CacheStatus: entity.CacheNone,
		},
		AgentStatus: entity.DefaultAgentStatus(),
	}
}
