package usecase

import (
	"context"
	"strings"

	"orchestratai-core/internal/domain/entity"
)

// ExecuteStream runs the same pipeline as Execute and replays the outcome
// as an ordered event stream: agent-status transitions, then every
// retrieval log, then message chunks, then exactly one done event. The
// channel is closed after the done event.
//
// Request validation failures are returned synchronously so the transport
// can reject before any event is written. Every later failure still
// produces a done event, so consumers always see exactly one final payload.
func (o *Orchestrator) ExecuteStream(ctx context.Context, req entity.ChatRequest) (<-chan entity.StreamEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	events := make(chan entity.StreamEvent)
	go func() {
		defer close(events)
		emit := func(ev entity.StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit(entity.StreamEvent{Type: entity.StreamAgentStatus, Agent: entity.AgentOrchestrator, Status: entity.StatusRouting}) {
			return
		}

		resp, err := o.Execute(ctx, req)
		if err != nil {
			resp = exhaustedResponse(nil)
		}

		if !emit(entity.StreamEvent{Type: entity.StreamAgentStatus, Agent: entity.AgentOrchestrator, Status: entity.StatusActive}) {
			return
		}
		if resp.Agent != entity.AgentOrchestrator {
			if !emit(entity.StreamEvent{Type: entity.StreamAgentStatus, Agent: resp.Agent, Status: entity.StatusActive}) {
				return
			}
		}

		for i := range resp.Logs {
			l := resp.Logs[i]
			if !emit(entity.StreamEvent{Type: entity.StreamRetrievalLog, Log: &l}) {
				return
			}
		}

		for _, word := range strings.Fields(resp.Message) {
			if !emit(entity.StreamEvent{Type: entity.StreamMessageChunk, Content: word + " "}) {
				return
			}
		}

		emit(entity.StreamEvent{Type: entity.StreamDone, Response: resp})
	}()

	return events, nil
}
