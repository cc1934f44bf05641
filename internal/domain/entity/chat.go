package entity

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Intent is the closed-set classification of a user message's purpose.
type Intent string

const (
	IntentMetaQuestion    Intent = "META_QUESTION"
	IntentComplexQuestion Intent = "COMPLEX_QUESTION"
	IntentSimpleChat      Intent = "SIMPLE_CHAT"
	IntentDomainQuestion  Intent = "DOMAIN_QUESTION"
	IntentPolicyQuestion  Intent = "POLICY_QUESTION"
	IntentPricingQuestion Intent = "PRICING_QUESTION"
)

// Route is the orchestration decision selecting which worker chain handles
// a request.
type Route string

const (
	RouteGuide   Route = "guide"
	RouteHybrid  Route = "delegate_hybrid"
	RouteRAG     Route = "delegate_rag"
	RouteBilling Route = "delegate_billing"
	RoutePolicy  Route = "delegate_policy"
	RouteDirect  Route = "delegate_direct"
)

// AgentID identifies the agent reported as having produced a response.
// These values are part of the wire contract with consumers.
type AgentID string

const (
	AgentOrchestrator AgentID = "orchestrator"
	AgentBilling      AgentID = "billing"
	AgentTechnical    AgentID = "technical"
	AgentPolicy       AgentID = "policy"
)

// KnownAgents lists every agent id that must appear in an agent-status
// snapshot.
func KnownAgents() []AgentID {
	return []AgentID{AgentOrchestrator, AgentBilling, AgentTechnical, AgentPolicy}
}

type AgentStatus string

const (
	StatusIdle     AgentStatus = "idle"
	StatusRouting  AgentStatus = "routing"
	StatusActive   AgentStatus = "active"
	StatusComplete AgentStatus = "complete"
	StatusError    AgentStatus = "error"
)

// DefaultAgentStatus returns a snapshot with every known agent idle.
func DefaultAgentStatus() map[AgentID]AgentStatus {
	m := make(map[AgentID]AgentStatus, len(KnownAgents()))
	for _, id := range KnownAgents() {
		m[id] = StatusIdle
	}
	return m
}

// AgentStatusWith returns a snapshot with the given agents marked complete
// and every other known agent idle.
func AgentStatusWith(complete ...AgentID) map[AgentID]AgentStatus {
	m := DefaultAgentStatus()
	for _, id := range complete {
		m[id] = StatusComplete
	}
	return m
}

type CacheStatus string

const (
	CacheHit  CacheStatus = "hit"
	CacheMiss CacheStatus = "miss"
	CacheNone CacheStatus = "none"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of an LLM conversation. Role ordering is preserved
// all the way to the provider.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

const maxMessageRunes = 2000

// ChatRequest is the inbound chat payload. Immutable once validated.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// Validate enforces the 1..2000 character message bound and the session
// UUID format.
func (r ChatRequest) Validate() error {
	n := utf8.RuneCountInString(r.Message)
	if n == 0 || n > maxMessageRunes {
		return fmt.Errorf("%w: message must be 1..%d characters", ErrInvalidRequest, maxMessageRunes)
	}
	if _, err := uuid.Parse(r.SessionID); err != nil {
		return fmt.Errorf("%w: session_id must be a UUID", ErrInvalidRequest)
	}
	return nil
}

// ChatMetrics carries token, cost, and latency accounting for one response.
type ChatMetrics struct {
	TokensUsed  int         `json:"tokensUsed"`
	Cost        float64     `json:"cost"`
	Latency     int64       `json:"latency"`
	CacheStatus CacheStatus `json:"cache_status"`
}

// DocumentChunk is one retrieved knowledge-base fragment with its
// normalized similarity in [0,1].
type DocumentChunk struct {
	ID         int            `json:"id"`
	Content    string         `json:"content"`
	Similarity float64        `json:"similarity"`
	Source     string         `json:"source"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ChatResponse is the uniform result every worker strategy normalizes into.
// Logs is never empty; AgentStatus always carries every known agent id.
type ChatResponse struct {
	Message     string                  `json:"message"`
	Agent       AgentID                 `json:"agent"`
	Confidence  float64                 `json:"confidence"`
	Logs        []RetrievalLog          `json:"logs"`
	Metrics     ChatMetrics             `json:"metrics"`
	AgentStatus map[AgentID]AgentStatus `json:"agent_status"`
}

// CompletionResult is what a text-completion collaborator returns.
type CompletionResult struct {
	Content   string
	Model     string
	TokensIn  int
	TokensOut int
	Cost      float64
}

// CachedMetrics is the token/cost record stored alongside a cached answer.
type CachedMetrics struct {
	TokensInput  int     `json:"tokens_input"`
	TokensOutput int     `json:"tokens_output"`
	Cost         float64 `json:"cost"`
}

// CachePayload is the value half of a semantic-cache entry.
type CachePayload struct {
	Message   string        `json:"message"`
	Metrics   CachedMetrics `json:"metrics"`
	Timestamp int64         `json:"timestamp"`
}

// ScoredDocument pairs a retrieved document with its raw distance score.
// Lower distance is better; workers normalize it to a similarity.
type ScoredDocument struct {
	Content  string
	Metadata map[string]any
	Distance float64
}

// StreamEvent is one SSE frame of the streaming chat variant. Exactly one
// "done" event is emitted per request, after all logs.
type StreamEvent struct {
	Type     string        `json:"type"`
	Agent    AgentID       `json:"agent,omitempty"`
	Status   AgentStatus   `json:"status,omitempty"`
	Log      *RetrievalLog `json:"log,omitempty"`
	Content  string        `json:"content,omitempty"`
	Response *ChatResponse `json:"response,omitempty"`
}

const (
	StreamAgentStatus  = "agent_status"
	StreamRetrievalLog = "retrieval_log"
	StreamMessageChunk = "message_chunk"
	StreamDone         = "done"
)
