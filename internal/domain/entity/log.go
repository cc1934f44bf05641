package entity

import (
	"time"

	"github.com/google/uuid"
)

type LogType string

const (
	LogRouting      LogType = "routing"
	LogVectorSearch LogType = "vector_search"
	LogCache        LogType = "cache"
	LogDocuments    LogType = "documents"
)

type LogStatus string

const (
	LogSuccess LogStatus = "success"
	LogWarning LogStatus = "warning"
	LogError   LogStatus = "error"
)

// LogData is the closed set of per-kind log payloads. Field names are part
// of the wire contract and must not change.
type LogData interface {
	logData()
}

// RoutingDecisionData records why the orchestrator picked a target agent.
type RoutingDecisionData struct {
	Intent      Intent  `json:"intent"`
	Confidence  float64 `json:"confidence"`
	TargetAgent string  `json:"target_agent"`
	Reasoning   string  `json:"reasoning"`
}

// FallbackData records a degradation event: which agents were tried and
// which one eventually answered.
type FallbackData struct {
	AttemptedAgents []string `json:"attempted_agents"`
	SuccessfulAgent string   `json:"successful_agent"`
	FallbackReason  string   `json:"fallback_reason"`
}

// VectorSearchData summarizes one top-k retrieval.
type VectorSearchData struct {
	Collection      string `json:"collection"`
	ChunksRetrieved int    `json:"chunks_retrieved"`
	LatencyMs       int64  `json:"latency_ms"`
}

// CacheOpData records one semantic-cache lookup or write outcome.
type CacheOpData struct {
	Operation       string  `json:"operation"`
	LatencyMs       int64   `json:"latency_ms"`
	SimilarityScore float64 `json:"similarity_score"`
	SavedCost       float64 `json:"saved_cost"`
}

// DirectModeData tags a response that bypassed retrieval and caching.
type DirectModeData struct {
	Agent     string `json:"agent"`
	Mode      string `json:"mode"`
	Retrieval bool   `json:"retrieval"`
	LatencyMs int64  `json:"latency_ms"`
}

// ChainErrorData is emitted once when every member of a fallback chain
// has failed.
type ChainErrorData struct {
	AttemptedAgents []string `json:"attempted_agents"`
	Error           string   `json:"error"`
}

func (RoutingDecisionData) logData() {}
func (FallbackData) logData()        {}
func (VectorSearchData) logData()    {}
func (CacheOpData) logData()         {}
func (DirectModeData) logData()      {}
func (ChainErrorData) logData()      {}

// RetrievalLog is one entry of a response's provenance trail. Entries are
// append-only and their order is causal: routing precedes retrieval
// precedes cache.
type RetrievalLog struct {
	ID        string          `json:"id"`
	Type      LogType         `json:"type"`
	Title     string          `json:"title"`
	Data      LogData         `json:"data"`
	Timestamp string          `json:"timestamp"`
	Status    LogStatus       `json:"status"`
	Chunks    []DocumentChunk `json:"chunks,omitempty"`
}

// NewLog stamps a log entry with a fresh UUID and the current UTC time.
func NewLog(t LogType, title string, data LogData, status LogStatus) RetrievalLog {
	return RetrievalLog{
		ID:        uuid.NewString(),
		Type:      t,
		Title:     title,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Status:    status,
	}
}

// NewChunkLog is NewLog with retrieved chunks attached.
func NewChunkLog(t LogType, title string, data LogData, status LogStatus, chunks []DocumentChunk) RetrievalLog {
	l := NewLog(t, title, data, status)
	l.Chunks = chunks
	return l
}
