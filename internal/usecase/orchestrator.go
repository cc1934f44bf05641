package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"orchestratai-core/internal/domain/entity"
	"orchestratai-core/internal/domain/repository"
)

const guideSystemPrompt = `You are the OrchestratAI assistant orchestrator.
Provide helpful, concise responses about your capabilities.
You coordinate specialized agents for domain-specific questions.`

// Providers maps each orchestration role to its completion provider.
// Roles may share one provider or use differently priced models.
type Providers struct {
	Analysis repository.LLMProvider
	Guide    repository.LLMProvider
	Direct   repository.LLMProvider
	RAG      repository.LLMProvider
	CAG      repository.LLMProvider
	Hybrid   repository.LLMProvider
}

// Orchestrator is the core engine: it classifies intent, selects a route,
// runs the route's fallback chain, and decorates the winning response with
// routing provenance.
type Orchestrator struct {
	classifier *IntentClassifier
	guide      repository.LLMProvider
	direct     *DirectWorker
	rag        *RAGWorker
	cag        *CAGWorker
	hybrid     *HybridWorker
	limiter    repository.TokenLimiter
}

// NewOrchestrator wires the workers. vectorStore and limiter may be nil;
// cache and embedder are required by the CAG and Hybrid strategies.
func NewOrchestrator(
	providers Providers,
	cache repository.ResponseCache,
	vectorStore repository.VectorSearch,
	embedder repository.Embedder,
	limiter repository.TokenLimiter,
) *Orchestrator {
	rag := NewRAGWorker(providers.RAG, vectorStore)
	return &Orchestrator{
		classifier: NewIntentClassifier(providers.Analysis),
		guide:      providers.Guide,
		direct:     NewDirectWorker(providers.Direct),
		rag:        rag,
		cag:        NewCAGWorker(providers.CAG, cache, embedder, vectorStore),
		hybrid:     NewHybridWorker(providers.Hybrid, rag, cache, embedder),
		limiter:    limiter,
	}
}

// Execute processes one chat request end to end.
func (o *Orchestrator) Execute(ctx context.Context, req entity.ChatRequest) (*entity.ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if o.limiter != nil {
		allowed, err := o.limiter.CheckLimit(ctx, req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("token limiter check failed: %w", err)
		}
		if !allowed {
			return nil, entity.ErrTokenBudgetExceeded
		}
	}

	analysis := o.classifier.Classify(ctx, req.Message)
	route := DecideRoute(analysis.Intent, req.Message)
	log.Printf("[ORCHESTRATOR] intent=%s confidence=%.2f route=%s", analysis.Intent, analysis.Confidence, route)

	var resp *entity.ChatResponse
	if route == entity.RouteGuide {
		guided, err := o.guideUser(ctx, req, analysis)
		if err != nil {
			return nil, fmt.Errorf("guide mode failed: %w", err)
		}
		resp = guided
	} else {
		resp = executeWithFallback(ctx, o.chainFor(route), req)
		o.decorate(resp, analysis, route)
	}

	if o.limiter != nil && resp.Metrics.TokensUsed > 0 {
		// Usage accounting runs in the background: the request context may
		// be gone by the time the write lands.
		sessionID := req.SessionID
		tokens := resp.Metrics.TokensUsed
		go func() {
			if err := o.limiter.Increment(context.Background(), sessionID, tokens); err != nil {
				log.Printf("[ORCHESTRATOR] usage increment failed: %v", err)
			}
		}()
	}

	return resp, nil
}

// chainFor returns the fixed fallback chain for a delegation route.
func (o *Orchestrator) chainFor(route entity.Route) []chainEntry {
	switch route {
	case entity.RouteHybrid:
		return []chainEntry{
			{name: "hybrid", worker: o.hybrid},
			{name: "rag", worker: o.rag},
			{name: "cag", worker: o.cag},
			{name: "direct", worker: o.direct},
		}
	case entity.RouteRAG:
		return []chainEntry{
			{name: "rag", worker: o.rag},
			{name: "cag", worker: o.cag},
			{name: "direct", worker: o.direct},
		}
	case entity.RouteBilling:
		return []chainEntry{
			{name: "cag", worker: o.cag.ForIntent(entity.IntentPricingQuestion)},
			{name: "direct", worker: o.direct},
		}
	case entity.RoutePolicy:
		return []chainEntry{
			{name: "cag", worker: o.cag.ForIntent(entity.IntentPolicyQuestion)},
			{name: "direct", worker: o.direct},
		}
	default:
		return []chainEntry{
			{name: "direct", worker: o.direct},
		}
	}
}

// guideUser answers meta questions directly, without delegating to any
// worker. Terminal node: no fallback chain.
func (o *Orchestrator) guideUser(ctx context.Context, req entity.ChatRequest, analysis Analysis) (*entity.ChatResponse, error) {
	start := time.Now()

	result, err := o.guide.Complete(ctx, []entity.Message{
		{Role: entity.RoleSystem, Content: guideSystemPrompt},
		{Role: entity.RoleUser, Content: req.Message},
	})
	if err != nil {
		return nil, err
	}

	routingLog := entity.NewLog(
		entity.LogRouting,
		"Orchestrator handled query directly (guide mode)",
		entity.RoutingDecisionData{
			Intent:      analysis.Intent,
			Confidence:  analysis.Confidence,
			TargetAgent: string(entity.AgentOrchestrator),
			Reasoning:   analysis.Reasoning,
		},
		entity.LogSuccess,
	)

	return &entity.ChatResponse{
		Message:    result.Content,
		Agent:      entity.AgentOrchestrator,
		Confidence: analysis.Confidence,
		Logs:       []entity.RetrievalLog{routingLog},
		Metrics: entity.ChatMetrics{
			TokensUsed:  result.TokensIn + result.TokensOut,
			Cost:        result.Cost,
			Latency:     time.Since(start).Milliseconds(),
			CacheStatus: entity.CacheNone,
		},
		AgentStatus: entity.AgentStatusWith(entity.AgentOrchestrator),
	}, nil
}

var routeDisplayNames = map[entity.Route]string{
	entity.RouteHybrid:  "Hybrid",
	entity.RouteRAG:     "RAG",
	entity.RouteBilling: "Billing (CAG)",
	entity.RoutePolicy:  "Policy (CAG)",
	entity.RouteDirect:  "Direct",
}

// decorate prepends the route-decision log, unless the executor already
// opened the trail with fallback or chain-error provenance.
func (o *Orchestrator) decorate(resp *entity.ChatResponse, analysis Analysis, route entity.Route) {
	for _, l := range resp.Logs {
		switch l.Data.(type) {
		case entity.FallbackData, entity.ChainErrorData:
			return
		}
	}

	target := strings.TrimPrefix(string(route), "delegate_")
	display, ok := routeDisplayNames[route]
	if !ok {
		display = target
	}
	routingLog := entity.NewLog(
		entity.LogRouting,
		fmt.Sprintf("Orchestrator routed to %s agent", display),
		entity.RoutingDecisionData{
			Intent:      analysis.Intent,
			Confidence:  analysis.Confidence,
			TargetAgent: target,
			Reasoning:   analysis.Reasoning,
		},
		entity.LogSuccess,
	)
	resp.Logs = append([]entity.RetrievalLog{routingLog}, resp.Logs...)
}
