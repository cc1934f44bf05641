package usecase

import (
	"context"
	"sync"
	"time"

	"orchestratai-core/internal/domain/entity"
)

// Configurable collaborator stubs shared by the usecase tests.

type stubProvider struct {
	content   string
	tokensIn  int
	tokensOut int
	cost      float64
	err       error
	delay     time.Duration

	mu    sync.Mutex
	calls [][]entity.Message
}

func (s *stubProvider) Complete(ctx context.Context, messages []entity.Message) (*entity.CompletionResult, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, messages)
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	content := s.content
	if content == "" {
		content = "stub response"
	}
	return &entity.CompletionResult{
		Content:   content,
		Model:     "stub-model",
		TokensIn:  s.tokensIn,
		TokensOut: s.tokensOut,
		Cost:      s.cost,
	}, nil
}

func (s *stubProvider) lastCall() []entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) CreateEmbedding(_ context.Context, _ string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.vector != nil {
		return s.vector, nil
	}
	return []float32{1, 0, 0}, nil
}

type stubVectorSearch struct {
	docs []entity.ScoredDocument
	err  error
}

func (s *stubVectorSearch) SearchWithScores(_ context.Context, _ string, _ int) ([]entity.ScoredDocument, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.docs, nil
}

type stubCache struct {
	payload    *entity.CachePayload
	similarity float64
	getErr     error
	setErr     error

	mu   sync.Mutex
	sets []entity.CachePayload
}

func (s *stubCache) Get(_ context.Context, _ []float32, _ float64) (*entity.CachePayload, float64, error) {
	if s.getErr != nil {
		return nil, 0, s.getErr
	}
	if s.payload == nil {
		return nil, 0.0, nil
	}
	return s.payload, s.similarity, nil
}

func (s *stubCache) Set(_ context.Context, _ []float32, payload entity.CachePayload) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.mu.Lock()
	s.sets = append(s.sets, payload)
	s.mu.Unlock()
	return nil
}

func (s *stubCache) setCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets)
}

type stubLimiter struct {
	allowed    bool
	checkErr   error
	mu         sync.Mutex
	increments int
}

func (s *stubLimiter) CheckLimit(_ context.Context, _ string) (bool, error) {
	if s.checkErr != nil {
		return false, s.checkErr
	}
	return s.allowed, nil
}

func (s *stubLimiter) Increment(_ context.Context, _ string, _ int) error {
	s.mu.Lock()
	s.increments++
	s.mu.Unlock()
	return nil
}

// funcWorker adapts a function to the Worker contract.
type funcWorker func(ctx context.Context, req entity.ChatRequest) (*entity.ChatResponse, error)

func (f funcWorker) Handle(ctx context.Context, req entity.ChatRequest) (*entity.ChatResponse, error) {
	return f(ctx, req)
}
