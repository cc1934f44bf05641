package client

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Embedder adapts a Gemini embedding model to the embedding contract.
type Embedder struct {
	client *genai.Client
	model  string
}

func NewEmbedder(c *genai.Client, model string) *Embedder {
	return &Embedder{client: c, model: model}
}

func (e *Embedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	res, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if len(res.Embeddings) == 0 {
		return nil, fmt.Errorf("embedding response carried no vectors")
	}
	return res.Embeddings[0].Values, nil
}
