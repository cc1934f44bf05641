package client

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"orchestratai-core/internal/domain/entity"
)

// GeminiClient adapts one Gemini model to the text-completion contract.
// The system-role message becomes the model's system instruction; user and
// assistant turns keep their order.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(c *genai.Client, model string) *GeminiClient {
	return &GeminiClient{client: c, model: model}
}

func (g *GeminiClient) Complete(ctx context.Context, messages []entity.Message) (*entity.CompletionResult, error) {
	var config *genai.GenerateContentConfig
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case entity.RoleSystem:
			config = &genai.GenerateContentConfig{
				SystemInstruction: genai.NewContentFromText(m.Content, genai.RoleUser),
			}
		case entity.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	content := result.Text()
	if content == "" {
		return nil, entity.ErrEmptyCompletion
	}

	var tokensIn, tokensOut int
	if usage := result.UsageMetadata; usage != nil {
		tokensIn = int(usage.PromptTokenCount)
		tokensOut = int(usage.CandidatesTokenCount)
	}

	return &entity.CompletionResult{
		Content:   content,
		Model:     g.model,
		TokensIn:  tokensIn,
		TokensOut: tokensOut,
		Cost:      dollarCost(g.model, tokensIn, tokensOut),
	}, nil
}
