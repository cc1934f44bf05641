package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"orchestratai-core/internal/domain/entity"
	"orchestratai-core/internal/domain/repository"
)

// Analysis is the classifier's verdict on one message. It lives only for
// the duration of the request.
type Analysis struct {
	Intent     entity.Intent `json:"intent"`
	Confidence float64       `json:"confidence"`
	Reasoning  string        `json:"reasoning"`
}

const classifyPrompt = `Analyze this user query and classify the intent:

Query: "%s"

Intent types:
- META_QUESTION: Questions about what you can do, your capabilities, how you work
- COMPLEX_QUESTION: Multi-step queries, technical deep-dives requiring synthesis of multiple sources
- SIMPLE_CHAT: Greetings, small talk, simple conversational queries
- DOMAIN_QUESTION: Questions requiring domain knowledge, document retrieval, or technical info
- POLICY_QUESTION: Questions about policies, rules, or compliance
- PRICING_QUESTION: Questions about pricing, costs, billing, or refunds

Respond with JSON only:
{
    "intent": "META_QUESTION" | "COMPLEX_QUESTION" | "SIMPLE_CHAT" | "DOMAIN_QUESTION" | "POLICY_QUESTION" | "PRICING_QUESTION",
    "confidence": 0.0-1.0,
    "reasoning": "brief explanation"
}`

// IntentClassifier issues one completion call per request to classify the
// user's intent.
type IntentClassifier struct {
	provider repository.LLMProvider
}

func NewIntentClassifier(provider repository.LLMProvider) *IntentClassifier {
	return &IntentClassifier{provider: provider}
}

// Classify never fails: any provider or parse problem yields the safe
// default analysis so that classification trouble cannot abort the
// pipeline.
func (c *IntentClassifier) Classify(ctx context.Context, message string) Analysis {
	prompt := fmt.Sprintf(classifyPrompt, message)

	result, err := c.provider.Complete(ctx, []entity.Message{
		{Role: entity.RoleUser, Content: prompt},
	})
	if err != nil {
		return fallbackAnalysis()
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(stripCodeFence(result.Content)), &analysis); err != nil {
		return fallbackAnalysis()
	}
	if analysis.Intent == "" {
		return fallbackAnalysis()
	}
	return analysis
}

func fallbackAnalysis() Analysis {
	return Analysis{
		Intent:     entity.IntentDomainQuestion,
		Confidence: 0.5,
		Reasoning:  "Failed to parse analysis, defaulting to domain question",
	}
}

// stripCodeFence unwraps a single leading/trailing markdown code fence,
// with or without a "json" language tag.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	parts := strings.Split(content, "```")
	if len(parts) < 2 {
		return content
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}
