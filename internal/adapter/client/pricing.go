package client

// modelPricing lists prices in USD per 1000 tokens. Unknown models price
// at zero rather than failing a completion over missing table rows.
type modelPricing struct {
	Prompt     float64
	Completion float64
}

var pricingTable = map[string]modelPricing{
	"gemini-2.5-pro":        {Prompt: 0.00125, Completion: 0.01},
	"gemini-2.5-flash":      {Prompt: 0.0003, Completion: 0.0025},
	"gemini-2.5-flash-lite": {Prompt: 0.0001, Completion: 0.0004},
	"text-embedding-004":    {Prompt: 0.000025},
}

// dollarCost computes the cost of one call. Embedding calls pass
// tokensCompletion = 0.
func dollarCost(model string, tokensPrompt, tokensCompletion int) float64 {
	pricing, ok := pricingTable[model]
	if !ok {
		return 0
	}
	return float64(tokensPrompt)/1000*pricing.Prompt +
		float64(tokensCompletion)/1000*pricing.Completion
}
