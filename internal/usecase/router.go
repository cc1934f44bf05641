package usecase

import (
	"strings"

	"orchestratai-core/internal/domain/entity"
)

// Heuristic keyword sets. These run on the raw text independent of the
// classifier, giving a cheap second signal that can override a
// low-confidence classification toward a clearly simple or complex case.
var (
	complexityKeywords = []string{"explain", "compare", "analyze", "how does", "difference between"}
	smallTalkKeywords  = []string{"hello", "hi", "hey", "thanks", "thank you", "bye", "goodbye"}
)

const complexityLengthThreshold = 100

// DecideRoute maps a classified intent plus text heuristics to a route.
// Pure function; first match wins.
func DecideRoute(intent entity.Intent, message string) entity.Route {
	lower := strings.ToLower(message)
	isComplex := len(message) > complexityLengthThreshold || containsAny(lower, complexityKeywords)
	isSmallTalk := containsAny(lower, smallTalkKeywords)

	switch {
	case intent == entity.IntentMetaQuestion:
		return entity.RouteGuide
	case intent == entity.IntentComplexQuestion || (intent == entity.IntentDomainQuestion && isComplex):
		return entity.RouteHybrid
	case intent == entity.IntentSimpleChat || isSmallTalk:
		return entity.RouteDirect
	case intent == entity.IntentPricingQuestion:
		return entity.RouteBilling
	case intent == entity.IntentPolicyQuestion:
		return entity.RoutePolicy
	case intent == entity.IntentDomainQuestion:
		return entity.RouteRAG
	default:
		return entity.RouteDirect
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
