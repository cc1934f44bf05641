package entity

import "errors"

// Standard domain errors
var (
	ErrTokenBudgetExceeded = errors.New("token budget exceeded for session")
	ErrInvalidRequest      = errors.New("invalid request parameters")
	ErrMalformedCacheEntry = errors.New("cache entry is missing its message payload")
	ErrEmptyCompletion     = errors.New("provider returned an empty completion")
)
