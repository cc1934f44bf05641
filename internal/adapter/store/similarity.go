package store

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// cosineSimilarity computes dot(a,b) / (|a| * |b|). Identical vectors
// yield 1.0, opposite vectors -1.0. Mismatched or zero-norm inputs score
// 0.0 rather than erroring, so one bad stored vector cannot poison a scan.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	dot := float64(vek32.Dot(a, b))
	normA := math.Sqrt(float64(vek32.Dot(a, a)))
	normB := math.Sqrt(float64(vek32.Dot(b, b)))
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (normA * normB)
}
