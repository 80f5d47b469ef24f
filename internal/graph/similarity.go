package graph

import "math"

// Cosine computes cosine similarity between two vectors.
// Returns a value in [-1, 1], or 0 for empty, mismatched-length, or
// zero-norm inputs. Degenerate inputs are defined cases, not errors.
func Cosine(a, b []float32) float32 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denom := float32(math.Sqrt(float64(normA)) * math.Sqrt(float64(normB)))
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// clamp01 bounds a similarity into [0, 1]. Float accumulation can drift
// a fraction above 1 for near-identical vectors.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
