// Package match selects the best-fitting intent for a user message by
// brute-force cosine similarity over every intent pattern. The scan is
// O(number of patterns) per request with no index structure, which is
// adequate for small intent catalogs.
package match

import "math"

// Cosine returns the cosine similarity of a and b in [-1, 1]. Mismatched
// lengths, empty inputs, and zero-magnitude vectors all yield 0 — "no
// reliable signal" rather than an error.
//
// Inputs are float32 (the provider wire format); accumulation is float64 to
// avoid precision loss over long vectors.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
