// Package embed provides text-embedding acquisition for semantic matching:
// an Embedder abstraction over the provider HTTP API plus a lazily populated,
// never-evicted cache for intent-pattern vectors.
package embed

import "context"

// Embedder produces vector embeddings for text. Implementations range from
// a no-op stub (tests, disabled deployments) to the OpenAI-compatible HTTP
// provider used in production.
type Embedder interface {
	// Embed produces a vector embedding for the given text.
	// Returns nil with no error when embedding is not available (noop).
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NoopEmbedder is a stub Embedder that returns nil vectors. When wired as
// the active embedder, every message matches nothing and the pipeline
// resolves to the fallback intent — useful for tests and for running the
// HTTP surface without provider credentials.
type NoopEmbedder struct{}

// Embed returns nil with no error, signalling that embedding is unavailable.
func (NoopEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, nil
}

// Compile-time interface satisfaction check.
var _ Embedder = NoopEmbedder{}

// ZeroVector returns an all-zero vector of the given dimension. Callers use
// it as the degraded-mode stand-in when the provider fails: it yields zero
// similarity against every pattern, which naturally routes to fallback.
func ZeroVector(dimension int) []float32 {
	if dimension <= 0 {
		return nil
	}
	return make([]float32, dimension)
}
