package match

import (
	"context"
	"log/slog"
	"time"

	"github.com/bdobrica/Kaiwa/internal/kaiwa/embed"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/intent"
)

// DefaultDimension is the embedding dimension assumed for the degraded-mode
// zero vector when the provider never returned a real one.
const DefaultDimension = 768

// Matcher scores a user message against every intent pattern and returns
// the owning tag of the highest-scoring pattern.
//
// The message is embedded directly through the Embedder on every call;
// pattern embeddings go through the Cache and are computed lazily on the
// first match attempt that needs them.
type Matcher struct {
	catalog   *intent.Catalog
	embedder  embed.Embedder
	cache     *embed.Cache
	dimension int
	logger    *slog.Logger
}

// Config holds the Matcher's collaborators.
type Config struct {
	// Catalog is the intent catalog to score against.
	Catalog *intent.Catalog
	// Embedder embeds live user messages (uncached).
	Embedder embed.Embedder
	// Cache resolves pattern embeddings (lazily computed, never evicted).
	Cache *embed.Cache
	// Dimension is the expected embedding dimension, used only to build the
	// degraded-mode zero vector. Defaults to DefaultDimension.
	Dimension int
	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// New returns a Matcher for the given catalog and embedding collaborators.
func New(cfg Config) *Matcher {
	if cfg.Dimension <= 0 {
		cfg.Dimension = DefaultDimension
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Matcher{
		catalog:   cfg.Catalog,
		embedder:  cfg.Embedder,
		cache:     cfg.Cache,
		dimension: cfg.Dimension,
		logger:    cfg.Logger,
	}
}

// BestIntent returns the tag of the intent owning the pattern most similar
// to message, together with the similarity clamped to [0, 1].
//
// An Embedder failure for the message degrades to a zero vector, which
// scores 0 against every pattern and so routes to fallback at the pipeline
// threshold. That is the intended degraded mode, not a separate error path.
// Ties keep the first pattern that reached the maximum (strict > comparison)
// in catalog storage order.
//
// When the catalog is empty, or no intent has any patterns, BestIntent
// returns (intent.FallbackTag, 0).
func (m *Matcher) BestIntent(ctx context.Context, message string) (string, float64) {
	start := time.Now()

	messageVec, err := m.embedder.Embed(ctx, message)
	if err != nil || len(messageVec) == 0 {
		if err != nil {
			m.logger.Warn("match: message embedding failed, using zero vector", "err", err)
		}
		messageVec = embed.ZeroVector(m.dimension)
	}

	bestTag := ""
	bestScore := -1.0

	for _, in := range m.catalog.Snapshot() {
		for _, pattern := range in.Patterns {
			patternVec, err := m.cache.Pattern(ctx, pattern)
			if err != nil {
				m.logger.Warn("match: pattern embedding failed, scoring zero",
					"tag", in.Tag, "err", err)
				continue
			}
			if sim := Cosine(messageVec, patternVec); sim > bestScore {
				bestScore = sim
				bestTag = in.Tag
			}
		}
	}

	if bestTag == "" {
		return intent.FallbackTag, 0
	}

	confidence := clamp01(bestScore)
	m.logger.Info("match: best semantic match",
		"tag", bestTag, "confidence", confidence, "duration", time.Since(start))
	return bestTag, confidence
}

// clamp01 bounds v to [0, 1]. Cosine similarity is conceptually [-1, 1];
// the reported confidence is practically [0, 1].
func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
