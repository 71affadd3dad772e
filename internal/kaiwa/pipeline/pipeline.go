// Package pipeline orchestrates the semantic-match flow: score the message
// against the intent catalog, apply the confidence threshold, generate a
// detailed reply, and absorb every failure into a well-formed fallback
// result. Match is the sole contract exposed to surrounding applications.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/bdobrica/Kaiwa/common/trace"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/intent"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/match"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/observability"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/respond"
)

// DefaultThreshold is the minimum confidence required to accept a semantic
// match; anything below resolves to the fallback intent.
const DefaultThreshold = 0.6

// Result is the structured outcome of one match: the resolved intent tag,
// the confidence in [0, 1], and the user-facing response text.
type Result struct {
	Tag        string  `json:"tag"`
	Confidence float64 `json:"confidence"`
	Response   string  `json:"response"`
}

// Config holds the pipeline's collaborators and policy knobs.
type Config struct {
	// Catalog is the shared intent catalog.
	Catalog *intent.Catalog
	// Matcher scores messages against the catalog.
	Matcher *match.Matcher
	// Composer generates detailed replies for accepted matches.
	Composer *respond.Composer
	// Threshold is the minimum accepted confidence.
	// Defaults to DefaultThreshold when zero or negative.
	Threshold float64
	// FallbackTag overrides the reserved fallback tag.
	// Defaults to intent.FallbackTag when empty.
	FallbackTag string
	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// Pipeline wires the matcher, the confidence threshold, the reply composer,
// and the fallback policy into one entry point.
type Pipeline struct {
	catalog     *intent.Catalog
	matcher     *match.Matcher
	composer    *respond.Composer
	threshold   float64
	fallbackTag string
	logger      *slog.Logger
}

// New returns a Pipeline for the given configuration.
func New(cfg Config) *Pipeline {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.FallbackTag == "" {
		cfg.FallbackTag = intent.FallbackTag
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{
		catalog:     cfg.Catalog,
		matcher:     cfg.Matcher,
		composer:    cfg.Composer,
		threshold:   cfg.Threshold,
		fallbackTag: cfg.FallbackTag,
		logger:      cfg.Logger,
	}
}

// Match resolves message to an intent and a reply. It never returns an
// error: collaborator failures degrade locally (zero vector, canned
// response) and anything unexpected in the match path is converted
// wholesale to the fallback result.
func (p *Pipeline) Match(ctx context.Context, message string) (result Result) {
	ctx, _ = trace.Ensure(ctx)
	logger := observability.WithTrace(ctx, p.logger)
	start := time.Now()

	// The outward contract guarantees a well-formed result for every input.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline: match panicked, returning fallback", "panic", r)
			result = p.Fallback()
		}
	}()

	tag, confidence := p.matcher.BestIntent(ctx, message)
	if confidence < p.threshold {
		logger.Info("pipeline: below confidence threshold, using fallback",
			"tag", tag, "confidence", confidence,
			"threshold", p.threshold, "duration", time.Since(start))
		return p.Fallback()
	}

	response := p.composer.DetailedReply(ctx, message, tag)
	logger.Info("pipeline: match resolved",
		"tag", tag, "confidence", confidence, "duration", time.Since(start))

	return Result{Tag: tag, Confidence: confidence, Response: response}
}

// Fallback returns the unified "don't know" / "something broke" result: the
// fallback tag, zero confidence, and a canned (or literal) reply.
func (p *Pipeline) Fallback() Result {
	return Result{
		Tag:        p.fallbackTag,
		Confidence: 0,
		Response:   p.catalog.FallbackResponse(p.fallbackTag),
	}
}

// AddTrainingExample appends message to the pattern list of the intent
// identified by tag. Returns false when the tag is unknown. The embedding
// cache is not touched: the new pattern is embedded lazily on the first
// match attempt that needs it.
func (p *Pipeline) AddTrainingExample(message, tag string) bool {
	ok := p.catalog.AddPattern(message, tag)
	if ok {
		p.logger.Info("pipeline: training example added", "tag", tag)
	} else {
		p.logger.Warn("pipeline: training example ignored, unknown tag", "tag", tag)
	}
	return ok
}
