package pipeline_test

import (
	"context"
	"math"
	"testing"

	"github.com/bdobrica/Kaiwa/internal/kaiwa/embed"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/intent"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/match"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/pipeline"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/respond"
)

// mapEmbedder embeds known texts to fixed vectors and everything else to
// the zero vector, simulating a deterministic provider.
type mapEmbedder struct {
	vectors map[string][]float32
}

func (e *mapEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if vec, ok := e.vectors[text]; ok {
		return vec, nil
	}
	return []float32{0, 0}, nil
}

// panicEmbedder simulates an unexpected failure deep in the match path.
type panicEmbedder struct{}

func (panicEmbedder) Embed(context.Context, string) ([]float32, error) {
	panic("unexpected provider state")
}

// fixedResponder returns a fixed completion; "" simulates provider failure.
type fixedResponder struct{ reply string }

func (r fixedResponder) Complete(context.Context, string, string) (string, error) {
	return r.reply, nil
}

func scenarioCatalog(t *testing.T) *intent.Catalog {
	t.Helper()
	c, err := intent.NewCatalog([]intent.Intent{
		{Tag: "greeting", Patterns: []string{"hello"}, Responses: []string{"Hi there!"}},
		{Tag: "fallback", Patterns: nil, Responses: []string{"I don't understand."}},
	})
	if err != nil {
		t.Fatalf("NewCatalog() returned unexpected error: %v", err)
	}
	return c
}

func newPipeline(t *testing.T, catalog *intent.Catalog, embedder embed.Embedder, responder respond.Responder) *pipeline.Pipeline {
	t.Helper()
	matcher := match.New(match.Config{
		Catalog:   catalog,
		Embedder:  embedder,
		Cache:     embed.NewCache(embed.NewMemoryStore(), embedder, nil),
		Dimension: 2,
	})
	return pipeline.New(pipeline.Config{
		Catalog:  catalog,
		Matcher:  matcher,
		Composer: respond.NewComposer(catalog, responder, nil),
	})
}

// TestMatch_ConfidentMatchWithFailedCompletion covers the documented
// scenario: "hi" lands near the greeting pattern, the completion provider
// returns an empty reply, and the canned response is used while the matched
// tag and confidence are still reported.
func TestMatch_ConfidentMatchWithFailedCompletion(t *testing.T) {
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"hello": {1, 0},
		"hi":    {0.99, 0.14},
	}}
	p := newPipeline(t, scenarioCatalog(t), embedder, fixedResponder{reply: ""})

	got := p.Match(context.Background(), "hi")
	if got.Tag != "greeting" {
		t.Errorf("Tag = %q, want greeting", got.Tag)
	}
	if math.Abs(got.Confidence-0.99) > 0.005 {
		t.Errorf("Confidence = %v, want ≈0.99", got.Confidence)
	}
	if got.Response != "Hi there!" {
		t.Errorf("Response = %q, want the canned greeting", got.Response)
	}
}

// TestMatch_ZeroEmbedderAlwaysFallsBack covers the degraded-mode scenario:
// an embedder that only produces zero vectors yields zero similarity
// everywhere, so every message resolves to the fallback result.
func TestMatch_ZeroEmbedderAlwaysFallsBack(t *testing.T) {
	embedder := &mapEmbedder{vectors: map[string][]float32{}} // everything → [0,0]
	p := newPipeline(t, scenarioCatalog(t), embedder, fixedResponder{reply: "should not be used"})

	got := p.Match(context.Background(), "anything")
	if got.Tag != "fallback" || got.Confidence != 0 {
		t.Errorf("Match() = {%q %v}, want fallback with zero confidence", got.Tag, got.Confidence)
	}
	if got.Response != "I don't understand." {
		t.Errorf("Response = %q, want the fallback canned response", got.Response)
	}
}

func TestMatch_EmptyCatalogAlwaysFallsBack(t *testing.T) {
	embedder := &mapEmbedder{vectors: map[string][]float32{"anything": {1, 0}}}
	catalog := intent.Empty()
	p := newPipeline(t, catalog, embedder, fixedResponder{reply: "unused"})

	got := p.Match(context.Background(), "anything")
	if got.Tag != "fallback" || got.Confidence != 0 {
		t.Errorf("Match() = {%q %v}, want fallback", got.Tag, got.Confidence)
	}
	if got.Response != intent.DefaultFallbackResponse {
		t.Errorf("Response = %q, want %q (no fallback intent in catalog)",
			got.Response, intent.DefaultFallbackResponse)
	}
}

func TestMatch_AlwaysWellFormed(t *testing.T) {
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"hello": {1, 0},
		"hi":    {0.99, 0.14},
	}}
	p := newPipeline(t, scenarioCatalog(t), embedder, fixedResponder{reply: "Generated."})

	for _, message := range []string{"", "hi", "hello", "completely unrelated", "\n\t"} {
		got := p.Match(context.Background(), message)
		if got.Tag == "" {
			t.Errorf("Match(%q).Tag is empty", message)
		}
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Errorf("Match(%q).Confidence = %v, want [0, 1]", message, got.Confidence)
		}
		if got.Response == "" {
			t.Errorf("Match(%q).Response is empty", message)
		}
	}
}

func TestMatch_ThresholdIsExclusive(t *testing.T) {
	// cos([0.6, 0.8], [1, 0]) is exactly 0.6 — at the threshold, not below
	// it, so the match is accepted.
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"hello":    {1, 0},
		"boundary": {0.6, 0.8},
	}}
	p := newPipeline(t, scenarioCatalog(t), embedder, fixedResponder{reply: "Accepted."})

	got := p.Match(context.Background(), "boundary")
	if got.Tag != "greeting" {
		t.Errorf("Tag = %q, want greeting (confidence == threshold is accepted)", got.Tag)
	}
	if got.Response != "Accepted." {
		t.Errorf("Response = %q, want the generated reply", got.Response)
	}
}

func TestMatch_BelowThresholdFallsBack(t *testing.T) {
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"hello": {1, 0},
		"weak":  {0.5, 0.87},
	}}
	p := newPipeline(t, scenarioCatalog(t), embedder, fixedResponder{reply: "unused"})

	got := p.Match(context.Background(), "weak")
	if got.Tag != "fallback" || got.Confidence != 0 {
		t.Errorf("Match() = {%q %v}, want fallback", got.Tag, got.Confidence)
	}
}

func TestMatch_PanicConvertsToFallback(t *testing.T) {
	p := newPipeline(t, scenarioCatalog(t), panicEmbedder{}, fixedResponder{reply: "unused"})

	got := p.Match(context.Background(), "hi")
	if got.Tag != "fallback" || got.Confidence != 0 {
		t.Errorf("Match() after panic = {%q %v}, want fallback", got.Tag, got.Confidence)
	}
	if got.Response != "I don't understand." {
		t.Errorf("Response = %q, want the fallback canned response", got.Response)
	}
}

func TestMatch_CustomThresholdAndFallbackTag(t *testing.T) {
	catalog, err := intent.NewCatalog([]intent.Intent{
		{Tag: "greeting", Patterns: []string{"hello"}, Responses: []string{"Hi there!"}},
		{Tag: "sorry", Patterns: nil, Responses: []string{"Apologies, try again."}},
	})
	if err != nil {
		t.Fatal(err)
	}
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"hello": {1, 0},
		"hi":    {0.99, 0.14},
	}}
	matcher := match.New(match.Config{
		Catalog:   catalog,
		Embedder:  embedder,
		Cache:     embed.NewCache(embed.NewMemoryStore(), embedder, nil),
		Dimension: 2,
	})
	p := pipeline.New(pipeline.Config{
		Catalog:     catalog,
		Matcher:     matcher,
		Composer:    respond.NewComposer(catalog, fixedResponder{reply: "unused"}, nil),
		Threshold:   0.999,
		FallbackTag: "sorry",
	})

	got := p.Match(context.Background(), "hi") // ≈0.99 < 0.999
	if got.Tag != "sorry" {
		t.Errorf("Tag = %q, want the custom fallback tag", got.Tag)
	}
	if got.Response != "Apologies, try again." {
		t.Errorf("Response = %q, want the custom fallback response", got.Response)
	}
}

func TestAddTrainingExample(t *testing.T) {
	catalog := scenarioCatalog(t)
	embedder := &mapEmbedder{vectors: map[string][]float32{"hello": {1, 0}}}
	p := newPipeline(t, catalog, embedder, fixedResponder{reply: "unused"})

	if !p.AddTrainingExample("good morning", "greeting") {
		t.Error("AddTrainingExample(greeting) = false, want true")
	}
	if p.AddTrainingExample("anything", "no-such-tag") {
		t.Error("AddTrainingExample(no-such-tag) = true, want false")
	}

	in, _ := catalog.Get("greeting")
	if len(in.Patterns) != 2 || in.Patterns[1] != "good morning" {
		t.Errorf("patterns after training = %v", in.Patterns)
	}
}

func TestFallback_Shape(t *testing.T) {
	p := newPipeline(t, scenarioCatalog(t), &mapEmbedder{}, fixedResponder{})

	got := p.Fallback()
	if got.Tag != "fallback" || got.Confidence != 0 || got.Response != "I don't understand." {
		t.Errorf("Fallback() = %+v", got)
	}
}
