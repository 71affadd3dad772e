// Package respond turns a matched intent into a user-facing reply: it
// builds the persona prompt, invokes the completion Responder, and falls
// back to the intent's canned responses when the completion is empty or the
// call fails.
package respond

import "context"

// Responder produces a natural-language completion for a constructed prompt.
//
// Implementations must be safe for concurrent use. When an implementation is
// unavailable (e.g. network error), it should return a descriptive error;
// callers degrade gracefully to a canned response.
type Responder interface {
	// Complete sends the system and user prompts to the underlying LLM and
	// returns the completion text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// NoopResponder is a stub Responder that returns empty completions, forcing
// the canned-response fallback everywhere. Useful for tests and for running
// without provider credentials.
type NoopResponder struct{}

// Complete returns an empty completion with no error.
func (NoopResponder) Complete(_ context.Context, _, _ string) (string, error) {
	return "", nil
}

// Compile-time interface satisfaction check.
var _ Responder = NoopResponder{}
