package respond

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bdobrica/Kaiwa/internal/kaiwa/intent"
)

// GenericResponse is the hard-coded reply used when the matched intent is
// unknown or has no canned responses and the completion failed as well.
const GenericResponse = "I'm here to help!"

// systemPrompt establishes the assistant persona and tone for every
// completion call.
const systemPrompt = "You are Kaiwa, a friendly and knowledgeable club assistant. " +
	"You always reply helpfully, in a natural conversational tone, " +
	"adding a bit of context or elaboration when possible. " +
	"Avoid being repetitive or robotic."

// userPromptTmpl embeds the raw message, the identified tag, and the
// intent's example responses as style guidance.
const userPromptTmpl = "The user's message: %s\n" +
	"The identified intent: %s\n" +
	"Example style responses: %s\n\n" +
	"Now write a detailed and friendly response that fits the context."

// Composer builds prompts from the matched intent's canned responses and
// invokes the Responder, degrading to a random canned response when the
// completion is empty or the call fails. It mutates no local state.
type Composer struct {
	catalog   *intent.Catalog
	responder Responder
	logger    *slog.Logger
}

// NewComposer returns a Composer over the given catalog and responder.
// If logger is nil, the default slog logger is used.
func NewComposer(catalog *intent.Catalog, responder Responder, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{catalog: catalog, responder: responder, logger: logger}
}

// DetailedReply generates a conversational reply for message given the
// matched intent tag. An unknown tag proceeds with empty style examples.
// An empty or failed completion falls back to a uniformly random canned
// response for the tag, or GenericResponse when none exists.
func (c *Composer) DetailedReply(ctx context.Context, message, tag string) string {
	in, known := c.catalog.Get(tag)

	styleExamples := ""
	if known {
		styleExamples = strings.Join(in.Responses, ", ")
	}

	userPrompt := fmt.Sprintf(userPromptTmpl, message, tag, styleExamples)

	reply, err := c.responder.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		c.logger.Error("respond: completion failed, using canned response",
			"tag", tag, "err", err)
		return c.canned(tag)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		c.logger.Warn("respond: empty completion, using canned response", "tag", tag)
		return c.canned(tag)
	}
	return reply
}

// canned picks a random canned response for tag, or GenericResponse when
// the intent is unknown or has none.
func (c *Composer) canned(tag string) string {
	if resp, ok := c.catalog.RandomResponse(tag); ok {
		return resp
	}
	return GenericResponse
}
