// Package intent holds the chatbot's intent catalog: named categories of
// user request, each with example phrasings (patterns) and canned replies.
//
// The catalog is loaded once at startup from a JSON document and mutated at
// runtime only through AddPattern. The reserved "fallback" tag, when present,
// supplies the replies used whenever no confident match is found or an
// unrecoverable error occurs.
package intent

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// FallbackTag is the reserved tag consulted for low-confidence and error
// outcomes.
const FallbackTag = "fallback"

// DefaultFallbackResponse is returned when the catalog has no fallback
// intent (or the fallback intent has no responses).
const DefaultFallbackResponse = "Sorry, I didn't understand that."

// Intent is one named category of user request.
type Intent struct {
	// Tag uniquely identifies the intent within the catalog.
	Tag string `json:"tag"`
	// Patterns are example phrasings used for semantic matching.
	Patterns []string `json:"patterns"`
	// Responses are canned replies used as style guidance and as the
	// fallback when no generated reply is available.
	Responses []string `json:"responses"`
}

// Catalog is the in-memory set of intents, preserving document order.
//
// Catalog is safe for concurrent use; matching iterates over a snapshot so
// a concurrent AddPattern never invalidates an in-flight scan.
type Catalog struct {
	mu      sync.RWMutex
	intents []Intent
	byTag   map[string]int
}

// NewCatalog builds a Catalog from the given intents, enforcing the
// unique-tag invariant. Intent order is preserved.
func NewCatalog(intents []Intent) (*Catalog, error) {
	byTag := make(map[string]int, len(intents))
	for i, in := range intents {
		if strings.TrimSpace(in.Tag) == "" {
			return nil, fmt.Errorf("intent: intents[%d]: tag must not be empty", i)
		}
		if prev, dup := byTag[in.Tag]; dup {
			return nil, fmt.Errorf("intent: duplicate tag %q (intents[%d] and intents[%d])", in.Tag, prev, i)
		}
		byTag[in.Tag] = i
	}
	cp := make([]Intent, len(intents))
	for i, in := range intents {
		cp[i] = Intent{
			Tag:       in.Tag,
			Patterns:  append([]string(nil), in.Patterns...),
			Responses: append([]string(nil), in.Responses...),
		}
	}
	return &Catalog{intents: cp, byTag: byTag}, nil
}

// Empty returns a catalog with no intents. Matching against it always
// resolves to the fallback tag.
func Empty() *Catalog {
	return &Catalog{byTag: map[string]int{}}
}

// Len returns the number of intents in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.intents)
}

// Get returns the intent for tag and whether it exists.
func (c *Catalog) Get(tag string) (Intent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byTag[tag]
	if !ok {
		return Intent{}, false
	}
	in := c.intents[i]
	return Intent{
		Tag:       in.Tag,
		Patterns:  append([]string(nil), in.Patterns...),
		Responses: append([]string(nil), in.Responses...),
	}, true
}

// Snapshot returns a copy of the catalog contents in document order. The
// returned slice and its pattern/response slices are owned by the caller.
func (c *Catalog) Snapshot() []Intent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Intent, len(c.intents))
	for i, in := range c.intents {
		out[i] = Intent{
			Tag:       in.Tag,
			Patterns:  append([]string(nil), in.Patterns...),
			Responses: append([]string(nil), in.Responses...),
		}
	}
	return out
}

// AddPattern appends message to the pattern list of the intent identified by
// tag. Returns false (no-op) when the tag is not in the catalog. The change
// is in-memory only and is never persisted back to the intents file.
func (c *Catalog) AddPattern(message, tag string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.byTag[tag]
	if !ok {
		return false
	}
	c.intents[i].Patterns = append(c.intents[i].Patterns, message)
	return true
}

// FallbackResponse picks a reply for the low-confidence / error path: a
// uniformly random choice among the responses of the intent identified by
// fallbackTag, or DefaultFallbackResponse when that intent is absent or has
// no responses.
func (c *Catalog) FallbackResponse(fallbackTag string) string {
	in, ok := c.Get(fallbackTag)
	if !ok || len(in.Responses) == 0 {
		return DefaultFallbackResponse
	}
	return in.Responses[rand.IntN(len(in.Responses))]
}

// RandomResponse returns a uniformly random canned response for tag, and
// whether one was available.
func (c *Catalog) RandomResponse(tag string) (string, bool) {
	in, ok := c.Get(tag)
	if !ok || len(in.Responses) == 0 {
		return "", false
	}
	return in.Responses[rand.IntN(len(in.Responses))], true
}
