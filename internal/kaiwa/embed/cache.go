package embed

import (
	"context"
	"log/slog"
	"sync"
)

// Store persists pattern-text to vector mappings for the embedding cache.
//
// Keys are the literal pattern strings across all intents. Identical
// patterns under different intents deliberately share one entry: the vector
// is text-derived, so identical text must embed identically.
type Store interface {
	// Get returns the cached vector for text and whether it was present.
	Get(ctx context.Context, text string) ([]float32, bool, error)
	// Put stores the vector for text. Entries are never evicted.
	Put(ctx context.Context, text string, vector []float32) error
}

// MemoryStore is the default in-process Store: a mutex-guarded map that
// lives for the lifetime of the chatbot instance.
type MemoryStore struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vectors: make(map[string][]float32)}
}

// Get returns the cached vector for text and whether it was present.
func (s *MemoryStore) Get(_ context.Context, text string) ([]float32, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, ok := s.vectors[text]
	return vec, ok, nil
}

// Put stores the vector for text.
func (s *MemoryStore) Put(_ context.Context, text string, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors[text] = vector
	return nil
}

// Len returns the number of cached vectors.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

// Compile-time interface satisfaction check.
var _ Store = (*MemoryStore)(nil)

// Cache memoizes Embedder outputs for intent patterns. Live user messages
// are never routed through it. Only pattern lookups are, populated lazily
// on the first match attempt that needs them.
//
// A Store failure degrades to a recompute (and, on Put, to a skipped write);
// it never fails the lookup.
type Cache struct {
	store    Store
	embedder Embedder
	logger   *slog.Logger
}

// NewCache returns a Cache combining store and embedder. If logger is nil,
// the default slog logger is used.
func NewCache(store Store, embedder Embedder, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: store, embedder: embedder, logger: logger}
}

// Pattern returns the embedding for a pattern text, computing and caching it
// on first use. The returned error reflects only the embedding computation;
// cache errors are logged and absorbed.
func (c *Cache) Pattern(ctx context.Context, text string) ([]float32, error) {
	vec, ok, err := c.store.Get(ctx, text)
	if err != nil {
		c.logger.Warn("embed: cache read failed, recomputing", "err", err)
	} else if ok {
		return vec, nil
	}

	vec, err = c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, nil
	}

	if err := c.store.Put(ctx, text, vec); err != nil {
		c.logger.Warn("embed: cache write failed", "err", err)
	}
	return vec, nil
}
