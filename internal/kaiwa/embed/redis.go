package embed

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces pattern vectors in the shared Redis keyspace.
const redisKeyPrefix = "kaiwa:pattern:"

// RedisStore is a Redis-backed Store. Vectors are stored as little-endian
// float32 binary blobs, one key per pattern, without expiry, so the cache is
// never evicted and multiple chatbot instances can share one warm cache.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore returns a Store backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the cached vector for text and whether it was present.
func (s *RedisStore) Get(ctx context.Context, text string) ([]float32, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+text).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("embed: redis get: %w", err)
	}
	vec, err := decodeVector(raw)
	if err != nil {
		return nil, false, fmt.Errorf("embed: redis get: %w", err)
	}
	return vec, true, nil
}

// Put stores the vector for text without expiry.
func (s *RedisStore) Put(ctx context.Context, text string, vector []float32) error {
	if err := s.client.Set(ctx, redisKeyPrefix+text, encodeVector(vector), 0).Err(); err != nil {
		return fmt.Errorf("embed: redis set: %w", err)
	}
	return nil
}

// Compile-time interface satisfaction check.
var _ Store = (*RedisStore)(nil)

// encodeVector packs a float32 slice into little-endian binary.
func encodeVector(vec []float32) []byte {
	out := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// decodeVector unpacks a little-endian binary blob into a float32 slice.
func decodeVector(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("malformed vector blob: %d bytes", len(raw))
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec, nil
}
