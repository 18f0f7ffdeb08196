package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"
	"time"
)

const (
	// DefaultEmbeddingCacheSize bounds the number of cached query vectors.
	DefaultEmbeddingCacheSize = 512
	// DefaultEmbeddingCacheTTL is how long a query vector stays valid.
	DefaultEmbeddingCacheTTL = 30 * time.Minute
)

// EmbeddingCache maps query text to its embedding vector.
// Keys are a sha256 prefix of the normalized text so raw queries are not held as map keys.
type EmbeddingCache struct {
	lru    *LRUCache[string, []float32]
	hits   atomic.Int64
	misses atomic.Int64
}

// EmbeddingCacheStats is a snapshot of cache counters.
type EmbeddingCacheStats struct {
	Hits   int64
	Misses int64
	Size   int
}

// NewEmbeddingCache creates a cache; non-positive arguments use the defaults.
func NewEmbeddingCache(capacity int, ttl time.Duration) *EmbeddingCache {
	if capacity <= 0 {
		capacity = DefaultEmbeddingCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultEmbeddingCacheTTL
	}
	return &EmbeddingCache{lru: NewLRUCache[string, []float32](capacity, ttl)}
}

// Get returns a copy of the cached vector for text.
func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	vec, ok := c.lru.Get(Key(text))
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return cloneVector(vec), true
}

// Put stores a copy of vec for text.
func (c *EmbeddingCache) Put(text string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	c.lru.Set(Key(text), cloneVector(vec), 0)
}

// Stats returns the current counters.
func (c *EmbeddingCache) Stats() EmbeddingCacheStats {
	return EmbeddingCacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.lru.Size(),
	}
}

// Key derives the cache key for text.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:16])
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
