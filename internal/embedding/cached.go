package embedding

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spboyer/taskqa/internal/cache"
)

// CachedEncoder memoizes another encoder in memory and, when a disk cache is
// attached, across runs.
type CachedEncoder struct {
	inner Encoder
	disk  *cache.Cache

	mu     sync.Mutex
	memo   map[string][]float32
	hits   int
	misses int
}

var _ Encoder = (*CachedEncoder)(nil)

// NewCachedEncoder wraps inner. disk may be nil.
func NewCachedEncoder(inner Encoder, disk *cache.Cache) *CachedEncoder {
	return &CachedEncoder{
		inner: inner,
		disk:  disk,
		memo:  map[string][]float32{},
	}
}

// Encode returns a remembered vector or delegates to the wrapped encoder.
func (c *CachedEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key(c.inner.ModelName(), text)

	c.mu.Lock()
	if v, ok := c.memo[key]; ok {
		c.hits++
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	if c.disk != nil {
		if v, ok := c.disk.Get(key); ok {
			slog.Debug("encoder cache hit", "key", key[:12])
			c.remember(key, v, true)
			return v, nil
		}
	}

	v, err := c.inner.Encode(ctx, text)
	if err != nil {
		return nil, err
	}
	c.remember(key, v, false)

	if c.disk != nil {
		if err := c.disk.Put(key, c.inner.ModelName(), v); err != nil {
			slog.Warn("failed to write encoder cache", "err", err)
		}
	}
	return v, nil
}

func (c *CachedEncoder) remember(key string, v []float32, hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memo[key] = v
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

// ModelName returns the wrapped encoder's model.
func (c *CachedEncoder) ModelName() string {
	return c.inner.ModelName()
}

// Stats returns the number of cache hits and encoder calls so far.
func (c *CachedEncoder) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
