package embedding

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cached memoizes embeddings per text. Repeated feedback and repeated search
// queries skip the underlying embedder.
type Cached struct {
	inner Embedder
	cache *cache.Cache
}

// NewCached wraps inner with a cache whose entries expire after ttl
// (10 minutes when ttl <= 0).
func NewCached(inner Embedder, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cached{inner: inner, cache: cache.New(ttl, 2*ttl)}
}

func (c *Cached) Name() string { return c.inner.Name() }

func (c *Cached) Dimension() int { return c.inner.Dimension() }

// Prepare refits the inner embedder and drops every cached vector, since the
// embedding space may have changed.
func (c *Cached) Prepare(corpus []string) error {
	if err := c.inner.Prepare(corpus); err != nil {
		return err
	}
	c.cache.Flush()
	return nil
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float64, error) {
	if x, found := c.cache.Get(text); found {
		return append([]float64(nil), x.([]float64)...), nil
	}
	v, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(text, append([]float64(nil), v...), cache.DefaultExpiration)
	return v, nil
}

// Len returns the number of cached vectors.
func (c *Cached) Len() int { return c.cache.ItemCount() }
