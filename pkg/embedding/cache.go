package embedding

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
)

// TextEmbedder is anything that turns text into a vector
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CachingEmbedder remembers vectors of recently embedded texts. Repeated
// searches for the same query skip the provider round-trip.
type CachingEmbedder struct {
	next  TextEmbedder
	cache *ristretto.Cache
}

// NewCachingEmbedder keeps up to maxEntries vectors in front of next
func NewCachingEmbedder(next TextEmbedder, maxEntries int64) (*CachingEmbedder, error) {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &CachingEmbedder{next: next, cache: cache}, nil
}

func (c *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return append([]float32(nil), v.([]float32)...), nil
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(text, append([]float32(nil), vec...), 1)
	return vec, nil
}

func (c *CachingEmbedder) Close() {
	c.cache.Close()
}
