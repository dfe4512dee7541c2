package embed

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/sandevgo/recall/internal/core"
)

// Cached decorates an embedder with a ristretto cache keyed by text.
// Embedders are deterministic, so a cached vector is always valid for the
// lifetime of the process.
type Cached struct {
	inner core.Embedder
	cache *ristretto.Cache
}

func NewCached(inner core.Embedder, maxEntries int64) (*Cached, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}

	return &Cached{inner: inner, cache: cache}, nil
}

func (e *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		if vec, ok := v.([]float32); ok {
			return vec, nil
		}
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Set(text, vec, 1)
	return vec, nil
}

func (e *Cached) Dimensions() int {
	return e.inner.Dimensions()
}

func (e *Cached) Close() error {
	e.cache.Close()
	return nil
}
