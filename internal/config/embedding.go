package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recall/pkg/log"
)

// EmbeddingConfig selects and sizes the embedding provider. Similarity
// scores are only meaningful relative to the provider actually plugged in,
// so the dimensionality is configuration rather than a constant.
type EmbeddingConfig struct {
	Provider   string `env:"RECALL_EMBEDDING_PROVIDER" envDefault:"local"`
	Model      string `env:"RECALL_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	Dimensions int    `env:"RECALL_EMBEDDING_DIMENSIONS" envDefault:"1024"`

	// CacheEntries caps the embedding cache; 0 disables caching.
	CacheEntries int64 `env:"RECALL_EMBEDDING_CACHE_ENTRIES" envDefault:"4096"`
}

func NewEmbeddingConfig(ctx context.Context) *EmbeddingConfig {
	c := &EmbeddingConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Embedding config")
	}
	return c
}
