package embed

import (
	"context"
	"fmt"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

// New creates the configured embedder, wrapped in a cache when enabled.
// openAIKey is only consulted for the "openai" provider.
func New(ctx context.Context, cfg *config.EmbeddingConfig, openAIKey string) (core.Embedder, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Int("dimensions", cfg.Dimensions).
		Msg("starting embedding provider")

	var embedder core.Embedder
	switch cfg.Provider {
	case "local":
		embedder = NewLocal(cfg.Dimensions)
	case "openai":
		if openAIKey == "" {
			return nil, fmt.Errorf("openai embedding provider requires OPENAI_API_KEY")
		}
		embedder = NewOpenAI(openAIKey, cfg.Model, cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}

	if cfg.CacheEntries <= 0 {
		return embedder, nil
	}
	return NewCached(embedder, cfg.CacheEntries)
}
