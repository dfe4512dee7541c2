package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recall/pkg/log"
)

// MemoryConfig tunes the retrieval and ranking policy of the memory engine.
// The defaults match the documented behavior: candidates below the
// similarity threshold are discarded, survivors are re-ranked by
// 0.7*similarity + 0.3*recency over a 24h decay window.
type MemoryConfig struct {
	SimilarityThreshold float64       `env:"RECALL_MEMORY_SIMILARITY_THRESHOLD" envDefault:"0.70"`
	SimilarityWeight    float64       `env:"RECALL_MEMORY_SIMILARITY_WEIGHT" envDefault:"0.7"`
	RecencyWeight       float64       `env:"RECALL_MEMORY_RECENCY_WEIGHT" envDefault:"0.3"`
	RecencyWindow       time.Duration `env:"RECALL_MEMORY_RECENCY_WINDOW" envDefault:"24h"`

	// SearchLimit is the default number of ranked results handed to the agent.
	SearchLimit int `env:"RECALL_MEMORY_SEARCH_LIMIT" envDefault:"5"`

	// EnumerationPageSize bounds whole-user enumeration and filtered deletes.
	EnumerationPageSize int `env:"RECALL_MEMORY_PAGE_SIZE" envDefault:"1000"`

	// History fusion window: number of trailing transcript messages and the
	// token budget the rendered context must fit into.
	HistoryWindow      int `env:"RECALL_HISTORY_WINDOW" envDefault:"15"`
	HistoryTokenBudget int `env:"RECALL_HISTORY_TOKEN_BUDGET" envDefault:"2000"`
}

func NewMemoryConfig(ctx context.Context) *MemoryConfig {
	c := &MemoryConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Memory config")
	}
	return c
}
