package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/recall/pkg/env"
)

func TestMemoryConfigDefaults(t *testing.T) {
	cfg := NewMemoryConfig(context.Background())
	require.NotNil(t, cfg)

	assert.Equal(t, 0.70, cfg.SimilarityThreshold)
	assert.Equal(t, 0.7, cfg.SimilarityWeight)
	assert.Equal(t, 0.3, cfg.RecencyWeight)
	assert.Equal(t, 24*time.Hour, cfg.RecencyWindow)
	assert.Equal(t, 5, cfg.SearchLimit)
	assert.Equal(t, 15, cfg.HistoryWindow)
	assert.Equal(t, 2000, cfg.HistoryTokenBudget)
}

func TestMemoryConfigOverrides(t *testing.T) {
	t.Setenv("RECALL_MEMORY_SIMILARITY_THRESHOLD", "0.5")
	t.Setenv("RECALL_MEMORY_RECENCY_WINDOW", "1h")
	t.Setenv("RECALL_HISTORY_WINDOW", "30")

	cfg := NewMemoryConfig(context.Background())

	assert.Equal(t, 0.5, cfg.SimilarityThreshold)
	assert.Equal(t, time.Hour, cfg.RecencyWindow)
	assert.Equal(t, 30, cfg.HistoryWindow)
}

func TestAppConfigPaths(t *testing.T) {
	t.Setenv("RECALL_RUNTIME_PATH", "/tmp/recall-test")

	cfg := NewAppConfig(context.Background())

	assert.Equal(t, "/tmp/recall-test/recall.db", cfg.GetDatabasePath())
	assert.Equal(t, "/tmp/recall-test/memories", cfg.GetVectorStorePath())
	assert.Equal(t, "/tmp/recall-test/SYSTEM.md", cfg.GetSystemPromptPath())
}

// Every AppConfig knob written into a generated .env must be read by some
// component; a parsed-but-unused variable misleads whoever edits the file.
func TestAppConfigEnvSurface(t *testing.T) {
	content, err := env.MarshalEnv(NewAppConfig(context.Background()))
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{
			"RECALL_RUNTIME_PATH=.recall",
			"RECALL_LLM_PROVIDER=openai",
			"RECALL_USER_ID=local",
		},
		strings.Split(strings.TrimSpace(content), "\n"))
}

func TestEmbeddingConfigDefaults(t *testing.T) {
	cfg := NewEmbeddingConfig(context.Background())

	assert.Equal(t, "local", cfg.Provider)
	assert.Equal(t, 1024, cfg.Dimensions)
	assert.Equal(t, int64(4096), cfg.CacheEntries)
}
