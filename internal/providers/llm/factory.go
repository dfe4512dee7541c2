package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

// NewProvider creates the configured AIProvider.
func NewProvider(ctx context.Context, appCfg *config.AppConfig, openaiCfg *config.OpenAIConfig) (core.AIProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", appCfg.LLMProvider).
		Str("model", openaiCfg.ChatModel).
		Msg("starting llm provider")

	switch appCfg.LLMProvider {
	case "openai":
		return NewOpenAI(openaiCfg.APIKey, openaiCfg.ChatModel, openaiCfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", appCfg.LLMProvider)
	}
}
