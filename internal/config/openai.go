package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recall/pkg/log"
)

type OpenAIConfig struct {
	APIKey    string `env:"OPENAI_API_KEY,required,notEmpty"`
	ChatModel string `env:"RECALL_OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// BaseURL points the client at any OpenAI-compatible server.
	BaseURL string `env:"RECALL_OPENAI_BASE_URL"`
}

func NewOpenAIConfig(ctx context.Context) *OpenAIConfig {
	c := &OpenAIConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse OpenAI config")
	}
	return c
}
