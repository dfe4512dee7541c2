package llm

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/retry"
)

// OpenAI generates chat completions through the OpenAI API. Custom base
// URLs cover any OpenAI-compatible server (ollama, openrouter, vllm).
type OpenAI struct {
	client  *openai.Client
	model   string
	retrier *retry.Retrier
}

func NewOpenAI(apiKey, model, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		retrier: retry.NewDefaultRetrier(),
	}
}

func (p *OpenAI) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	var resp openai.ChatCompletionResponse
	err := p.retrier.Do(ctx, func() error {
		var reqErr error
		resp, reqErr = p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    p.model,
			Messages: messages,
		})
		return reqErr
	})
	if err != nil {
		return core.Message{}, goerr.Wrap(err, "chat completion failed", goerr.V("model", p.model))
	}
	if len(resp.Choices) == 0 {
		return core.Message{}, goerr.New("chat completion returned no choices", goerr.V("model", p.model))
	}

	return core.Message{
		Role:    core.RoleAssistant,
		Content: resp.Choices[0].Message.Content,
	}, nil
}
