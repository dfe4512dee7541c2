package embed

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/retry"
)

// OpenAI embeds text through the OpenAI embeddings API. It fails closed:
// any transport or API failure surfaces as ErrEmbeddingUnavailable so the
// caller skips memory instead of crashing the conversation.
type OpenAI struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	retrier    *retry.Retrier
}

func NewOpenAI(apiKey, model string, dimensions int) *OpenAI {
	return &OpenAI{
		client:     openai.NewClient(apiKey),
		model:      openai.EmbeddingModel(model),
		dimensions: dimensions,
		retrier:    retry.NewDefaultRetrier(),
	}
}

func (e *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp openai.EmbeddingResponse
	err := e.retrier.Do(ctx, func() error {
		var reqErr error
		resp, reqErr = e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input:      []string{text},
			Model:      e.model,
			Dimensions: e.dimensions,
		})
		return reqErr
	})
	if err != nil {
		return nil, goerr.Wrap(core.ErrEmbeddingUnavailable, "embedding request failed", goerr.V("cause", err))
	}
	if len(resp.Data) == 0 {
		return nil, goerr.Wrap(core.ErrEmbeddingUnavailable, "embedding response contained no data")
	}

	return resp.Data[0].Embedding, nil
}

func (e *OpenAI) Dimensions() int {
	return e.dimensions
}
