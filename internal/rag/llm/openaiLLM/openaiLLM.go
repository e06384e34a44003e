// Package openaiLLM generates answers through an OpenAI-compatible chat completions endpoint.
package openaiLLM

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/llm"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var _ llm.Provider = (*client)(nil)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

type client struct {
	api   openai.Client
	model string
}

func Loader(cfg Config) llm.Loader {
	return func(context.Context) (llm.Provider, error) {
		if cfg.APIKey == "" {
			return nil, errors.New("openai api key is not set")
		}
		opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Model == "" {
			cfg.Model = config.OpenAIModelName
		}
		return &client{api: openai.NewClient(opts...), model: cfg.Model}, nil
	}
}

func (c *client) Generate(ctx context.Context, req llm.Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(req.Prompt)},
		Temperature: openai.Float(float64(req.Temperature)),
	}
	if req.MaxNewTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxNewTokens))
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %w", commonModels.ErrGenerationUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
