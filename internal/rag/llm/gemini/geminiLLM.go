package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/llm"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"google.golang.org/genai"
)

var _ llm.Provider = (*llmClient)(nil)

const systemInstruction = "You answer questions about the user's uploaded documents. Use only the given context."

type Config struct {
	APIKey string
	Model  string
}

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

// Loader builds a Gemini client. Nothing is held in local memory, so there is no Unload.
func Loader(cfg Config) llm.Loader {
	return func(ctx context.Context) (llm.Provider, error) {
		if cfg.APIKey == "" {
			return nil, errors.New("gemini api key is not set")
		}
		if cfg.Model == "" {
			cfg.Model = config.GeminiModelName
		}
		c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI})
		if err != nil {
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}
		logger := logger_i.NewLogger("llm_gemini")
		logger.Info("Gemini client created", "model", cfg.Model)
		return &llmClient{client: c, modelName: cfg.Model, logger: logger}, nil
	}
}

func (c *llmClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		Temperature:       genai.Ptr(req.Temperature),
		MaxOutputTokens:   int32(req.MaxNewTokens),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(req.Prompt), contentConfig)
	if err != nil {
		c.logger.WithTrace(ctx).Error("Gemini generation failed", "error", err)
		return "", fmt.Errorf("%w: %w", commonModels.ErrGenerationUnavailable, err)
	}
	return result.Text(), nil
}
