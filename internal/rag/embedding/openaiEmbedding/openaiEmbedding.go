// Package openaiEmbedding embeds text through the OpenAI embeddings API or any compatible endpoint.
package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/DocRAG/internal/rag/embedding"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var _ embedding.Embedder = (*client)(nil)

const maxBatchSize = 512

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

type client struct {
	api   openai.Client
	model string
}

func Loader(cfg Config) embedding.Loader {
	return func(ctx context.Context) (embedding.Embedder, error) {
		if cfg.APIKey == "" {
			return nil, errors.New("openai embedding api key is not set")
		}
		opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		return &client{api: openai.NewClient(opts...), model: cfg.Model}, nil
	}
}

func (c *client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += maxBatchSize {
		vectors, err := c.embed(ctx, texts[i:min(i+maxBatchSize, len(texts))])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (c *client) embed(ctx context.Context, input []string) ([][]float32, error) {
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: input},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(input))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if int(d.Index) >= len(vectors) {
			return nil, fmt.Errorf("openai embedding index %d out of range", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for j, x := range d.Embedding {
			v[j] = float32(x)
		}
		vectors[d.Index] = v
	}
	return vectors, nil
}
