package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocRAG/internal/rag/embedding"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"google.golang.org/genai"
)

var _ embedding.Embedder = (*client)(nil)

const (
	taskQuery    = "RETRIEVAL_QUERY"
	taskDocument = "RETRIEVAL_DOCUMENT"
)

type Config struct {
	APIKey     string
	Model      string
	Dimensions int32
}

type client struct {
	genAi      *genai.Client
	model      string
	dimensions *int32
	logger     *logger_i.Logger
}

// Loader builds the Gemini embedding client on first use.
func Loader(cfg Config) embedding.Loader {
	return func(ctx context.Context) (embedding.Embedder, error) {
		if cfg.APIKey == "" {
			return nil, errors.New("google embedding api key is not set")
		}
		c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI})
		if err != nil {
			return nil, fmt.Errorf("creating google embedding client: %w", err)
		}
		e := &client{
			genAi:  c,
			model:  cfg.Model,
			logger: logger_i.NewLogger("google_embedding"),
		}
		if cfg.Dimensions > 0 {
			e.dimensions = &cfg.Dimensions
		}
		e.logger.Info("Google Embedding client created", "model", cfg.Model)
		return e, nil
	}
}

func (c *client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	res, err := c.doCall(ctx, genai.Text(query), taskQuery)
	if err != nil {
		c.logger.WithTrace(ctx).Error("Error getting query embedding from Google", "error", err)
		return nil, err
	}
	if len(res.Embeddings) == 0 || res.Embeddings[0] == nil {
		return nil, errors.New("google returned no embedding")
	}
	return res.Embeddings[0].Values, nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	log := c.logger.WithTrace(ctx)
	out := make([][]float32, 0, len(texts))

	for i := 0; i < len(texts); i += maxBatchSize {
		end := min(i+maxBatchSize, len(texts))
		res, err := c.doCall(ctx, getContent(texts[i:end]), taskDocument)
		if err != nil && doRetry(err, log) {
			log.Debug("Retrying in 5 seconds")
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			res, err = c.doCall(ctx, getContent(texts[i:end]), taskDocument)
		}
		if err != nil {
			log.Error("Error getting Embeddings from Google", "error", err)
			return nil, err
		}
		vectors, err := collect(res, end-i)
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, task string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: c.dimensions,
		TaskType:             task,
	})
}
