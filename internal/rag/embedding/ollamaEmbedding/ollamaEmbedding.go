// Package ollamaEmbedding embeds text with a sentence-transformer served by a local Ollama runtime.
package ollamaEmbedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/customHttpClient"
	"github.com/akolanti/DocRAG/internal/rag/embedding"
)

var _ embedding.Embedder = (*Client)(nil)

const (
	DefaultTimeout = 60 * time.Second
	batchSize      = 64
)

type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

type Client struct {
	http    *http.Client
	baseURL string
	model   string
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.OllamaBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultEmbeddingModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		http:    customHttpClient.NewClient(cfg.Timeout),
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Loader checks the model answers before handing the client to the embedding manager.
func Loader(cfg Config) embedding.Loader {
	return func(ctx context.Context) (embedding.Embedder, error) {
		c := New(cfg)
		if _, err := c.embed(ctx, []string{"warmup"}); err != nil {
			return nil, err
		}
		return c, nil
	}
}

func (c *Client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += batchSize {
		end := min(i+batchSize, len(texts))
		vectors, err := c.embed(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", i, end, err)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (c *Client) embed(ctx context.Context, input []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(msg))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Embeddings) != len(input) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(parsed.Embeddings), len(input))
	}

	vectors := make([][]float32, len(parsed.Embeddings))
	for i, e := range parsed.Embeddings {
		v := make([]float32, len(e))
		for j, x := range e {
			v[j] = float32(x)
		}
		vectors[i] = v
	}
	return vectors, nil
}
