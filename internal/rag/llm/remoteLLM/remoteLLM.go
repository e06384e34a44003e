// Package remoteLLM asks the model service for answers over http.
package remoteLLM

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/akolanti/DocRAG/internal/api"
	"github.com/akolanti/DocRAG/internal/customHttpClient"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/metrics"
	"github.com/akolanti/DocRAG/internal/rag/llm"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var _ llm.Generator = (*Client)(nil)

type Client struct {
	caller customHttpClient.Caller
	logger *logger_i.Logger
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		caller: customHttpClient.Caller{
			Client:  customHttpClient.NewClient(timeout),
			BaseURL: baseURL,
			Service: "model",
			Kind:    commonModels.ErrGenerationUnavailable,
		},
		logger: logger_i.NewLogger("remote_llm"),
	}
}

// Answer falls back to the local template when the service cannot be reached
// or replies with an error.
func (c *Client) Answer(ctx context.Context, contextText, query string) llm.Result {
	start := time.Now()
	var res api.GenerateResponse
	err := c.caller.Do(ctx, http.MethodPost, "/generate", api.GenerateRequest{Context: contextText, Query: query}, &res)
	metrics.CaptureExecutionMetrics("model_service", time.Since(start))

	if err != nil {
		c.logger.WithTrace(ctx).Warn("Model service unavailable, answering from template", "error", err)
		metrics.GenerationFallback()
		return llm.Result{Text: llm.TemplateAnswer(contextText, query), UsedFallback: true}
	}
	if strings.TrimSpace(res.Response) == "" {
		metrics.GenerationFallback()
		return llm.Result{Text: llm.TemplateAnswer(contextText, query), UsedFallback: true}
	}
	return llm.Result{Text: res.Response, UsedFallback: res.Fallback}
}

func (c *Client) Cleanup(ctx context.Context) error {
	var res api.MessageResponse
	return c.caller.Do(ctx, http.MethodPost, "/cleanup", nil, &res)
}

func (c *Client) Health(ctx context.Context) error {
	return c.caller.Do(ctx, http.MethodGet, "/health", nil, nil)
}
