// Package ollamaLLM runs generation on a model served by a local Ollama runtime.
package ollamaLLM

import (
	"context"
	"net/http"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/customHttpClient"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/llm"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var (
	_ llm.Provider = (*Client)(nil)
	_ llm.Unloader = (*Client)(nil)
)

const DefaultTimeout = 120 * time.Second

type Config struct {
	BaseURL   string
	Model     string
	KeepAlive string
	NumCtx    int
	Timeout   time.Duration
}

type Client struct {
	caller customHttpClient.Caller
	cfg    Config
	logger *logger_i.Logger
}

type generateRequest struct {
	Model     string          `json:"model"`
	Prompt    string          `json:"prompt,omitempty"`
	Stream    bool            `json:"stream"`
	KeepAlive any             `json:"keep_alive,omitempty"`
	Options   *generateOption `json:"options,omitempty"`
}

type generateOption struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float32 `json:"temperature"`
	NumCtx      int     `json:"num_ctx,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.OllamaBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultGenerationModel
	}
	if cfg.KeepAlive == "" {
		cfg.KeepAlive = config.ModelKeepAlive
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		caller: customHttpClient.Caller{
			Client:  customHttpClient.NewClient(cfg.Timeout),
			BaseURL: cfg.BaseURL,
			Service: "ollama",
			Kind:    commonModels.ErrGenerationUnavailable,
		},
		cfg:    cfg,
		logger: logger_i.NewLogger("llm_ollama"),
	}
}

// Loader asks the runtime to bring the model into memory before returning it.
func Loader(cfg Config) llm.Loader {
	return func(ctx context.Context) (llm.Provider, error) {
		c := New(cfg)
		// an empty prompt only loads the model
		err := c.caller.Do(ctx, http.MethodPost, "/api/generate",
			generateRequest{Model: c.cfg.Model, KeepAlive: c.cfg.KeepAlive}, nil)
		if err != nil {
			return nil, err
		}
		c.logger.WithTrace(ctx).Info("Model loaded", "model", c.cfg.Model)
		return c, nil
	}
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	var res generateResponse
	err := c.caller.Do(ctx, http.MethodPost, "/api/generate", generateRequest{
		Model:     c.cfg.Model,
		Prompt:    req.Prompt,
		KeepAlive: c.cfg.KeepAlive,
		Options: &generateOption{
			NumPredict:  req.MaxNewTokens,
			Temperature: req.Temperature,
			NumCtx:      c.cfg.NumCtx,
		},
	}, &res)
	if err != nil {
		return "", err
	}
	return res.Response, nil
}

// Unload evicts the model from the runtime's memory.
func (c *Client) Unload(ctx context.Context) error {
	return c.caller.Do(ctx, http.MethodPost, "/api/generate",
		generateRequest{Model: c.cfg.Model, KeepAlive: 0}, nil)
}
