package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocRAG/internal/api"
	"github.com/akolanti/DocRAG/internal/customHttpClient"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
)

var ErrServerUnavailable = errors.New("orchestrator unavailable")

// Client calls the orchestrator's HTTP api.
type Client struct {
	caller customHttpClient.Caller
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{caller: customHttpClient.Caller{
		Client:  customHttpClient.NewClient(timeout),
		BaseURL: baseURL,
		Service: "orchestrator",
		Kind:    ErrServerUnavailable,
	}}
}

func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var out api.HealthResponse
	return out, c.call(ctx, http.MethodGet, "/health", nil, &out)
}

func (c *Client) CreateSession(ctx context.Context) (api.SessionResponse, error) {
	var out api.SessionResponse
	return out, c.call(ctx, http.MethodPost, "/sessions", nil, &out)
}

func (c *Client) History(ctx context.Context, sessionId string) (api.HistoryResponse, error) {
	var out api.HistoryResponse
	return out, c.call(ctx, http.MethodGet, "/sessions/"+sessionId+"/history", nil, &out)
}

func (c *Client) Ask(ctx context.Context, sessionId, query string) (api.JobResponse, error) {
	var out api.JobResponse
	return out, c.call(ctx, http.MethodPost, "/chat", api.ChatRequest{Query: query, SessionId: sessionId}, &out)
}

func (c *Client) Reset(ctx context.Context, sessionId string) (api.JobResponse, error) {
	var out api.JobResponse
	return out, c.call(ctx, http.MethodPost, "/reset", api.ResetRequest{SessionId: sessionId}, &out)
}

func (c *Client) Cleanup(ctx context.Context) (api.JobResponse, error) {
	var out api.JobResponse
	return out, c.call(ctx, http.MethodPost, "/cleanup", nil, &out)
}

// Ingest uploads the file at path as multipart form data.
func (c *Client) Ingest(ctx context.Context, sessionId, path string) (api.JobResponse, error) {
	var out api.JobResponse

	file, err := os.Open(path)
	if err != nil {
		return out, err
	}
	defer file.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if sessionId != "" {
		if err := mw.WriteField("session_id", sessionId); err != nil {
			return out, err
		}
	}
	part, err := mw.CreateFormFile("document", filepath.Base(path))
	if err != nil {
		return out, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return out, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return out, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.caller.BaseURL, "/")+"/ingest", &buf)
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.caller.Client.Do(req)
	if err != nil {
		return out, fmt.Errorf("%w: %w", ErrServerUnavailable, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decoding reply (%d): %w", resp.StatusCode, err)
	}
	if out.Error != nil {
		return out, fmt.Errorf("%s (%d)", out.Error.Message, out.Error.Code)
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	err := c.caller.Do(ctx, method, path, in, out)
	var remote *commonModels.RemoteError
	if !errors.As(err, &remote) || remote.StatusCode == 0 {
		return err
	}
	//envelope errors carry a friendlier message than the raw body
	var envelope api.JobResponse
	if json.Unmarshal([]byte(remote.Detail), &envelope) == nil && envelope.Error != nil {
		return fmt.Errorf("%s (%d)", envelope.Error.Message, envelope.Error.Code)
	}
	return err
}
