package customHttpClient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
)

const TraceHeader = "X-Trace-Id"

// Caller talks JSON to one sibling service. Any transport failure or non-2xx
// reply comes back as a *commonModels.RemoteError carrying Kind.
type Caller struct {
	Client  *http.Client
	BaseURL string
	Service string
	Kind    error
}

func (c Caller) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", c.Service, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return fmt.Errorf("building %s request: %w", c.Service, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if traceId, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok && traceId != "" {
		req.Header.Set(TraceHeader, traceId)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return &commonModels.RemoteError{Service: c.Service, Kind: c.Kind, Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return &commonModels.RemoteError{Service: c.Service, Kind: c.Kind, Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &commonModels.RemoteError{
			Service:    c.Service,
			StatusCode: resp.StatusCode,
			Detail:     detailOf(raw),
			Kind:       c.Kind,
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &commonModels.RemoteError{Service: c.Service, Kind: c.Kind, Cause: fmt.Errorf("decoding reply: %w", err)}
	}
	return nil
}

func detailOf(raw []byte) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Detail != "" {
		return body.Detail
	}
	return strings.TrimSpace(string(raw))
}
