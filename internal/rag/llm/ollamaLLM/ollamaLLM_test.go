package ollamaLLM

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/llm"
)

type recorded struct {
	mu   sync.Mutex
	reqs []map[string]any
}

func (r *recorded) add(m map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, m)
}

func newFakeOllama(t *testing.T, status int) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad body: %v", err)
		}
		rec.add(body)
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"model not found"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "generated text", Done: true})
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestLoaderGenerateUnload(t *testing.T) {
	srv, rec := newFakeOllama(t, http.StatusOK)
	cfg := Config{BaseURL: srv.URL, Model: "gemma:2b", KeepAlive: "10m", NumCtx: 1024, Timeout: time.Second}

	p, err := Loader(cfg)(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	out, err := p.Generate(context.Background(), llm.Request{Prompt: "hi", MaxNewTokens: 150, Temperature: 0.7})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "generated text" {
		t.Errorf("got %q", out)
	}
	if err := p.(llm.Unloader).Unload(context.Background()); err != nil {
		t.Fatalf("unload: %v", err)
	}

	if len(rec.reqs) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(rec.reqs))
	}
	if _, hasPrompt := rec.reqs[0]["prompt"]; hasPrompt {
		t.Errorf("load call should not carry a prompt")
	}
	gen := rec.reqs[1]
	if gen["stream"] != false || gen["prompt"] != "hi" {
		t.Errorf("unexpected generate body %v", gen)
	}
	opts := gen["options"].(map[string]any)
	if opts["num_predict"] != float64(150) || opts["num_ctx"] != float64(1024) {
		t.Errorf("unexpected options %v", opts)
	}
	if rec.reqs[2]["keep_alive"] != float64(0) {
		t.Errorf("unload should send keep_alive 0, got %v", rec.reqs[2]["keep_alive"])
	}
}

func TestLoader_ErrorIsGenerationUnavailable(t *testing.T) {
	srv, _ := newFakeOllama(t, http.StatusNotFound)
	_, err := Loader(Config{BaseURL: srv.URL, Timeout: time.Second})(context.Background())
	if !errors.Is(err, commonModels.ErrGenerationUnavailable) {
		t.Errorf("expected ErrGenerationUnavailable, got %v", err)
	}
}
