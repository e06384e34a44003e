package llm

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/metrics"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var _ Generator = (*ModelHandle)(nil)

type State int32

const (
	Unloaded State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unloaded"
	}
}

type Options struct {
	MaxNewTokens  int
	Temperature   float32
	MaxInputChars int
}

// ModelHandle owns the generation model. One mutex covers load and inference,
// so concurrent callers never load twice or run the model at the same time.
type ModelHandle struct {
	mu       sync.Mutex
	state    atomic.Int32
	loader   Loader
	provider Provider
	opts     Options
	logger   *logger_i.Logger
}

func NewModelHandle(loader Loader, opts Options) *ModelHandle {
	return &ModelHandle{loader: loader, opts: opts, logger: logger_i.NewLogger("model_handle")}
}

func (h *ModelHandle) State() State {
	return State(h.state.Load())
}

func (h *ModelHandle) setState(s State) {
	h.state.Store(int32(s))
	metrics.SetModelState(int(s))
}

// Preload moves the handle to Ready ahead of the first question.
func (h *ModelHandle) Preload(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.loadLocked(ctx)
	return err
}

func (h *ModelHandle) loadLocked(ctx context.Context) (Provider, error) {
	if h.provider != nil {
		return h.provider, nil
	}
	h.setState(Loading)
	start := time.Now()

	p, err := h.loader(ctx)
	if err != nil {
		h.setState(Unloaded)
		metrics.ModelLoad("failure")
		return nil, fmt.Errorf("%w: %w", commonModels.ErrGenerationUnavailable, err)
	}
	h.provider = p
	h.setState(Ready)
	metrics.ModelLoad("success")
	metrics.CaptureExecutionMetrics("model_load", time.Since(start))
	h.logger.WithTrace(ctx).Info("Generation model ready", "took", time.Since(start))
	return p, nil
}

func (h *ModelHandle) Answer(ctx context.Context, contextText, query string) Result {
	log := h.logger.WithTrace(ctx)
	prompt := BuildPrompt(contextText, query, h.opts.MaxInputChars)

	h.mu.Lock()
	defer h.mu.Unlock()

	p, err := h.loadLocked(ctx)
	if err != nil {
		log.Warn("Model unavailable, answering from template", "error", err)
		return h.fallback(contextText, query)
	}

	start := time.Now()
	out, err := p.Generate(ctx, Request{Prompt: prompt, MaxNewTokens: h.opts.MaxNewTokens, Temperature: h.opts.Temperature})
	metrics.CaptureExecutionMetrics("generation", time.Since(start))
	if err != nil {
		log.Warn("Generation failed, answering from template", "error", err)
		return h.fallback(contextText, query)
	}

	answer := StripEcho(out, prompt)
	if strings.TrimSpace(answer) == "" {
		log.Warn("Model returned nothing, answering from template")
		return h.fallback(contextText, query)
	}
	return Result{Text: answer}
}

func (h *ModelHandle) fallback(contextText, query string) Result {
	metrics.GenerationFallback()
	return Result{Text: TemplateAnswer(contextText, query), UsedFallback: true}
}

// Cleanup releases the model and returns the handle to Unloaded. Safe to call in any state.
func (h *ModelHandle) Cleanup(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if u, ok := h.provider.(Unloader); ok {
		if err = u.Unload(ctx); err != nil {
			h.logger.WithTrace(ctx).Error("Unloading model failed", "error", err)
		}
	}
	h.provider = nil
	h.setState(Unloaded)

	runtime.GC()
	debug.FreeOSMemory()
	h.logger.WithTrace(ctx).Info("Generation model released")
	return err
}
