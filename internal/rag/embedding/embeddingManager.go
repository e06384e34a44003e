package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/metrics"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

// Embedder maps text to vectors; queries and documents use the same model.
type Embedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Loader creates the backing embedder, typically by connecting to a model runtime.
type Loader func(ctx context.Context) (Embedder, error)

// Manager is the process wide embedder. The backend is created on first use
// and a failed load is retried on the next call.
type Manager struct {
	mu       sync.Mutex
	loader   Loader
	embedder Embedder
	model    string
	logger   *logger_i.Logger
}

var _ Embedder = (*Manager)(nil)

func NewManager(model string, loader Loader) *Manager {
	return &Manager{
		loader: loader,
		model:  model,
		logger: logger_i.NewLogger("embedding_manager"),
	}
}

func (m *Manager) Model() string {
	return m.model
}

// Preload forces the backend to load now instead of on the first request.
func (m *Manager) Preload(ctx context.Context) error {
	_, err := m.get(ctx)
	return err
}

func (m *Manager) get(ctx context.Context) (Embedder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.embedder != nil {
		return m.embedder, nil
	}

	start := time.Now()
	e, err := m.loader(ctx)
	metrics.CaptureExecutionMetrics("embedding_load", time.Since(start))
	if err != nil {
		m.logger.WithTrace(ctx).Error("Embedding model failed to load", "model", m.model, "error", err)
		return nil, fmt.Errorf("%w: loading %s: %w", commonModels.ErrIndexUnavailable, m.model, err)
	}
	if e == nil {
		return nil, fmt.Errorf("%w: loader for %s returned no embedder", commonModels.ErrIndexUnavailable, m.model)
	}
	m.logger.Info("Embedding model loaded", "model", m.model)
	m.embedder = e
	return e, nil
}

func (m *Manager) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	e, err := m.get(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding_query", time.Since(start)) }()

	vec, err := e.EmbedQuery(ctx, query)
	if err != nil {
		return nil, unavailable(err)
	}
	return vec, nil
}

func (m *Manager) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	e, err := m.get(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding_batch", time.Since(start)) }()

	vectors, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, unavailable(err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", commonModels.ErrIndexUnavailable, len(vectors), len(texts))
	}
	return vectors, nil
}

func unavailable(err error) error {
	if errors.Is(err, commonModels.ErrIndexUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", commonModels.ErrIndexUnavailable, err)
}
