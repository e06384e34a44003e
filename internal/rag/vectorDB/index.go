package vectorDB

import (
	"context"
	"fmt"
	"sync"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/embedding"
	"github.com/akolanti/DocRAG/internal/rag/lexical"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var _ Index = (*LocalIndex)(nil)

// LocalIndex embeds and stores chunks in process. Searches share the lock,
// inserts and resets take it exclusively.
type LocalIndex struct {
	mu        sync.RWMutex
	store     Store
	embedder  embedding.Embedder
	retriever Retriever
	logger    *logger_i.Logger
}

func NewLocalIndex(store Store, embedder embedding.Embedder, ranker *lexical.Ranker) *LocalIndex {
	return &LocalIndex{
		store:    store,
		embedder: embedder,
		retriever: NewFallbackRetriever(
			NewVectorRetriever(embedder, store),
			NewLexicalRetriever(store, ranker),
		),
		logger: logger_i.NewLogger("local_index"),
	}
}

func (idx *LocalIndex) Insert(ctx context.Context, chunks []commonModels.DocChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	vectors, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if err := idx.store.Upsert(ctx, chunks, vectors); err != nil {
		return fmt.Errorf("storing %d chunks: %w", len(chunks), err)
	}
	idx.logger.WithTrace(ctx).Debug("Inserted chunks", "count", len(chunks))
	return nil
}

func (idx *LocalIndex) Search(ctx context.Context, query string, k int) (SearchResult, error) {
	if k <= 0 {
		return SearchResult{}, nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.retriever.Retrieve(ctx, query, k)
}

func (idx *LocalIndex) Reset(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.store.Reset(ctx); err != nil {
		return fmt.Errorf("resetting store: %w", err)
	}
	idx.logger.WithTrace(ctx).Info("Vector store reset")
	return nil
}

func (idx *LocalIndex) Count(ctx context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.store.Count(ctx)
}

func (idx *LocalIndex) Close() error {
	return idx.store.Close()
}
