package vectorDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/metrics"
	"github.com/akolanti/DocRAG/internal/rag/embedding"
	"github.com/akolanti/DocRAG/internal/rag/lexical"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

// Retriever is one ranking strategy over the indexed chunks.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) (SearchResult, error)
}

// CorpusSource lists every stored chunk text in insertion order.
type CorpusSource interface {
	Texts(ctx context.Context) ([]string, error)
}

// VectorRetriever embeds the query and asks the store for its nearest chunks.
type VectorRetriever struct {
	embedder embedding.Embedder
	store    Store
}

func NewVectorRetriever(embedder embedding.Embedder, store Store) *VectorRetriever {
	return &VectorRetriever{embedder: embedder, store: store}
}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string, k int) (SearchResult, error) {
	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return SearchResult{}, err
	}
	matches, err := r.store.Query(ctx, vec, k)
	if err != nil {
		return SearchResult{}, fmt.Errorf("querying store: %w", err)
	}
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Text)
	}
	return SearchResult{Texts: texts}, nil
}

// LexicalRetriever ranks the whole corpus with TF-IDF, no model needed.
type LexicalRetriever struct {
	corpus CorpusSource
	ranker *lexical.Ranker
}

func NewLexicalRetriever(corpus CorpusSource, ranker *lexical.Ranker) *LexicalRetriever {
	return &LexicalRetriever{corpus: corpus, ranker: ranker}
}

func (r *LexicalRetriever) Retrieve(ctx context.Context, query string, k int) (SearchResult, error) {
	texts, err := r.corpus.Texts(ctx)
	if err != nil {
		return SearchResult{Lexical: true}, fmt.Errorf("loading corpus: %w", err)
	}
	return SearchResult{Texts: r.ranker.Rank(texts, query, k), Lexical: true}, nil
}

// FallbackRetriever tries primary and switches to secondary when the
// embedding side is unavailable. Other errors are returned as they are.
type FallbackRetriever struct {
	primary   Retriever
	secondary Retriever
	logger    *logger_i.Logger
}

func NewFallbackRetriever(primary, secondary Retriever) *FallbackRetriever {
	return &FallbackRetriever{
		primary:   primary,
		secondary: secondary,
		logger:    logger_i.NewLogger("fallback_retriever"),
	}
}

func (f *FallbackRetriever) Retrieve(ctx context.Context, query string, k int) (SearchResult, error) {
	res, err := f.primary.Retrieve(ctx, query, k)
	if err == nil || !errors.Is(err, commonModels.ErrIndexUnavailable) {
		return res, err
	}
	f.logger.WithTrace(ctx).Warn("Embedding search unavailable, ranking lexically", "error", err)
	metrics.RetrievalFallback()

	res, fallbackErr := f.secondary.Retrieve(ctx, query, k)
	if fallbackErr != nil {
		return SearchResult{Lexical: true}, errors.Join(err, fallbackErr)
	}
	res.Lexical = true
	return res, nil
}
