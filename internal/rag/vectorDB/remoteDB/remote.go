// Package remoteDB reaches the vector store service over http.
package remoteDB

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/akolanti/DocRAG/internal/api"
	"github.com/akolanti/DocRAG/internal/customHttpClient"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/lexical"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var _ vectorDB.Index = (*Index)(nil)

const serviceName = "vectorstore"

// Index forwards every call to the vector store service. It mirrors the texts
// it has sent, keyed by chunk id in first insert order, so a lexical ranking is
// still possible while the service is down.
type Index struct {
	caller    customHttpClient.Caller
	retriever vectorDB.Retriever
	logger    *logger_i.Logger

	mu     sync.RWMutex
	order  []string
	mirror map[string]string
}

func New(baseURL string, timeout time.Duration, ranker *lexical.Ranker) *Index {
	idx := &Index{
		caller: customHttpClient.Caller{
			Client:  customHttpClient.NewClient(timeout),
			BaseURL: baseURL,
			Service: serviceName,
			Kind:    commonModels.ErrIndexUnavailable,
		},
		logger: logger_i.NewLogger("remote_index"),
		mirror: make(map[string]string),
	}
	idx.retriever = vectorDB.NewFallbackRetriever(remoteRetriever{idx}, vectorDB.NewLexicalRetriever(idx, ranker))
	return idx
}

func (idx *Index) Insert(ctx context.Context, chunks []commonModels.DocChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	req := api.CreateIndexRequest{Chunks: make([]api.ChunkPayload, len(chunks))}
	for i, c := range chunks {
		req.Chunks[i] = api.ChunkPayload{Text: c.Text, ChunkId: c.ChunkId}
	}

	var res api.CreateIndexResponse
	if err := idx.caller.Do(ctx, http.MethodPost, "/vectorstore/create", req, &res); err != nil {
		idx.logger.WithTrace(ctx).Error("Index service rejected chunks", "error", err)
		return err
	}

	idx.mu.Lock()
	for _, c := range chunks {
		if _, ok := idx.mirror[c.ChunkId]; !ok {
			idx.order = append(idx.order, c.ChunkId)
		}
		idx.mirror[c.ChunkId] = c.Text
	}
	idx.mu.Unlock()
	return nil
}

func (idx *Index) Search(ctx context.Context, query string, k int) (vectorDB.SearchResult, error) {
	if k <= 0 {
		return vectorDB.SearchResult{}, nil
	}
	return idx.retriever.Retrieve(ctx, query, k)
}

func (idx *Index) Reset(ctx context.Context) error {
	var res api.MessageResponse
	if err := idx.caller.Do(ctx, http.MethodDelete, "/vectorstore/reset", nil, &res); err != nil {
		return err
	}
	idx.mu.Lock()
	idx.order = nil
	idx.mirror = make(map[string]string)
	idx.mu.Unlock()
	return nil
}

// Count reports what this process has inserted since start.
func (idx *Index) Count(_ context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.order), nil
}

// Texts serves the mirror to the lexical fallback.
func (idx *Index) Texts(_ context.Context) ([]string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	texts := make([]string, len(idx.order))
	for i, id := range idx.order {
		texts[i] = idx.mirror[id]
	}
	return texts, nil
}

func (idx *Index) Health(ctx context.Context) error {
	return idx.caller.Do(ctx, http.MethodGet, "/health", nil, nil)
}

type remoteRetriever struct {
	idx *Index
}

func (r remoteRetriever) Retrieve(ctx context.Context, query string, k int) (vectorDB.SearchResult, error) {
	var res api.QueryIndexResponse
	err := r.idx.caller.Do(ctx, http.MethodPost, "/vectorstore/query", api.QueryIndexRequest{Query: query, K: &k}, &res)
	if err != nil {
		return vectorDB.SearchResult{}, err
	}
	return vectorDB.SearchResult{Texts: res.Results, Lexical: res.Lexical}, nil
}
