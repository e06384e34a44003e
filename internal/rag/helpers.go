package rag

import (
	"context"
	"time"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/metrics"
	"github.com/akolanti/DocRAG/internal/rag/llm"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

func (s *service) executeIndexStep(ctx context.Context, chunks []commonModels.DocChunk) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("index_insert", time.Since(start)) }()

	return s.index.Insert(ctx, chunks)
}

// executeRetrievalStep treats a failed search as finding nothing.
func (s *service) executeRetrievalStep(ctx context.Context, log *logger_i.Logger, query string) vectorDB.SearchResult {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("retrieval", time.Since(start)) }()

	res, err := s.index.Search(ctx, query, s.settings.TopK)
	if err != nil {
		log.Error("Search failed, continuing without context", "error", err)
		return vectorDB.SearchResult{Lexical: res.Lexical}
	}
	log.Debug("Retrieved passages", "count", len(res.Texts), "lexical", res.Lexical)
	return res
}

func (s *service) executeGenerationStep(ctx context.Context, contextText, query string) llm.Result {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.generator.Answer(ctx, contextText, query)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
