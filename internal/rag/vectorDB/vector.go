package vectorDB

import (
	"context"
	"errors"
	"math"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
)

var ErrDimensionMismatch = errors.New("vector dimension does not match the store")

// Match is one stored chunk scored against a query vector.
type Match struct {
	ChunkId string
	Text    string
	Score   float32
}

// Store persists (chunk id, vector, text) entries under one named collection.
// Re-inserting a chunk id overwrites it. Texts and ties in Query follow insertion order.
type Store interface {
	Upsert(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error
	Query(ctx context.Context, vector []float32, k int) ([]Match, error)
	Texts(ctx context.Context) ([]string, error)
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// SearchResult carries the retrieved passages, best first.
// Lexical is set when they were ranked by TF-IDF instead of embeddings.
type SearchResult struct {
	Texts   []string
	Lexical bool
}

// Index is what the orchestrator talks to, in process or over http.
type Index interface {
	Insert(ctx context.Context, chunks []commonModels.DocChunk) error
	Search(ctx context.Context, query string, k int) (SearchResult, error)
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// CosineSimilarity returns 0 when either vector has no magnitude.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
