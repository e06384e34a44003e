package vectorDB_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/lexical"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB/memoryDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder maps text onto a fixed vocabulary so cosine scores are predictable.
type keywordEmbedder struct {
	vocab    []string
	queryErr error
}

func (e *keywordEmbedder) vec(text string) []float32 {
	v := make([]float32, len(e.vocab))
	lower := strings.ToLower(text)
	for i, w := range e.vocab {
		v[i] = float32(strings.Count(lower, w))
	}
	return v
}

func (e *keywordEmbedder) EmbedQuery(_ context.Context, q string) ([]float32, error) {
	if e.queryErr != nil {
		return nil, e.queryErr
	}
	return e.vec(q), nil
}

func (e *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vec(t)
	}
	return out, nil
}

func newIndex(embedder *keywordEmbedder) *vectorDB.LocalIndex {
	return vectorDB.NewLocalIndex(memoryDB.New(), embedder, lexical.NewRanker(0.01, 5000))
}

func sampleChunks() []commonModels.DocChunk {
	return []commonModels.DocChunk{
		{ChunkId: "cv_chunk1", Text: "Worked with python and golang services"},
		{ChunkId: "cv_chunk2", Text: "Graduated from the state university"},
		{ChunkId: "cv_chunk3", Text: "Built a project for payments"},
	}
}

func TestLocalIndex_SearchByEmbedding(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(&keywordEmbedder{vocab: []string{"python", "university", "project"}})
	require.NoError(t, idx.Insert(ctx, sampleChunks()))

	res, err := idx.Search(ctx, "which university", 1)
	require.NoError(t, err)
	assert.False(t, res.Lexical)
	assert.Equal(t, []string{"Graduated from the state university"}, res.Texts)

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestLocalIndex_FallsBackToLexical(t *testing.T) {
	ctx := context.Background()
	embedder := &keywordEmbedder{vocab: []string{"python", "university", "project"}}
	idx := newIndex(embedder)
	require.NoError(t, idx.Insert(ctx, sampleChunks()))

	embedder.queryErr = commonModels.ErrIndexUnavailable
	res, err := idx.Search(ctx, "payments project", 2)
	require.NoError(t, err)
	assert.True(t, res.Lexical)
	require.NotEmpty(t, res.Texts)
	assert.Equal(t, "Built a project for payments", res.Texts[0])
}

func TestLocalIndex_OtherErrorsAreNotHidden(t *testing.T) {
	ctx := context.Background()
	embedder := &keywordEmbedder{vocab: []string{"python"}}
	idx := newIndex(embedder)
	require.NoError(t, idx.Insert(ctx, sampleChunks()))

	embedder.queryErr = errors.New("bad request")
	_, err := idx.Search(ctx, "python", 1)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, commonModels.ErrIndexUnavailable)
}

func TestLocalIndex_ResetEmptiesSearch(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(&keywordEmbedder{vocab: []string{"python"}})
	require.NoError(t, idx.Insert(ctx, sampleChunks()))
	require.NoError(t, idx.Reset(ctx))

	res, err := idx.Search(ctx, "python", 7)
	require.NoError(t, err)
	assert.Empty(t, res.Texts)
}

func TestLocalIndex_ConcurrentInsertAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(&keywordEmbedder{vocab: []string{"python", "university"}})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = idx.Insert(ctx, []commonModels.DocChunk{{ChunkId: "c" + string(rune('a'+i)), Text: "python university"}})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = idx.Search(ctx, "python", 3)
		}()
	}
	wg.Wait()

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, vectorDB.CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-6)
	assert.InDelta(t, 0.0, vectorDB.CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Zero(t, vectorDB.CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, vectorDB.CosineSimilarity([]float32{1}, []float32{1, 1}))
}

type stubRetriever struct {
	res   vectorDB.SearchResult
	err   error
	calls int
}

func (s *stubRetriever) Retrieve(context.Context, string, int) (vectorDB.SearchResult, error) {
	s.calls++
	return s.res, s.err
}

func TestFallbackRetriever(t *testing.T) {
	ctx := context.Background()

	primary := &stubRetriever{res: vectorDB.SearchResult{Texts: []string{"vector"}}}
	secondary := &stubRetriever{res: vectorDB.SearchResult{Texts: []string{"lexical"}}}
	res, err := vectorDB.NewFallbackRetriever(primary, secondary).Retrieve(ctx, "q", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"vector"}, res.Texts)
	assert.Zero(t, secondary.calls)

	primary.err = commonModels.ErrIndexUnavailable
	res, err = vectorDB.NewFallbackRetriever(primary, secondary).Retrieve(ctx, "q", 1)
	require.NoError(t, err)
	assert.True(t, res.Lexical)
	assert.Equal(t, []string{"lexical"}, res.Texts)

	secondary.err = errors.New("corpus gone")
	_, err = vectorDB.NewFallbackRetriever(primary, secondary).Retrieve(ctx, "q", 1)
	assert.ErrorIs(t, err, commonModels.ErrIndexUnavailable)
}
