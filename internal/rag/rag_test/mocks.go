package rag_test

import (
	"context"
	"sync"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/llm"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
)

// MockIndex implements vectorDB.Index. Without hooks it keeps inserted chunks
// and returns them all on search.
type MockIndex struct {
	OnInsert func(ctx context.Context, chunks []commonModels.DocChunk) error
	OnSearch func(ctx context.Context, query string, k int) (vectorDB.SearchResult, error)
	OnReset  func(ctx context.Context) error

	mu       sync.Mutex
	Inserted []commonModels.DocChunk
	Searches []int
	Resets   int
}

func (m *MockIndex) Insert(ctx context.Context, chunks []commonModels.DocChunk) error {
	if m.OnInsert != nil {
		if err := m.OnInsert(ctx, chunks); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Inserted = append(m.Inserted, chunks...)
	return nil
}

func (m *MockIndex) Search(ctx context.Context, query string, k int) (vectorDB.SearchResult, error) {
	m.mu.Lock()
	m.Searches = append(m.Searches, k)
	m.mu.Unlock()
	if m.OnSearch != nil {
		return m.OnSearch(ctx, query, k)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	texts := make([]string, 0, len(m.Inserted))
	for _, c := range m.Inserted {
		texts = append(texts, c.Text)
	}
	return vectorDB.SearchResult{Texts: texts}, nil
}

func (m *MockIndex) Reset(ctx context.Context) error {
	m.mu.Lock()
	m.Resets++
	m.Inserted = nil
	m.mu.Unlock()
	if m.OnReset != nil {
		return m.OnReset(ctx)
	}
	return nil
}

func (m *MockIndex) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Inserted), nil
}

// MockGenerator implements llm.Generator
type MockGenerator struct {
	OnAnswer  func(ctx context.Context, contextText, query string) llm.Result
	OnCleanup func(ctx context.Context) error

	Contexts []string
	Cleanups int
}

func (m *MockGenerator) Answer(ctx context.Context, contextText, query string) llm.Result {
	m.Contexts = append(m.Contexts, contextText)
	if m.OnAnswer != nil {
		return m.OnAnswer(ctx, contextText, query)
	}
	return llm.Result{Text: "mocked llm response"}
}

func (m *MockGenerator) Cleanup(ctx context.Context) error {
	m.Cleanups++
	if m.OnCleanup != nil {
		return m.OnCleanup(ctx)
	}
	return nil
}
