package memoryDB

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
)

var _ vectorDB.Store = (*Store)(nil)

type entry struct {
	chunkId string
	text    string
	vector  []float32
}

// Store keeps every vector in memory and scans them all on each query.
type Store struct {
	mu        sync.RWMutex
	entries   []entry
	positions map[string]int
	dimension int
}

func New() *Store {
	return &Store{positions: make(map[string]int)}
}

func (s *Store) Upsert(_ context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	//the whole batch is checked before anything is written
	dimension := s.dimension
	if dimension == 0 {
		dimension = len(vectors[0])
	}
	for _, v := range vectors {
		if len(v) != dimension {
			return fmt.Errorf("%w: got %d want %d", vectorDB.ErrDimensionMismatch, len(v), dimension)
		}
	}
	s.dimension = dimension

	for i, c := range chunks {
		e := entry{chunkId: c.ChunkId, text: c.Text, vector: append([]float32(nil), vectors[i]...)}
		if pos, ok := s.positions[c.ChunkId]; ok {
			s.entries[pos] = e
			continue
		}
		s.positions[c.ChunkId] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return nil
}

func (s *Store) Query(_ context.Context, vector []float32, k int) ([]vectorDB.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 || len(s.entries) == 0 {
		return nil, nil
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: got %d want %d", vectorDB.ErrDimensionMismatch, len(vector), s.dimension)
	}

	matches := make([]vectorDB.Match, len(s.entries))
	for i, e := range s.entries {
		matches[i] = vectorDB.Match{ChunkId: e.chunkId, Text: e.text, Score: vectorDB.CosineSimilarity(vector, e.vector)}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *Store) Texts(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	texts := make([]string, len(s.entries))
	for i, e := range s.entries {
		texts[i] = e.text
	}
	return texts, nil
}

func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.positions = make(map[string]int)
	s.dimension = 0
	return nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *Store) Close() error { return nil }
