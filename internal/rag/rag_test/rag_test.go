package rag_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/data/store"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag"
	"github.com/akolanti/DocRAG/internal/rag/llm"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
)

const sessionId = "session-1"

func newService(t *testing.T, idx *MockIndex, gen *MockGenerator) (rag.Service, *store.InMemorySessionStore) {
	t.Helper()
	sessions := store.InitInMemorySessionStore()
	if _, err := sessions.CreateSession(context.Background(), sessionId); err != nil {
		t.Fatal(err)
	}
	return rag.NewService(idx, gen, sessions, config.Default().RAG), sessions
}

func testCtx() context.Context {
	return context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
}

func TestIngest_Scenarios(t *testing.T) {
	longText := strings.Repeat("Go services handle retrieval and generation. ", 60)

	tests := []struct {
		name        string
		session     string
		text        string
		setupMocks  func(i *MockIndex)
		expectedErr error
		minChunks   int
		expectCount int
	}{
		{
			name:        "Success_Multiple_Chunks",
			session:     sessionId,
			text:        longText,
			minChunks:   2,
			expectCount: 1,
		},
		{
			name:        "Success_Short_Text",
			session:     sessionId,
			text:        "A short resume.",
			minChunks:   1,
			expectCount: 1,
		},
		{
			name:        "Failure_Empty_Text",
			session:     sessionId,
			text:        "\r\n\t  \x00\x01",
			expectedErr: commonModels.ErrExtractionEmpty,
		},
		{
			name:    "Failure_Index",
			session: sessionId,
			text:    "some content",
			setupMocks: func(i *MockIndex) {
				i.OnInsert = func(ctx context.Context, chunks []commonModels.DocChunk) error {
					return errors.New("disk full")
				}
			},
			expectedErr: commonModels.ErrIndexUnavailable,
		},
		{
			name:        "Failure_Unknown_Session",
			session:     "ghost",
			text:        "some content",
			expectedErr: commonModels.ErrSessionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := &MockIndex{}
			if tt.setupMocks != nil {
				tt.setupMocks(idx)
			}
			s, sessions := newService(t, idx, &MockGenerator{})

			res, err := s.Ingest(testCtx(), tt.session, "resume.pdf", tt.text)

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("error got %v, want %v", err, tt.expectedErr)
				}
				if got, _ := sessions.GetSession(context.Background(), sessionId); got.DocumentCount != 0 {
					t.Errorf("rejected ingest consumed a slot: %d", got.DocumentCount)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if res.ChunkCount < tt.minChunks || res.ChunkCount != len(idx.Inserted) {
				t.Errorf("chunk count %d, inserted %d, want at least %d", res.ChunkCount, len(idx.Inserted), tt.minChunks)
			}
			if res.DocumentCount != tt.expectCount {
				t.Errorf("document count got %d, want %d", res.DocumentCount, tt.expectCount)
			}
			for i, c := range idx.Inserted {
				want := fmt.Sprintf("%s_chunk%d", res.Document.Id, i+1)
				if c.ChunkId != want {
					t.Errorf("chunk %d id got %s, want %s", i, c.ChunkId, want)
				}
				if len([]rune(c.Text)) > config.ChunkSize {
					t.Errorf("chunk %d longer than %d", i, config.ChunkSize)
				}
			}
		})
	}
}

func TestIngest_CapacityLimit(t *testing.T) {
	idx := &MockIndex{}
	s, _ := newService(t, idx, &MockGenerator{})
	ctx := testCtx()

	for i := 1; i <= config.MaxDocumentsPerSession; i++ {
		res, err := s.Ingest(ctx, sessionId, fmt.Sprintf("doc%d.pdf", i), "content number "+fmt.Sprint(i))
		if err != nil {
			t.Fatalf("ingest %d failed: %v", i, err)
		}
		if res.DocumentCount != i {
			t.Errorf("count got %d, want %d", res.DocumentCount, i)
		}
	}

	inserted := len(idx.Inserted)
	_, err := s.Ingest(ctx, sessionId, "one-too-many.pdf", "more content")
	if !errors.Is(err, commonModels.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if len(idx.Inserted) != inserted {
		t.Error("index was touched for a rejected document")
	}
}

func TestIngest_SameFileTwiceKeepsBoth(t *testing.T) {
	idx := &MockIndex{}
	s, _ := newService(t, idx, &MockGenerator{})

	first, err := s.Ingest(testCtx(), sessionId, "cv.pdf", "first version")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Ingest(testCtx(), sessionId, "cv.pdf", "second version")
	if err != nil {
		t.Fatal(err)
	}
	if first.Document.Id == second.Document.Id {
		t.Fatalf("both ingests got id %s", first.Document.Id)
	}
	if idx.Inserted[0].ChunkId == idx.Inserted[1].ChunkId {
		t.Error("chunk ids collide across ingests")
	}
}

func TestAnswer_Scenarios(t *testing.T) {
	tests := []struct {
		name              string
		search            func(ctx context.Context, q string, k int) (vectorDB.SearchResult, error)
		generate          func(ctx context.Context, c, q string) llm.Result
		expectedAnswer    string
		expectGenerator   bool
		expectFallback    bool
		expectRetrievalFB bool
	}{
		{
			name: "Success_Full_Flow",
			search: func(ctx context.Context, q string, k int) (vectorDB.SearchResult, error) {
				return vectorDB.SearchResult{Texts: []string{"Go was released in 2009."}}, nil
			},
			expectedAnswer:  "mocked llm response",
			expectGenerator: true,
		},
		{
			name: "No_Context_Short_Circuits",
			search: func(ctx context.Context, q string, k int) (vectorDB.SearchResult, error) {
				return vectorDB.SearchResult{}, nil
			},
			expectedAnswer: config.NoRelevantInfoAnswer,
		},
		{
			name: "Blank_Passages_Short_Circuit",
			search: func(ctx context.Context, q string, k int) (vectorDB.SearchResult, error) {
				return vectorDB.SearchResult{Texts: []string{" ", "\n"}}, nil
			},
			expectedAnswer: config.NoRelevantInfoAnswer,
		},
		{
			name: "Search_Error_Is_Not_Fatal",
			search: func(ctx context.Context, q string, k int) (vectorDB.SearchResult, error) {
				return vectorDB.SearchResult{}, errors.New("store corrupted")
			},
			expectedAnswer: config.NoRelevantInfoAnswer,
		},
		{
			name: "Lexical_Retrieval_Flags_Fallback",
			search: func(ctx context.Context, q string, k int) (vectorDB.SearchResult, error) {
				return vectorDB.SearchResult{Texts: []string{"lexical hit"}, Lexical: true}, nil
			},
			expectedAnswer:    "mocked llm response",
			expectGenerator:   true,
			expectFallback:    true,
			expectRetrievalFB: true,
		},
		{
			name: "Generation_Fallback_Flags_Fallback",
			search: func(ctx context.Context, q string, k int) (vectorDB.SearchResult, error) {
				return vectorDB.SearchResult{Texts: []string{"context"}}, nil
			},
			generate: func(ctx context.Context, c, q string) llm.Result {
				return llm.Result{Text: "template", UsedFallback: true}
			},
			expectedAnswer:  "template",
			expectGenerator: true,
			expectFallback:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := &MockIndex{OnSearch: tt.search}
			gen := &MockGenerator{OnAnswer: tt.generate}
			s, sessions := newService(t, idx, gen)

			res, err := s.Answer(testCtx(), sessionId, "what is this about?")
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if res.Answer != tt.expectedAnswer {
				t.Errorf("Answer got %q, want %q", res.Answer, tt.expectedAnswer)
			}
			if (len(gen.Contexts) > 0) != tt.expectGenerator {
				t.Errorf("generator called %d times, expected call: %v", len(gen.Contexts), tt.expectGenerator)
			}
			if res.UsedFallback != tt.expectFallback || res.RetrievalFallback != tt.expectRetrievalFB {
				t.Errorf("fallback flags got %+v", res)
			}
			if len(idx.Searches) != 1 || idx.Searches[0] != config.RetrievalTopK {
				t.Errorf("expected one search with k=%d, got %v", config.RetrievalTopK, idx.Searches)
			}

			history, _ := sessions.History(context.Background(), sessionId)
			if len(history) != 1 || history[0].Answer != res.Answer || history[0].Query != "what is this about?" {
				t.Errorf("history not recorded: %+v", history)
			}
		})
	}
}

func TestAnswer_ContextIsJoinedAndTruncated(t *testing.T) {
	passages := []string{strings.Repeat("a", 300), strings.Repeat("b", 300), "tail"}
	idx := &MockIndex{OnSearch: func(ctx context.Context, q string, k int) (vectorDB.SearchResult, error) {
		return vectorDB.SearchResult{Texts: passages}, nil
	}}
	gen := &MockGenerator{}
	s, _ := newService(t, idx, gen)

	if _, err := s.Answer(testCtx(), sessionId, "q"); err != nil {
		t.Fatal(err)
	}
	if len(gen.Contexts) != 1 {
		t.Fatalf("generator called %d times", len(gen.Contexts))
	}
	want := (strings.Join(passages, "\n"))[:config.ContextCharLimit]
	if gen.Contexts[0] != want {
		t.Errorf("context not joined/truncated as expected, got %d chars", len(gen.Contexts[0]))
	}
}

func TestAnswer_BlankQuery(t *testing.T) {
	for _, query := range []string{"", "   ", "\n\t"} {
		idx := &MockIndex{Inserted: []commonModels.DocChunk{{ChunkId: "cv_chunk1", Text: "Go developer"}}}
		gen := &MockGenerator{}
		s, sessions := newService(t, idx, gen)

		res, err := s.Answer(testCtx(), sessionId, query)
		if err != nil {
			t.Fatalf("query %q: unexpected error %v", query, err)
		}
		if res.Answer != config.NoRelevantInfoAnswer || res.UsedFallback {
			t.Errorf("query %q: unexpected result %+v", query, res)
		}
		if len(gen.Contexts) != 0 {
			t.Errorf("query %q: generator called %d times", query, len(gen.Contexts))
		}
		if len(idx.Searches) != 0 {
			t.Errorf("query %q: index searched %d times", query, len(idx.Searches))
		}
		if history, _ := sessions.History(context.Background(), sessionId); len(history) != 0 {
			t.Errorf("query %q: blank query should not be recorded: %+v", query, history)
		}
	}
}

func TestAnswer_UnknownSession(t *testing.T) {
	gen := &MockGenerator{}
	s, _ := newService(t, &MockIndex{}, gen)

	if _, err := s.Answer(testCtx(), "ghost", "q"); !errors.Is(err, commonModels.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if len(gen.Contexts) != 0 {
		t.Error("generator should not run for an unknown session")
	}
}

func TestReset_FreesSlotsAndClearsIndex(t *testing.T) {
	idx := &MockIndex{}
	s, sessions := newService(t, idx, &MockGenerator{})
	ctx := testCtx()

	for i := 0; i < config.MaxDocumentsPerSession; i++ {
		if _, err := s.Ingest(ctx, sessionId, "d.pdf", "text"); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Reset(ctx, sessionId); err != nil {
		t.Fatal(err)
	}
	if idx.Resets != 1 || len(idx.Inserted) != 0 {
		t.Errorf("index not reset: resets=%d inserted=%d", idx.Resets, len(idx.Inserted))
	}
	if got, _ := sessions.GetSession(ctx, sessionId); got.DocumentCount != 0 {
		t.Errorf("count not reset: %d", got.DocumentCount)
	}
	if _, err := s.Ingest(ctx, sessionId, "again.pdf", "text"); err != nil {
		t.Errorf("ingest after reset failed: %v", err)
	}

	idx.OnReset = func(ctx context.Context) error { return commonModels.ErrIndexUnavailable }
	if err := s.Reset(ctx, sessionId); !errors.Is(err, commonModels.ErrIndexUnavailable) {
		t.Errorf("expected reset failure to surface, got %v", err)
	}
}

func TestCleanup_DelegatesToGenerator(t *testing.T) {
	gen := &MockGenerator{}
	s, _ := newService(t, &MockIndex{}, gen)
	if err := s.Cleanup(testCtx()); err != nil {
		t.Fatal(err)
	}
	if gen.Cleanups != 1 {
		t.Errorf("cleanup called %d times", gen.Cleanups)
	}
}

func TestIngestFile(t *testing.T) {
	idx := &MockIndex{}
	s, _ := newService(t, idx, &MockGenerator{})

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("Notes about the quarterly project review."), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := s.IngestFile(testCtx(), sessionId, "notes.txt", path)
	if err != nil {
		t.Fatalf("IngestFile failed: %v", err)
	}
	if res.ChunkCount != 1 {
		t.Errorf("expected one chunk, got %d", res.ChunkCount)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("upload should be removed after ingest")
	}

	bad := filepath.Join(t.TempDir(), "photo.png")
	_ = os.WriteFile(bad, []byte{0x89, 'P', 'N', 'G'}, 0o600)
	if _, err := s.IngestFile(testCtx(), sessionId, "photo.png", bad); !errors.Is(err, commonModels.ErrUnsupportedDocument) {
		t.Errorf("expected ErrUnsupportedDocument, got %v", err)
	}
}
