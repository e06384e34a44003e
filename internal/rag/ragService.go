package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/domain/sessionModel"
	"github.com/akolanti/DocRAG/internal/metrics"
	"github.com/akolanti/DocRAG/internal/rag/ingest"
	"github.com/akolanti/DocRAG/internal/rag/llm"
	"github.com/akolanti/DocRAG/internal/rag/textprep"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

/*
The worker only sees Service. The private service struct holds the index,
the generator and the session store; any of them can be in process or remote,
and tests swap them for mocks through NewService.
*/

type Service interface {
	Ingest(ctx context.Context, sessionId, documentName, rawText string) (IngestResult, error)
	IngestFile(ctx context.Context, sessionId, documentName, path string) (IngestResult, error)
	Answer(ctx context.Context, sessionId, query string) (AnswerResult, error)
	Reset(ctx context.Context, sessionId string) error
	Cleanup(ctx context.Context) error
}

type IngestResult struct {
	Document      commonModels.Document
	ChunkCount    int
	DocumentCount int
}

type AnswerResult struct {
	Answer             string
	UsedFallback       bool
	RetrievalFallback  bool
	GenerationFallback bool
}

type service struct {
	index     vectorDB.Index
	generator llm.Generator
	sessions  sessionModel.SessionStore
	settings  config.RAGSettings
	logger    *logger_i.Logger
}

func NewService(index vectorDB.Index, generator llm.Generator, sessions sessionModel.SessionStore, settings config.RAGSettings) Service {
	return &service{
		index:     index,
		generator: generator,
		sessions:  sessions,
		settings:  settings,
		logger:    logger_i.NewLogger("rag_service"),
	}
}

// Ingest turns raw document text into indexed chunks. A rejected document
// never counts against the session's limit.
func (s *service) Ingest(ctx context.Context, sessionId, documentName, rawText string) (IngestResult, error) {
	log := s.logger.WithTrace(ctx).With("sessionId", sessionId, "document", documentName)

	session, found := s.sessions.GetSession(ctx, sessionId)
	if !found {
		return IngestResult{}, commonModels.ErrSessionNotFound
	}
	if session.DocumentCount >= s.settings.MaxDocuments {
		metrics.IngestRejected("capacity")
		log.Warn("Document limit reached", "count", session.DocumentCount)
		return IngestResult{}, fmt.Errorf("%w: %d of %d", commonModels.ErrCapacityExceeded, session.DocumentCount, s.settings.MaxDocuments)
	}

	text := textprep.Normalize(rawText)
	if textprep.IsBlank(text) {
		metrics.IngestRejected("empty")
		return IngestResult{}, commonModels.ErrExtractionEmpty
	}

	doc := ingest.NewDocument(documentName)
	chunks := ingest.BuildChunks(doc, textprep.Split(text, s.settings.ChunkSize, s.settings.ChunkOverlap()))
	log.Debug("Document split", "documentId", doc.Id, "chunks", len(chunks))

	if err := s.executeIndexStep(ctx, chunks); err != nil {
		metrics.IngestRejected("index")
		log.Error("Indexing failed", "error", err)
		if !errors.Is(err, commonModels.ErrIndexUnavailable) {
			err = fmt.Errorf("%w: %w", commonModels.ErrIndexUnavailable, err)
		}
		return IngestResult{}, err
	}

	count, err := s.sessions.IncrementDocuments(ctx, sessionId)
	if err != nil {
		return IngestResult{}, fmt.Errorf("updating session: %w", err)
	}
	log.Info("Document ingested", "documentId", doc.Id, "chunks", len(chunks), "documents", count)
	return IngestResult{Document: doc, ChunkCount: len(chunks), DocumentCount: count}, nil
}

// IngestFile extracts the file at path and ingests it. The file is removed afterwards.
func (s *service) IngestFile(ctx context.Context, sessionId, documentName, path string) (IngestResult, error) {
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.WithTrace(ctx).Warn("Error removing upload", "path", path, "error", err)
		}
	}()

	start := time.Now()
	raw, _, err := ingest.ExtractText(path)
	metrics.CaptureExecutionMetrics("extraction", time.Since(start))
	if err != nil {
		if errors.Is(err, commonModels.ErrUnsupportedDocument) {
			metrics.IngestRejected("unsupported")
			return IngestResult{}, err
		}
		// an unreadable file is treated like one with no text
		s.logger.WithTrace(ctx).Warn("Extraction failed", "document", documentName, "error", err)
		metrics.IngestRejected("empty")
		return IngestResult{}, fmt.Errorf("%w: %w", commonModels.ErrExtractionEmpty, err)
	}
	return s.Ingest(ctx, sessionId, documentName, raw)
}

// Answer never fails for retrieval or generation trouble; both degrade to
// fallbacks. Only a missing session is an error. A blank query gets the
// no information answer without touching the index, the model or the history.
func (s *service) Answer(ctx context.Context, sessionId, query string) (AnswerResult, error) {
	log := s.logger.WithTrace(ctx).With("sessionId", sessionId)

	if _, found := s.sessions.GetSession(ctx, sessionId); !found {
		return AnswerResult{}, commonModels.ErrSessionNotFound
	}
	if strings.TrimSpace(query) == "" {
		log.Debug("Blank query ignored")
		return AnswerResult{Answer: config.NoRelevantInfoAnswer}, nil
	}

	found := s.executeRetrievalStep(ctx, log, query)
	contextText := truncateRunes(strings.Join(found.Texts, "\n"), s.settings.ContextCharLimit)

	result := AnswerResult{RetrievalFallback: found.Lexical}
	if textprep.IsBlank(contextText) {
		result.Answer = config.NoRelevantInfoAnswer
	} else {
		generated := s.executeGenerationStep(ctx, contextText, query)
		result.Answer = generated.Text
		result.GenerationFallback = generated.UsedFallback
	}
	result.UsedFallback = result.RetrievalFallback || result.GenerationFallback

	entry := commonModels.HistoryEntry{
		Query:        query,
		Answer:       result.Answer,
		UsedFallback: result.UsedFallback,
		AskedAt:      time.Now(),
	}
	if err := s.sessions.AppendHistory(ctx, sessionId, entry); err != nil {
		log.Error("Could not save history", "error", err)
	}
	return result, nil
}

// Reset empties the shared index and frees the caller's document slots.
func (s *service) Reset(ctx context.Context, sessionId string) error {
	if err := s.index.Reset(ctx); err != nil {
		return fmt.Errorf("resetting index: %w", err)
	}
	if sessionId == "" {
		return nil
	}
	if err := s.sessions.ResetDocuments(ctx, sessionId); err != nil && !errors.Is(err, commonModels.ErrSessionNotFound) {
		return fmt.Errorf("resetting session: %w", err)
	}
	return nil
}

func (s *service) Cleanup(ctx context.Context) error {
	return s.generator.Cleanup(ctx)
}
