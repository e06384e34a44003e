// Package setup turns Settings into the concrete collaborators each binary runs with.
package setup

import (
	"context"
	"fmt"
	"io"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/data/redisStore"
	"github.com/akolanti/DocRAG/internal/data/store"
	"github.com/akolanti/DocRAG/internal/domain/jobModel"
	"github.com/akolanti/DocRAG/internal/domain/sessionModel"
	"github.com/akolanti/DocRAG/internal/handlers"
	"github.com/akolanti/DocRAG/internal/rag/embedding"
	"github.com/akolanti/DocRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocRAG/internal/rag/embedding/ollamaEmbedding"
	"github.com/akolanti/DocRAG/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocRAG/internal/rag/lexical"
	"github.com/akolanti/DocRAG/internal/rag/llm"
	"github.com/akolanti/DocRAG/internal/rag/llm/gemini"
	"github.com/akolanti/DocRAG/internal/rag/llm/ollamaLLM"
	"github.com/akolanti/DocRAG/internal/rag/llm/openaiLLM"
	"github.com/akolanti/DocRAG/internal/rag/llm/remoteLLM"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB/remoteDB"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB/sqliteDB"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var logger = logger_i.NewLogger("setup")

// approximate characters per model token, used to turn the token budget into a prompt length
const charsPerToken = 4

func Ranker(settings config.RAGSettings) *lexical.Ranker {
	return lexical.NewRanker(settings.LexicalThreshold, settings.LexicalMaxFeatures)
}

func Embedder(settings config.EmbeddingSettings) *embedding.Manager {
	var loader embedding.Loader
	switch settings.Provider {
	case config.EmbeddingProviderGoogle:
		loader = googleEmbedding.Loader(googleEmbedding.Config{
			APIKey:     settings.APIKey,
			Model:      settings.Model,
			Dimensions: int32(settings.Dimensions),
		})
	case config.EmbeddingProviderOpenAI:
		loader = openaiEmbedding.Loader(openaiEmbedding.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	default:
		loader = ollamaEmbedding.Loader(ollamaEmbedding.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	}
	return embedding.NewManager(settings.Model, loader)
}

func Store(ctx context.Context, settings config.StoreSettings) (vectorDB.Store, error) {
	switch settings.Backend {
	case config.StoreBackendMemory:
		return memoryDB.New(), nil
	case config.StoreBackendQdrant:
		return qdrantDB.NewStore(ctx, qdrantDB.Config{
			Host:       settings.QdrantHost,
			Port:       settings.QdrantPort,
			UseTLS:     settings.QdrantTLS,
			Collection: settings.Name,
		})
	case config.StoreBackendSQLite:
		return sqliteDB.Open(settings.Path, settings.Name)
	default:
		return nil, fmt.Errorf("unknown store backend %q", settings.Backend)
	}
}

// LocalIndex opens the configured store behind an embedding index. Preload
// failures are logged; the index falls back to lexical ranking until the model answers.
func LocalIndex(ctx context.Context, settings config.Settings) (*vectorDB.LocalIndex, error) {
	st, err := Store(ctx, settings.Store)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", settings.Store.Backend, err)
	}
	embedder := Embedder(settings.Embedding)
	if settings.Embedding.Preload {
		if err := embedder.Preload(ctx); err != nil {
			logger.Warn("Embedding model preload failed", "model", embedder.Model(), "error", err)
		}
	}
	return vectorDB.NewLocalIndex(st, embedder, Ranker(settings.RAG)), nil
}

// Index is the remote vector store service when one is configured, otherwise a local index.
func Index(ctx context.Context, settings config.Settings) (vectorDB.Index, io.Closer, error) {
	if settings.Services.IndexURL != "" {
		logger.Info("Using remote vector store", "url", settings.Services.IndexURL)
		return remoteDB.New(settings.Services.IndexURL, settings.Services.IndexTimeout, Ranker(settings.RAG)), noopCloser{}, nil
	}
	idx, err := LocalIndex(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	return idx, idx, nil
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

func ModelHandle(settings config.GenerationSettings) *llm.ModelHandle {
	var loader llm.Loader
	switch settings.Provider {
	case config.GenerationProviderGemini:
		loader = gemini.Loader(gemini.Config{APIKey: settings.APIKey, Model: settings.Model})
	case config.GenerationProviderOpenAI:
		loader = openaiLLM.Loader(openaiLLM.Config{APIKey: settings.APIKey, BaseURL: settings.BaseURL, Model: settings.Model})
	default:
		loader = ollamaLLM.Loader(ollamaLLM.Config{
			BaseURL:   settings.BaseURL,
			Model:     settings.Model,
			KeepAlive: settings.KeepAlive,
			NumCtx:    settings.MaxInputTokens,
		})
	}
	return llm.NewModelHandle(loader, llm.Options{
		MaxNewTokens:  settings.MaxNewTokens,
		Temperature:   settings.Temperature,
		MaxInputChars: settings.MaxInputTokens * charsPerToken,
	})
}

// Generator is the remote model service when one is configured, otherwise an in process model handle.
func Generator(ctx context.Context, settings config.Settings) llm.Generator {
	if settings.Services.ModelURL != "" {
		logger.Info("Using remote model service", "url", settings.Services.ModelURL)
		return remoteLLM.New(settings.Services.ModelURL, settings.Services.GenerationTimeout)
	}
	handle := ModelHandle(settings.Generation)
	if settings.Generation.Preload {
		if err := handle.Preload(ctx); err != nil {
			logger.Warn("Generation model preload failed, answers use the template until it loads", "error", err)
		}
	}
	return handle
}

// SessionStores connects to redis, or falls back to in-memory stores when redis is
// disabled or offline. The returned func closes whatever was opened.
func SessionStores(ctx context.Context, settings config.RedisSettings) (jobModel.JobStore, sessionModel.SessionStore, func()) {
	if settings.Disabled {
		logger.Info("Redis disabled, using in-memory stores")
		return store.InitInMemoryJobStore(), store.InitInMemorySessionStore(), func() {}
	}

	jobRedis, err := redisStore.Connect(ctx, settings, config.RedisJobStore)
	if err != nil {
		logger.Error("Redis stores are offline, using in-memory stores", "error", err)
		return store.InitInMemoryJobStore(), store.InitInMemorySessionStore(), func() {}
	}
	sessionRedis, err := redisStore.Connect(ctx, settings, config.RedisSessionStore)
	if err != nil {
		_ = jobRedis.Close()
		logger.Error("Redis session store is offline, using in-memory stores", "error", err)
		return store.InitInMemoryJobStore(), store.InitInMemorySessionStore(), func() {}
	}

	closeAll := func() {
		_ = jobRedis.Close()
		_ = sessionRedis.Close()
	}
	return store.NewRedisJobStore(jobRedis, settings.JobTTL), store.NewRedisSessionStore(sessionRedis, settings.SessionTTL), closeAll
}

// Collaborators lists the remote services /health should check.
func Collaborators(index vectorDB.Index, generator llm.Generator) map[string]handlers.HealthChecker {
	out := make(map[string]handlers.HealthChecker)
	if c, ok := index.(handlers.HealthChecker); ok {
		out["vectorstore"] = c
	}
	if c, ok := generator.(handlers.HealthChecker); ok {
		out["model"] = c
	}
	return out
}
