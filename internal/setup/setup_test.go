package setup

import (
	"context"
	"testing"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/data/store"
	"github.com/akolanti/DocRAG/internal/rag/llm"
	"github.com/akolanti/DocRAG/internal/rag/llm/remoteLLM"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB/remoteDB"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB/sqliteDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Backends(t *testing.T) {
	ctx := context.Background()

	st, err := Store(ctx, config.StoreSettings{Backend: config.StoreBackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &memoryDB.Store{}, st)

	st, err = Store(ctx, config.StoreSettings{Backend: config.StoreBackendSQLite, Path: t.TempDir(), Name: "chunks"})
	require.NoError(t, err)
	assert.IsType(t, &sqliteDB.Store{}, st)
	require.NoError(t, st.Close())

	_, err = Store(ctx, config.StoreSettings{Backend: "chroma"})
	assert.Error(t, err)
}

func TestIndex_RemoteWhenConfigured(t *testing.T) {
	settings := config.Default()
	settings.Services.IndexURL = "http://localhost:8000"

	idx, closer, err := Index(context.Background(), settings)
	require.NoError(t, err)
	assert.IsType(t, &remoteDB.Index{}, idx)
	assert.NoError(t, closer.Close())
}

func TestIndex_LocalWithoutPreload(t *testing.T) {
	settings := config.Default()
	settings.Store.Backend = config.StoreBackendMemory
	settings.Embedding.Preload = false

	idx, closer, err := Index(context.Background(), settings)
	require.NoError(t, err)
	defer closer.Close()

	count, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGenerator_Topology(t *testing.T) {
	settings := config.Default()
	settings.Generation.Preload = false

	assert.IsType(t, &llm.ModelHandle{}, Generator(context.Background(), settings))

	settings.Services.ModelURL = "http://localhost:8001"
	assert.IsType(t, &remoteLLM.Client{}, Generator(context.Background(), settings))
}

func TestSessionStores_Disabled(t *testing.T) {
	jobs, sessions, closeAll := SessionStores(context.Background(), config.RedisSettings{Disabled: true})
	defer closeAll()

	assert.IsType(t, &store.InMemoryJobStore{}, jobs)
	assert.IsType(t, &store.InMemorySessionStore{}, sessions)
}

func TestCollaborators_OnlyRemote(t *testing.T) {
	settings := config.Default()
	local := Collaborators(memoryIndex(t), ModelHandle(settings.Generation))
	assert.Empty(t, local)

	remote := Collaborators(remoteDB.New("http://x", time.Second, Ranker(settings.RAG)), remoteLLM.New("http://y", time.Second))
	assert.Len(t, remote, 2)
	assert.Contains(t, remote, "vectorstore")
	assert.Contains(t, remote, "model")
}

func memoryIndex(t *testing.T) *vectorDB.LocalIndex {
	t.Helper()
	settings := config.Default()
	settings.Store.Backend = config.StoreBackendMemory
	settings.Embedding.Preload = false
	idx, err := LocalIndex(context.Background(), settings)
	require.NoError(t, err)
	return idx
}
