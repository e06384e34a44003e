package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5, s.RAG.MaxDocuments)
	assert.Equal(t, 1000, s.RAG.ChunkSize)
	assert.Equal(t, 150, s.RAG.ChunkOverlap())
	assert.Equal(t, 7, s.RAG.TopK)
	assert.Equal(t, 512, s.RAG.ContextCharLimit)
	assert.Equal(t, StoreBackendSQLite, s.Store.Backend)
	assert.Equal(t, 30*time.Second, s.Services.IndexTimeout)
	assert.Equal(t, 120*time.Second, s.Services.GenerationTimeout)
	assert.Empty(t, s.Services.IndexURL)
}

func TestLoad_YamlThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docrag.yaml")
	yamlContent := `
rag:
  top_k: 3
  chunk_size: 500
store:
  backend: qdrant
  name: other_chunks
services:
  index_timeout: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

	t.Setenv("RAG_TOP_K", "4")
	t.Setenv("MODEL_SERVICE_URL", "http://model:8001")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, s.RAG.TopK, "env wins over yaml")
	assert.Equal(t, 500, s.RAG.ChunkSize)
	assert.Equal(t, 75, s.RAG.ChunkOverlap())
	assert.Equal(t, StoreBackendQdrant, s.Store.Backend)
	assert.Equal(t, "other_chunks", s.Store.Name)
	assert.Equal(t, 10*time.Second, s.Services.IndexTimeout)
	assert.Equal(t, "http://model:8001", s.Services.ModelURL)
	assert.Equal(t, 5, s.RAG.MaxDocuments, "untouched keys keep defaults")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad int", "RAG_TOP_K", "seven"},
		{"zero top k", "RAG_TOP_K", "0"},
		{"unknown backend", "VECTOR_STORE_BACKEND", "chroma"},
		{"overlap ratio out of range", "RAG_CHUNK_OVERLAP_RATIO", "1.5"},
		{"bad duration", "INDEX_SERVICE_TIMEOUT", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
