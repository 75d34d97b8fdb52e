package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, "heuristic", cfg.Refiner.Type)
	assert.Equal(t, "input", cfg.Ingest.Folder)
	assert.Equal(t, "chat_history.db", cfg.Sessions.Path)
	assert.Equal(t, 100, cfg.Search.BroadK)
	assert.Equal(t, 12, cfg.Search.SpecificK)
	assert.Equal(t, 5, cfg.Search.CardThreshold)
}

func TestLoad_PartialConfigGetsDefaultsFilledIn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ingest:
  folder: /srv/events
search:
  broad_k: 50
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/events", cfg.Ingest.Folder)
	assert.Equal(t, 50, cfg.Search.BroadK)
	assert.Equal(t, 12, cfg.Search.SpecificK)
	assert.Equal(t, "chat_history.db", cfg.Sessions.Path)
}

func TestLoad_OpenAISectionsGetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
embedder:
  type: openai
  openai:
    model: text-embedding-3-large
refiner:
  type: openai
  openai: {}
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Embedder.OpenAI)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Embedder.OpenAI.BaseURL)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, 30, cfg.Embedder.OpenAI.TimeoutSecs)

	require.NotNil(t, cfg.Refiner.OpenAI)
	assert.Equal(t, "gpt-4.1-mini", cfg.Refiner.OpenAI.Model)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedder: [broken"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Ingest.Folder = "/srv/events"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
