package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// OpenAIRefinerConfig configures the chat-model query refiner.
type OpenAIRefinerConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RefinerConfig selects and configures the query refiner.
type RefinerConfig struct {
	Type   string               `yaml:"type"`
	OpenAI *OpenAIRefinerConfig `yaml:"openai,omitempty"`
}

// IngestConfig points at the folder of event listings.
type IngestConfig struct {
	Folder string `yaml:"folder"`
}

// SessionsConfig locates the chat history database.
type SessionsConfig struct {
	Path string `yaml:"path"`
}

// SearchConfig tunes retrieval breadth and presentation.
type SearchConfig struct {
	BroadK        int `yaml:"broad_k"`
	SpecificK     int `yaml:"specific_k"`
	CardThreshold int `yaml:"card_threshold"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Refiner     RefinerConfig     `yaml:"refiner"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Sessions    SessionsConfig    `yaml:"sessions"`
	Search      SearchConfig      `yaml:"search"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/avevents/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "avevents", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder:    EmbedderConfig{Type: "tfidf"},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Refiner:     RefinerConfig{Type: "heuristic"},
		Ingest:      IngestConfig{Folder: "input"},
		Sessions:    SessionsConfig{Path: "chat_history.db"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Ingest.Folder == "" {
		cfg.Ingest.Folder = "input"
	}
	if cfg.Sessions.Path == "" {
		cfg.Sessions.Path = "chat_history.db"
	}
	if cfg.Search.BroadK == 0 {
		cfg.Search.BroadK = 100
	}
	if cfg.Search.SpecificK == 0 {
		cfg.Search.SpecificK = 12
	}
	if cfg.Search.CardThreshold == 0 {
		cfg.Search.CardThreshold = 5
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Refiner.Type == "openai" && cfg.Refiner.OpenAI != nil {
		if cfg.Refiner.OpenAI.BaseURL == "" {
			cfg.Refiner.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Refiner.OpenAI.APIKeyEnv == "" {
			cfg.Refiner.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Refiner.OpenAI.Model == "" {
			cfg.Refiner.OpenAI.Model = "gpt-4.1-mini"
		}
		if cfg.Refiner.OpenAI.TimeoutSecs == 0 {
			cfg.Refiner.OpenAI.TimeoutSecs = 30
		}
	}
}
