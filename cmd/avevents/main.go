package main

import (
	"context"
	"flag"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"avevents/internal/config"
	"avevents/internal/domain"
	"avevents/internal/embedding/openai"
	"avevents/internal/embedding/tfidf"
	"avevents/internal/ingest"
	"avevents/internal/refiner"
	"avevents/internal/refs"
	"avevents/internal/retrieval"
	"avevents/internal/service"
	"avevents/internal/session"
	"avevents/internal/tui"
	"avevents/internal/vectorstore/memory"
	"avevents/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, sessionID string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/avevents/config.yaml if not provided)")
	flag.StringVar(&sessionID, "session", "", "Session id to resume (optional; a new session is created by default)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	emb := buildEmbedder(cfg)
	store := buildStore(cfg)
	ref := buildRefiner(cfg)

	records, err := ingest.LoadFolder(cfg.Ingest.Folder)
	if err != nil {
		log.Fatalf("failed to load events from %s: %v", cfg.Ingest.Folder, err)
	}
	if len(records) == 0 {
		log.Fatalf("no event listings found in %s", cfg.Ingest.Folder)
	}

	index := retrieval.NewIndex(emb, store)
	if err := index.Build(records); err != nil {
		log.Fatalf("failed to build event index: %v", err)
	}
	log.Printf("indexed %d event records from %s", index.Size(), cfg.Ingest.Folder)

	sessions, err := session.Open(cfg.Sessions.Path)
	if err != nil {
		log.Fatalf("failed to open session store: %v", err)
	}
	defer sessions.Close()

	var history []domain.Message
	if sessionID == "" {
		sessionID = session.NewSessionID()
	} else {
		history, err = sessions.LoadHistory(context.Background(), sessionID)
		if err != nil {
			log.Fatalf("failed to load session %s: %v", sessionID, err)
		}
	}

	assistant := service.NewAssistant(index, ref, refs.NewRegistry(), sessions, service.Options{
		BroadK:        cfg.Search.BroadK,
		SpecificK:     cfg.Search.SpecificK,
		CardThreshold: cfg.Search.CardThreshold,
	})

	m := tui.New(assistant, sessionID, history)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}

func buildEmbedder(cfg *config.AppConfig) domain.Embedder {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatalf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		return client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}
	return nil
}

func buildStore(cfg *config.AppConfig) domain.VectorStore {
	switch cfg.VectorStore.Type {
	case "memory", "":
		return memory.NewStorage()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
	}
	return nil
}

func buildRefiner(cfg *config.AppConfig) domain.QueryRefiner {
	switch cfg.Refiner.Type {
	case "heuristic", "":
		return refiner.NewHeuristicRefiner()
	case "openai":
		if cfg.Refiner.OpenAI == nil {
			log.Fatalf("openai refiner config missing")
		}
		r, err := refiner.NewOpenAIRefiner(refiner.OpenAIConfig{
			BaseURL:   cfg.Refiner.OpenAI.BaseURL,
			APIKeyEnv: cfg.Refiner.OpenAI.APIKeyEnv,
			Model:     cfg.Refiner.OpenAI.Model,
			Timeout:   time.Duration(cfg.Refiner.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai refiner init failed: %v", err)
		}
		return r
	default:
		log.Fatalf("unknown refiner: %s", cfg.Refiner.Type)
	}
	return nil
}
