// Command avevents-index (re)builds a remote event index from the listings
// folder, for deployments that keep vectors in Qdrant rather than in process
// memory.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"avevents/internal/config"
	"avevents/internal/domain"
	"avevents/internal/embedding/openai"
	"avevents/internal/embedding/tfidf"
	"avevents/internal/ingest"
	"avevents/internal/retrieval"
	"avevents/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var force bool
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to config YAML")
	flag.BoolVar(&force, "force", false, "Drop the existing collection before indexing")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.VectorStore.Type != "qdrant" || cfg.VectorStore.Qdrant == nil {
		log.Fatalf("avevents-index requires a qdrant vector store in config")
	}

	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
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
		emb = client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	store := qdrant.NewStorage(qdrant.Config{
		URL:        cfg.VectorStore.Qdrant.URL,
		APIKey:     cfg.VectorStore.Qdrant.APIKey,
		Collection: cfg.VectorStore.Qdrant.Collection,
		Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
	})
	if force {
		if err := store.Clear(); err != nil {
			log.Fatalf("failed to drop collection: %v", err)
		}
		log.Printf("dropped collection %s", cfg.VectorStore.Qdrant.Collection)
	}

	records, err := ingest.LoadFolder(cfg.Ingest.Folder)
	if err != nil {
		log.Fatalf("failed to load events from %s: %v", cfg.Ingest.Folder, err)
	}

	index := retrieval.NewIndex(emb, store)
	if err := index.Build(records); err != nil {
		log.Fatalf("failed to build index: %v", err)
	}
	log.Printf("indexed %d event records into %s", index.Size(), cfg.VectorStore.Qdrant.Collection)
}
