package main

import (
	"context"
	"log"

	"rag-chatbot-backend/internal/ai"
	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/internal/logger"
	"rag-chatbot-backend/internal/queue"
	"rag-chatbot-backend/internal/vectorstore"
	"rag-chatbot-backend/services"

	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	ctx := context.Background()

	// Vector store: Qdrant when configured, in-memory otherwise. The
	// in-memory store is only useful for local smoke tests here since
	// the worker's index would be invisible to the API process.
	var store vectorstore.VectorStore
	if cfg.QdrantURL != "" {
		store = vectorstore.NewQdrantStore(vectorstore.QdrantConfig{
			URL:    cfg.QdrantURL,
			APIKey: cfg.QdrantAPIKey,
		})
	} else {
		store = vectorstore.NewMemoryStore()
		logger.Warn("QDRANT_URL not set, worker indexes into a process-local store")
	}

	embedder, err := ai.NewEmbeddingClient(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to init embedding client:", err)
	}
	defer embedder.Close()

	chunker, err := services.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatal("Invalid chunking configuration:", err)
	}

	indexer := services.NewIndexer(chunker, embedder, store, cfg.CollectionName, cfg.VectorDimensions)

	// Create Asynq server
	server := asynq.NewServer(
		config.AsynqRedisOpt(cfg),
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(indexer)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskReindexDocs, processor.ProcessReindex)

	logger.Info("Starting indexing worker", "redis", cfg.RedisURL)

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
