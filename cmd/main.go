package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rag-chatbot-backend/internal/ai"
	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/internal/logger"
	"rag-chatbot-backend/internal/telemetry"
	"rag-chatbot-backend/internal/vectorstore"
	"rag-chatbot-backend/middleware"
	"rag-chatbot-backend/routes"
	"rag-chatbot-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Initialize tracing; failure is non-fatal for local runs
	shutdownTracer, err := telemetry.InitTracer("rag-chatbot-api")
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	} else {
		defer shutdownTracer()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	ctx := context.Background()

	// Vector store: Qdrant when configured, in-memory otherwise
	var store vectorstore.VectorStore
	if cfg.QdrantURL != "" {
		store = vectorstore.NewQdrantStore(vectorstore.QdrantConfig{
			URL:    cfg.QdrantURL,
			APIKey: cfg.QdrantAPIKey,
		})
		logger.Info("Using Qdrant vector store", "url", cfg.QdrantURL)
	} else {
		store = vectorstore.NewMemoryStore()
		logger.Warn("QDRANT_URL not set, using in-memory vector store")
	}

	if err := store.EnsureCollection(ctx, cfg.CollectionName, cfg.VectorDimensions, vectorstore.DistanceCosine); err != nil {
		log.Fatal("Failed to ensure collection:", err)
	}

	// Gemini clients
	embedder, err := ai.NewEmbeddingClient(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to init embedding client:", err)
	}
	defer embedder.Close()

	prompts := services.NewPromptBuilder()

	geminiClient, err := ai.NewGeminiClient(ctx, cfg, prompts.SystemPrompt())
	if err != nil {
		log.Fatal("Failed to init Gemini client:", err)
	}
	defer geminiClient.Close()

	generator := services.NewGeminiGenerator(geminiClient)

	// Pipeline services
	chunker, err := services.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatal("Invalid chunking configuration:", err)
	}

	retriever := services.NewRetriever(embedder, store, cfg.CollectionName, cfg.ScoreThreshold)
	indexer := services.NewIndexer(chunker, embedder, store, cfg.CollectionName, cfg.VectorDimensions)

	// Redis is optional; without it rate limiting and the task queue are off
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, rate limiting and task queue disabled", "error", err)
		rdb = nil
	}

	var asynqClient *asynq.Client
	if rdb != nil {
		asynqClient = asynq.NewClient(config.AsynqRedisOpt(cfg))
		defer asynqClient.Close()
	}

	// Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.MetricsMiddleware(metrics))
	if rdb != nil {
		router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"version":   version,
			"timestamp": time.Now(),
		})
	})

	// Setup routes
	routes.SetupChatRoutes(router, cfg, retriever, prompts, generator, metrics)
	routes.SetupAdminRoutes(router, cfg, indexer, store, asynqClient, metrics)

	// Optional scheduled re-indexing
	var scheduler *services.Scheduler
	if cfg.ReindexCron != "" {
		scheduler = services.NewScheduler()
		if err := scheduler.ScheduleReindex(cfg.ReindexCron, indexer, cfg.DocsPath); err != nil {
			log.Fatal("Failed to schedule re-index:", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info("Scheduled re-indexing enabled", "cron", cfg.ReindexCron)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
