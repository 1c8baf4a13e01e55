package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Gemini Configuration
	GeminiAPIKey    string
	GeminiModel     string
	GeminiTier      string
	Temperature     float64
	MaxOutputTokens int

	// Embeddings configuration
	EmbeddingsModel  string
	VectorDimensions int

	// Qdrant Configuration (empty URL falls back to the in-memory store)
	QdrantURL      string
	QdrantAPIKey   string
	CollectionName string

	// Indexing Configuration
	DocsPath     string
	ChunkSize    int
	ChunkOverlap int
	ReindexCron  string

	// Retrieval Configuration
	ScoreThreshold float64
	DefaultTopK    int

	// Redis Configuration (Asynq transport + rate limiting)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	RateLimitReqs   int
	RateLimitWindow int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTier:      getEnv("GEMINI_TIER", "free"),
		Temperature:     getEnvFloat64("MODEL_TEMPERATURE", 0.3),
		MaxOutputTokens: getEnvInt("MODEL_MAX_OUTPUT_TOKENS", 2048),

		EmbeddingsModel:  getEnv("EMBEDDINGS_MODEL", "text-embedding-004"),
		VectorDimensions: getEnvInt("VECTOR_DIM", 768),

		QdrantURL:      getEnv("QDRANT_URL", ""),
		QdrantAPIKey:   getEnv("QDRANT_API_KEY", ""),
		CollectionName: getEnv("QDRANT_COLLECTION_NAME", "book_chunks"),

		DocsPath:     getEnv("DOCS_PATH", "./docs"),
		ChunkSize:    getEnvInt("CHUNK_SIZE", 800),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 100),
		ReindexCron:  getEnv("REINDEX_CRON", ""),

		ScoreThreshold: getEnvFloat64("SCORE_THRESHOLD", 0.5),
		DefaultTopK:    getEnvInt("DEFAULT_TOP_K", 5),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if cfg.VectorDimensions <= 0 {
		return nil, fmt.Errorf("VECTOR_DIM must be a positive integer")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
