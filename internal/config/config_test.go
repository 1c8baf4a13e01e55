package config

import (
	"testing"
)

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when GEMINI_API_KEY is unset")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.EmbeddingsModel != "text-embedding-004" {
		t.Errorf("EmbeddingsModel = %q", cfg.EmbeddingsModel)
	}
	if cfg.VectorDimensions != 768 {
		t.Errorf("VectorDimensions = %d, want 768", cfg.VectorDimensions)
	}
	if cfg.CollectionName != "book_chunks" {
		t.Errorf("CollectionName = %q", cfg.CollectionName)
	}
	if cfg.ChunkSize != 800 || cfg.ChunkOverlap != 100 {
		t.Errorf("chunking = %d/%d, want 800/100", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.ScoreThreshold != 0.5 {
		t.Errorf("ScoreThreshold = %v, want 0.5", cfg.ScoreThreshold)
	}
	if cfg.DefaultTopK != 5 {
		t.Errorf("DefaultTopK = %d, want 5", cfg.DefaultTopK)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", cfg.Temperature)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("CHUNK_SIZE", "400")
	t.Setenv("SCORE_THRESHOLD", "0.7")
	t.Setenv("QDRANT_URL", "http://qdrant:6333")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ChunkSize != 400 {
		t.Errorf("ChunkSize = %d, want 400", cfg.ChunkSize)
	}
	if cfg.ScoreThreshold != 0.7 {
		t.Errorf("ScoreThreshold = %v, want 0.7", cfg.ScoreThreshold)
	}
	if cfg.QdrantURL != "http://qdrant:6333" {
		t.Errorf("QdrantURL = %q", cfg.QdrantURL)
	}
}

func TestLoadConfigRejectsBadVectorDim(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("VECTOR_DIM", "-5")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for negative VECTOR_DIM")
	}
}
