package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/internal/telemetry"
	"rag-chatbot-backend/internal/vectorstore"
	"rag-chatbot-backend/models"
	"rag-chatbot-backend/services"

	"github.com/gin-gonic/gin"
)

type constEmbedder struct{}

func (constEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func adminRouter(t *testing.T, docsPath string) (*gin.Engine, *vectorstore.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		t.Fatal(err)
	}

	chunker, err := services.NewChunker(800, 100)
	if err != nil {
		t.Fatal(err)
	}

	store := vectorstore.NewMemoryStore()
	cfg := &config.Config{
		CollectionName:   "book_chunks",
		VectorDimensions: 3,
		DocsPath:         docsPath,
	}
	indexer := services.NewIndexer(chunker, constEmbedder{}, store, cfg.CollectionName, cfg.VectorDimensions)

	router := gin.New()
	SetupAdminRoutes(router, cfg, indexer, store, nil, metrics)
	return router, store
}

func seedDocs(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "chapter-1", "intro.md")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	content := strings.Repeat("word ", 150)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestReindexForeground(t *testing.T) {
	router, store := adminRouter(t, seedDocs(t))

	w := postJSON(router, "/api/reindex", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp models.ReindexResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "completed" || resp.IndexedCount != 1 || resp.FailedCount != 0 {
		t.Fatalf("response = %+v", resp)
	}
	if len(resp.Details) != 1 || resp.Details[0].File != "intro.md" {
		t.Fatalf("details = %+v", resp.Details)
	}

	stats, err := store.Stats(context.Background(), "book_chunks")
	if err != nil {
		t.Fatal(err)
	}
	if stats.PointsCount != 1 {
		t.Fatalf("points = %d, want 1", stats.PointsCount)
	}
}

func TestReindexEmptyBodyUsesDefaults(t *testing.T) {
	router, _ := adminRouter(t, seedDocs(t))

	w := postJSON(router, "/api/reindex", ``)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
}

func TestReindexMissingPath(t *testing.T) {
	router, _ := adminRouter(t, "/nonexistent/docs")

	w := postJSON(router, "/api/reindex", `{}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestReindexBackgroundReturnsJobID(t *testing.T) {
	router, _ := adminRouter(t, seedDocs(t))

	w := postJSON(router, "/api/reindex", `{"background":true}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", w.Code, w.Body.String())
	}

	var resp models.ReindexResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "started" || resp.JobID == "" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestCollectionStats(t *testing.T) {
	router, store := adminRouter(t, seedDocs(t))

	// Missing collection reports 404.
	req := httptest.NewRequest(http.MethodGet, "/api/collection/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	if err := store.EnsureCollection(context.Background(), "book_chunks", 3, vectorstore.DistanceCosine); err != nil {
		t.Fatal(err)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["collection"] != "book_chunks" {
		t.Fatalf("response = %v", resp)
	}
}

func TestDeleteCollectionResets(t *testing.T) {
	router, store := adminRouter(t, seedDocs(t))
	ctx := context.Background()

	// Populate, then reset through the API.
	if w := postJSON(router, "/api/reindex", `{}`); w.Code != http.StatusOK {
		t.Fatalf("seed reindex failed: %s", w.Body.String())
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/collection", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	stats, err := store.Stats(ctx, "book_chunks")
	if err != nil {
		t.Fatalf("collection should exist after reset: %v", err)
	}
	if stats.PointsCount != 0 {
		t.Fatalf("points after reset = %d, want 0", stats.PointsCount)
	}
}
