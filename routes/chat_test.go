package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/internal/telemetry"
	"rag-chatbot-backend/models"
	"rag-chatbot-backend/services"

	"github.com/gin-gonic/gin"
)

type stubRetriever struct {
	results []models.SearchResult
	err     error
	lastQ   models.SearchQuery
}

func (s *stubRetriever) Retrieve(ctx context.Context, q models.SearchQuery) ([]models.SearchResult, error) {
	s.lastQ = q
	return s.results, s.err
}

type stubStream struct {
	tokens []string
	failAt int
	i      int
	closed bool
}

func (s *stubStream) Next() (string, error) {
	if s.failAt >= 0 && s.i == s.failAt {
		return "", errors.New("provider hiccup")
	}
	if s.i >= len(s.tokens) {
		return "", io.EOF
	}
	tok := s.tokens[s.i]
	s.i++
	return tok, nil
}

func (s *stubStream) Close() { s.closed = true }

type stubGenerator struct {
	answer *models.GeneratedAnswer
	stream *stubStream
	err    error
}

func (s *stubGenerator) GenerateAnswer(ctx context.Context, prompt string) (*models.GeneratedAnswer, error) {
	return s.answer, s.err
}

func (s *stubGenerator) GenerateAnswerStream(ctx context.Context, prompt string) (services.TokenStream, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.stream, nil
}

func chatRouter(t *testing.T, retriever services.ContextRetriever, generator services.AnswerGenerator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{DefaultTopK: 5, ScoreThreshold: 0.5}
	router := gin.New()
	SetupChatRoutes(router, cfg, retriever, services.NewPromptBuilder(), generator, metrics)
	return router
}

func retrievedChunks() []models.SearchResult {
	return []models.SearchResult{
		{Text: "chunk text", Title: "Embeddings", URL: "/chapter-1/embeddings", Chapter: "Chapter 1", Score: 0.9},
	}
}

func goodAnswer() *models.GeneratedAnswer {
	return &models.GeneratedAnswer{
		Text: "An embedding is a vector.",
		Metadata: models.AnswerMetadata{
			Model: "gemini-2.0-flash", Temperature: 0.3,
			PromptTokens: 50, CompletionTokens: 10, TotalTokens: 60,
			Timestamp: time.Now(),
		},
	}
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sseEvents(t *testing.T, body string) []map[string]any {
	t.Helper()
	var events []map[string]any
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		line := strings.TrimPrefix(block, "data: ")
		var event map[string]any
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Fatalf("bad SSE event %q: %v", block, err)
		}
		events = append(events, event)
	}
	return events
}

func TestChatReturnsAnswerWithSources(t *testing.T) {
	retriever := &stubRetriever{results: retrievedChunks()}
	router := chatRouter(t, retriever, &stubGenerator{answer: goodAnswer()})

	w := postJSON(router, "/api/chat", `{"question":"What is an embedding?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp models.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "An embedding is a vector." {
		t.Fatalf("answer = %q", resp.Answer)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].PageTitle != "Embeddings" {
		t.Fatalf("sources = %+v", resp.Sources)
	}
	if resp.Metadata.TotalTokens != 60 {
		t.Fatalf("metadata not propagated: %+v", resp.Metadata)
	}
	if retriever.lastQ.TopK != 5 {
		t.Fatalf("default top_k = %d, want 5", retriever.lastQ.TopK)
	}
}

func TestChatEmptyRetrievalIs404(t *testing.T) {
	router := chatRouter(t, &stubRetriever{}, &stubGenerator{answer: goodAnswer()})

	w := postJSON(router, "/api/chat", `{"question":"unknown topic"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not_found") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestChatValidation(t *testing.T) {
	router := chatRouter(t, &stubRetriever{results: retrievedChunks()}, &stubGenerator{answer: goodAnswer()})

	cases := []string{
		`{}`,
		`{"question":""}`,
		`{"question":"q","top_k":11}`,
		`not json`,
	}
	for _, body := range cases {
		if w := postJSON(router, "/api/chat", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestChatGenerationFailure(t *testing.T) {
	router := chatRouter(t, &stubRetriever{results: retrievedChunks()}, &stubGenerator{err: errors.New("quota")})

	w := postJSON(router, "/api/chat", `{"question":"q"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ai_generation_error") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestChatPassesChapterFilter(t *testing.T) {
	retriever := &stubRetriever{results: retrievedChunks()}
	router := chatRouter(t, retriever, &stubGenerator{answer: goodAnswer()})

	w := postJSON(router, "/api/chat", `{"question":"q","top_k":3,"chapter_filter":"Chapter 1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if retriever.lastQ.TopK != 3 || retriever.lastQ.Chapter != "Chapter 1" {
		t.Fatalf("query = %+v", retriever.lastQ)
	}
}

func TestChatStreamEventOrder(t *testing.T) {
	stream := &stubStream{tokens: []string{"An ", "embedding ", "is..."}, failAt: -1}
	router := chatRouter(t, &stubRetriever{results: retrievedChunks()}, &stubGenerator{stream: stream})

	w := postJSON(router, "/api/chat/stream", `{"question":"q"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}

	events := sseEvents(t, w.Body.String())
	if len(events) != 5 {
		t.Fatalf("got %d events, want 5: %v", len(events), events)
	}
	for i := 0; i < 3; i++ {
		if events[i]["type"] != "token" {
			t.Fatalf("event %d type = %v, want token", i, events[i]["type"])
		}
	}
	if events[3]["type"] != "sources" {
		t.Fatalf("event 3 = %v, want sources", events[3])
	}
	if events[4]["type"] != "done" {
		t.Fatalf("event 4 = %v, want done", events[4])
	}
	if !stream.closed {
		t.Fatal("stream was not closed")
	}
}

func TestChatStreamEmptyRetrievalSendsError(t *testing.T) {
	router := chatRouter(t, &stubRetriever{}, &stubGenerator{stream: &stubStream{failAt: -1}})

	w := postJSON(router, "/api/chat/stream", `{"question":"q"}`)
	events := sseEvents(t, w.Body.String())
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1: %v", len(events), events)
	}
	if _, ok := events[0]["error"]; !ok {
		t.Fatalf("expected a single error event, got %v", events[0])
	}
}

func TestChatStreamMidStreamFailure(t *testing.T) {
	stream := &stubStream{tokens: []string{"partial "}, failAt: 1}
	router := chatRouter(t, &stubRetriever{results: retrievedChunks()}, &stubGenerator{stream: stream})

	w := postJSON(router, "/api/chat/stream", `{"question":"q"}`)
	events := sseEvents(t, w.Body.String())

	last := events[len(events)-1]
	if _, ok := last["error"]; !ok {
		t.Fatalf("last event should be an error, got %v", last)
	}
	for _, e := range events {
		if e["type"] == "done" || e["type"] == "sources" {
			t.Fatalf("no sources/done may follow a failure: %v", events)
		}
	}
	if !stream.closed {
		t.Fatal("stream was not closed after failure")
	}
}

func TestContextChatPinsSelection(t *testing.T) {
	retriever := &stubRetriever{results: retrievedChunks()}
	router := chatRouter(t, retriever, &stubGenerator{answer: goodAnswer()})

	w := postJSON(router, "/api/chat/context",
		`{"question":"Why?","selected_text":"the passage","page_url":"/chapter-3/page"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp models.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(resp.Sources))
	}
	if resp.Sources[0].PageTitle != "Selected Text" || resp.Sources[0].RelevanceScore != 1.0 {
		t.Fatalf("first source is not the pinned selection: %+v", resp.Sources[0])
	}
	if retriever.lastQ.TopK != 2 {
		t.Fatalf("context retrieval top_k = %d, want 2", retriever.lastQ.TopK)
	}
}

func TestContextChatValidation(t *testing.T) {
	router := chatRouter(t, &stubRetriever{results: retrievedChunks()}, &stubGenerator{answer: goodAnswer()})

	cases := []string{
		`{"question":"q","selected_text":"s"}`,
		`{"question":"q","page_url":"/p"}`,
		`{"selected_text":"s","page_url":"/p"}`,
	}
	for _, body := range cases {
		if w := postJSON(router, "/api/chat/context", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}
