package models

import "time"

// ChatRequest is the request body for the chat endpoints.
// TopK is bounded by the route layer; zero means "use the default".
type ChatRequest struct {
	Question      string `json:"question" binding:"required,min=1"`
	TopK          int    `json:"top_k" binding:"omitempty,min=1,max=10"`
	ChapterFilter string `json:"chapter_filter,omitempty"`
}

// ContextChatRequest carries a user-selected passage that is pinned
// ahead of retrieved context.
type ContextChatRequest struct {
	Question     string `json:"question" binding:"required,min=1"`
	SelectedText string `json:"selected_text" binding:"required,min=1"`
	PageURL      string `json:"page_url" binding:"required"`
}

// Source is a citation projected from a SearchResult.
type Source struct {
	PageTitle      string  `json:"page_title"`
	PageURL        string  `json:"page_url"`
	Section        string  `json:"section"`
	RelevanceScore float32 `json:"relevance_score"`
}

// AnswerMetadata reports model parameters and approximate token usage.
// Token counts come from a word-count estimate, not an exact tokenizer.
type AnswerMetadata struct {
	Model            string    `json:"model"`
	Temperature      float64   `json:"temperature"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	Timestamp        time.Time `json:"timestamp"`
}

// GeneratedAnswer is the synchronous generation result before
// sources are attached.
type GeneratedAnswer struct {
	Text     string         `json:"text"`
	Metadata AnswerMetadata `json:"metadata"`
}

// ChatResponse is the non-streaming answer with citations.
type ChatResponse struct {
	Answer   string         `json:"answer"`
	Sources  []Source       `json:"sources"`
	Metadata AnswerMetadata `json:"metadata"`
}

// Stream event kinds, emitted in strict order: token* -> sources -> done,
// or a single StreamError terminating the sequence.

// StreamToken is one incremental answer fragment.
type StreamToken struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// StreamSources carries the citations for the streamed answer.
type StreamSources struct {
	Type    string   `json:"type"`
	Sources []Source `json:"sources"`
}

// StreamDone signals successful completion of a stream.
type StreamDone struct {
	Type string `json:"type"`
}

// StreamError terminates a stream; no further events follow it.
type StreamError struct {
	Error string `json:"error"`
}

// SourcesFromResults projects retrieval results into citations,
// preserving order.
func SourcesFromResults(results []SearchResult) []Source {
	sources := make([]Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, Source{
			PageTitle:      r.Title,
			PageURL:        r.URL,
			Section:        r.Chapter,
			RelevanceScore: r.Score,
		})
	}
	return sources
}
