package services

import (
	"context"

	"rag-chatbot-backend/models"
)

// Embedder converts text into a fixed-dimension vector via a remote
// provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ContextRetriever turns a natural-language query into a ranked,
// filtered list of passages. An empty slice is a valid outcome, not an
// error.
type ContextRetriever interface {
	Retrieve(ctx context.Context, q models.SearchQuery) ([]models.SearchResult, error)
}

// TokenStream is a single-consumer, non-restartable sequence of answer
// fragments. Next returns io.EOF after the final fragment; consumers
// must drain the stream or call Close to release the connection.
type TokenStream interface {
	Next() (string, error)
	Close()
}

// AnswerGenerator produces a complete answer or an incremental token
// stream from a grounding prompt.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, prompt string) (*models.GeneratedAnswer, error)
	GenerateAnswerStream(ctx context.Context, prompt string) (TokenStream, error)
}
