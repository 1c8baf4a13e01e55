package ai

import (
	"context"
	"fmt"

	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/internal/vectorstore"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// EmbeddingClient produces fixed-dimension vectors via Google
// Generative AI (text-embedding-004 by default). One client is
// constructed at process start and shared.
type EmbeddingClient struct {
	client    *genai.Client
	model     string
	dimension int
}

func NewEmbeddingClient(ctx context.Context, cfg *config.Config) (*EmbeddingClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY for embeddings")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}
	return &EmbeddingClient{
		client:    client,
		model:     cfg.EmbeddingsModel,
		dimension: cfg.VectorDimensions,
	}, nil
}

// Embed returns the embedding vector for the given text. The provider's
// dimension must match the collection's configured vector size; a
// mismatch is a configuration error, not a per-request condition.
func (ec *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	model := ec.client.EmbeddingModel(ec.model)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, &ProviderError{Op: "embeddings.embed", Err: err}
	}
	if resp.Embedding == nil {
		return nil, &ProviderError{Op: "embeddings.embed", Err: fmt.Errorf("no embedding returned")}
	}
	vec := resp.Embedding.Values
	if len(vec) != ec.dimension {
		return nil, fmt.Errorf("model %q returned dimension %d, want %d: %w",
			ec.model, len(vec), ec.dimension, vectorstore.ErrVectorSizeMismatch)
	}
	return vec, nil
}

func (ec *EmbeddingClient) Close() error {
	if ec.client != nil {
		return ec.client.Close()
	}
	return nil
}
