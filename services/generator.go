package services

import (
	"context"

	"rag-chatbot-backend/internal/ai"
	"rag-chatbot-backend/models"
)

// geminiGenerator adapts the concrete Gemini client to the
// AnswerGenerator interface consumed by the routes.
type geminiGenerator struct {
	client *ai.GeminiClient
}

func NewGeminiGenerator(client *ai.GeminiClient) AnswerGenerator {
	return &geminiGenerator{client: client}
}

func (g *geminiGenerator) GenerateAnswer(ctx context.Context, prompt string) (*models.GeneratedAnswer, error) {
	return g.client.GenerateAnswer(ctx, prompt)
}

func (g *geminiGenerator) GenerateAnswerStream(ctx context.Context, prompt string) (TokenStream, error) {
	stream, err := g.client.GenerateAnswerStream(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return stream, nil
}
