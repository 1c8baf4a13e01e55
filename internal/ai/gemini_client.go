package ai

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/internal/logger"
	"rag-chatbot-backend/models"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

// GeminiClient generates grounded answers via Google Generative AI.
// Calls go through a circuit breaker and a request rate limiter sized
// for the configured API tier.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float64
	maxTokens   int
	system      string
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
}

type RateLimits struct {
	RPM int // Requests per minute
	TPM int // Tokens per minute
	RPD int // Requests per day
}

func NewGeminiClient(ctx context.Context, cfg *config.Config, systemPrompt string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	limits := getRateLimits(cfg.GeminiTier)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), limits.RPM/10+1)

	return &GeminiClient{
		client:      client,
		model:       cfg.GeminiModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
		system:      systemPrompt,
		breaker:     breaker,
		rateLimiter: rateLimiter,
	}, nil
}

func getRateLimits(tier string) RateLimits {
	switch tier {
	case "free":
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	case "tier1":
		return RateLimits{RPM: 1000, TPM: 1000000, RPD: 10000}
	case "tier2":
		return RateLimits{RPM: 2000, TPM: 4000000, RPD: 50000}
	default:
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	}
}

func (gc *GeminiClient) generativeModel() *genai.GenerativeModel {
	model := gc.client.GenerativeModel(gc.model)
	model.SetTemperature(float32(gc.temperature))
	model.SetMaxOutputTokens(int32(gc.maxTokens))
	if gc.system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(gc.system)},
		}
	}
	return model
}

// GenerateAnswer blocks until the provider returns a complete answer.
// Token counts in the metadata are a word-count approximation, kept for
// observability only.
func (gc *GeminiClient) GenerateAnswer(ctx context.Context, prompt string) (*models.GeneratedAnswer, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate_answer")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", gc.model),
		attribute.Int("gemini.prompt_tokens_estimate", estimateTokens(prompt)),
	)

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return nil, &ProviderError{Op: "gemini.generate", Err: err}
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.generativeModel()
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return nil, &ProviderError{Op: "gemini.generate", Err: err}
	}

	text := responseText(result.(*genai.GenerateContentResponse))
	if text == "" {
		span.SetAttributes(attribute.Bool("gemini.empty_response", true))
		return nil, &ProviderError{Op: "gemini.generate", Err: fmt.Errorf("empty response from model")}
	}

	promptTokens := estimateTokens(prompt)
	completionTokens := estimateTokens(text)
	span.SetAttributes(attribute.Int("gemini.completion_tokens_estimate", completionTokens))

	return &models.GeneratedAnswer{
		Text: text,
		Metadata: models.AnswerMetadata{
			Model:            gc.model,
			Temperature:      gc.temperature,
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
			Timestamp:        time.Now().UTC(),
		},
	}, nil
}

// GenerateAnswerStream starts a streaming generation. The returned
// stream is single-consumer and non-restartable: drain it to io.EOF or
// call Close to release the upstream connection.
func (gc *GeminiClient) GenerateAnswerStream(ctx context.Context, prompt string) (*AnswerStream, error) {
	if err := gc.rateLimiter.Wait(ctx); err != nil {
		return nil, &ProviderError{Op: "gemini.generate_stream", Err: err}
	}

	streamCtx, cancel := context.WithCancel(ctx)
	model := gc.generativeModel()
	iter := model.GenerateContentStream(streamCtx, genai.Text(prompt))

	return &AnswerStream{iter: iter, cancel: cancel}, nil
}

// AnswerStream yields answer fragments in provider-emission order.
type AnswerStream struct {
	iter   *genai.GenerateContentResponseIterator
	cancel context.CancelFunc
	closed bool
}

// Next returns the next text fragment, io.EOF when the provider is
// done, or a ProviderError on mid-stream failure.
func (s *AnswerStream) Next() (string, error) {
	if s.closed {
		return "", io.EOF
	}
	for {
		resp, err := s.iter.Next()
		if err == iterator.Done {
			return "", io.EOF
		}
		if err != nil {
			return "", &ProviderError{Op: "gemini.stream_next", Err: err}
		}
		if text := responseText(resp); text != "" {
			return text, nil
		}
		// Skip empty intermediate responses (e.g. safety-only candidates).
	}
}

// Close cancels the upstream request. Safe to call more than once.
func (s *AnswerStream) Close() {
	if !s.closed {
		s.closed = true
		s.cancel()
	}
}

func (gc *GeminiClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}

// estimateTokens approximates token usage from word counts. This is not
// an exact tokenizer and must not be used for billing.
func estimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * 1.3)
}
