package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter   metric.Int64Counter
	RequestDuration  metric.Float64Histogram
	TokensUsed       metric.Int64Counter
	IndexingDuration metric.Float64Histogram
	RetrievalResults metric.Int64Histogram
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("rag-chatbot-backend")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	tokensUsed, err := meter.Int64Counter(
		"gemini.tokens.used",
		metric.WithDescription("Total Gemini tokens used"),
	)
	if err != nil {
		return nil, err
	}

	indexingDuration, err := meter.Float64Histogram(
		"index.reindex.duration",
		metric.WithDescription("Full re-index duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	retrievalResults, err := meter.Int64Histogram(
		"retrieval.results.count",
		metric.WithDescription("Number of chunks returned per retrieval"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:   requestCounter,
		RequestDuration:  requestDuration,
		TokensUsed:       tokensUsed,
		IndexingDuration: indexingDuration,
		RetrievalResults: retrievalResults,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordTokensUsed records Gemini token usage
func (m *Metrics) RecordTokensUsed(tokens int64, model string) {
	attrs := []attribute.KeyValue{
		attribute.String("gemini.model", model),
	}

	m.TokensUsed.Add(context.Background(), tokens, metric.WithAttributes(attrs...))
}

// RecordIndexing records the duration and outcome of a full re-index.
func (m *Metrics) RecordIndexing(duration float64, status string) {
	attrs := []attribute.KeyValue{
		attribute.String("index.status", status),
	}

	m.IndexingDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordRetrieval records how many chunks a search returned.
func (m *Metrics) RecordRetrieval(count int64, chapterFiltered bool) {
	attrs := []attribute.KeyValue{
		attribute.Bool("retrieval.chapter_filtered", chapterFiltered),
	}

	m.RetrievalResults.Record(context.Background(), count, metric.WithAttributes(attrs...))
}
