package services

import (
	"context"

	"rag-chatbot-backend/internal/vectorstore"
	"rag-chatbot-backend/models"
)

// Retriever composes the embedder and the vector store to turn a query
// into a ranked, filtered list of passages. It holds no state beyond
// its collaborators.
type Retriever struct {
	embedder       Embedder
	store          vectorstore.VectorStore
	collection     string
	scoreThreshold float32
}

func NewRetriever(embedder Embedder, store vectorstore.VectorStore, collection string, scoreThreshold float64) *Retriever {
	return &Retriever{
		embedder:       embedder,
		store:          store,
		collection:     collection,
		scoreThreshold: float32(scoreThreshold),
	}
}

// Retrieve embeds the query text and searches the collection. An empty
// result is a valid outcome the caller handles; it is not an error.
func (r *Retriever) Retrieve(ctx context.Context, q models.SearchQuery) ([]models.SearchResult, error) {
	vector, err := r.embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil, err
	}

	threshold := q.ScoreThreshold
	if threshold == 0 {
		threshold = r.scoreThreshold
	}

	hits, err := r.store.Search(ctx, r.collection, vector, vectorstore.SearchParams{
		Limit:          q.TopK,
		ScoreThreshold: threshold,
		Chapter:        q.Chapter,
	})
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, models.SearchResult{
			Text:       hit.Payload.Text,
			Title:      hit.Payload.Title,
			URL:        hit.Payload.URL,
			Chapter:    hit.Payload.Chapter,
			Score:      hit.Score,
			ChunkIndex: hit.Payload.ChunkIndex,
		})
	}
	return results, nil
}
