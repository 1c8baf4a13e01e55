package vectorstore

import (
	"context"
	"errors"
)

// Distance metrics supported at collection creation. Cosine is the only
// one this service uses.
const DistanceCosine = "Cosine"

var (
	// ErrVectorSizeMismatch means an existing collection was created with
	// an incompatible vector size. This is a deployment configuration
	// problem, not a per-request condition.
	ErrVectorSizeMismatch = errors.New("collection vector size mismatch")

	// ErrCollectionNotFound means an operation needed a collection that
	// does not exist.
	ErrCollectionNotFound = errors.New("collection not found")
)

// Payload is the metadata stored alongside every vector.
type Payload struct {
	Text       string `json:"text"`
	DocID      string `json:"doc_id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Chapter    string `json:"chapter"`
	ChunkIndex int    `json:"chunk_index"`
	IndexedAt  string `json:"indexed_at"`
}

// Point is one vector plus payload, keyed by a deterministic string ID.
type Point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload Payload   `json:"payload"`
}

// ScoredPoint is a search hit with its cosine similarity score.
type ScoredPoint struct {
	Score   float32 `json:"score"`
	Payload Payload `json:"payload"`
}

// SearchParams bound one similarity search. Chapter, when non-empty,
// restricts hits to an exact payload match.
type SearchParams struct {
	Limit          int
	ScoreThreshold float32
	Chapter        string
}

// CollectionStats mirrors the store's collection counters.
type CollectionStats struct {
	VectorsCount        int64 `json:"vectors_count"`
	IndexedVectorsCount int64 `json:"indexed_vectors_count"`
	PointsCount         int64 `json:"points_count"`
}

// VectorStore is the capability surface the pipeline needs from an
// external vector database.
type VectorStore interface {
	// EnsureCollection creates the collection if absent and is a no-op if
	// it already exists with a matching vector size. A size conflict
	// returns ErrVectorSizeMismatch.
	EnsureCollection(ctx context.Context, name string, vectorSize int, distance string) error

	// Upsert inserts or replaces points keyed by Point.ID. Calling it
	// concurrently with identical points is convergent, not additive.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns at most params.Limit hits with score >= threshold,
	// ordered descending by score. An empty result is valid.
	Search(ctx context.Context, collection string, vector []float32, params SearchParams) ([]ScoredPoint, error)

	Stats(ctx context.Context, collection string) (*CollectionStats, error)

	DeleteCollection(ctx context.Context, name string) error
}
