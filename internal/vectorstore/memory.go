package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is a brute-force cosine-similarity store used as the
// development fallback when no Qdrant URL is configured, and as the
// test double for the pipeline.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	vectorSize int
	points     map[string]Point
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func (s *MemoryStore) EnsureCollection(ctx context.Context, name string, vectorSize int, distance string) error {
	if vectorSize <= 0 {
		return fmt.Errorf("invalid vector size %d", vectorSize)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if col, ok := s.collections[name]; ok {
		if col.vectorSize != vectorSize {
			return fmt.Errorf("collection %q has size %d, want %d: %w", name, col.vectorSize, vectorSize, ErrVectorSizeMismatch)
		}
		return nil
	}
	s.collections[name] = &memoryCollection{
		vectorSize: vectorSize,
		points:     make(map[string]Point),
	}
	return nil
}

func (s *MemoryStore) Upsert(ctx context.Context, collection string, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("collection %q: %w", collection, ErrCollectionNotFound)
	}
	for _, p := range points {
		if len(p.Vector) != col.vectorSize {
			return fmt.Errorf("point %q has dimension %d, want %d: %w", p.ID, len(p.Vector), col.vectorSize, ErrVectorSizeMismatch)
		}
	}
	for _, p := range points {
		col.points[p.ID] = p
	}
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, collection string, vector []float32, params SearchParams) ([]ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", collection, ErrCollectionNotFound)
	}

	hits := make([]ScoredPoint, 0, len(col.points))
	for _, p := range col.points {
		if params.Chapter != "" && p.Payload.Chapter != params.Chapter {
			continue
		}
		score := cosineSimilarity(vector, p.Vector)
		if score < params.ScoreThreshold {
			continue
		}
		hits = append(hits, ScoredPoint{Score: score, Payload: p.Payload})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if params.Limit > 0 && len(hits) > params.Limit {
		hits = hits[:params.Limit]
	}
	return hits, nil
}

func (s *MemoryStore) Stats(ctx context.Context, collection string) (*CollectionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", collection, ErrCollectionNotFound)
	}
	n := int64(len(col.points))
	return &CollectionStats{
		VectorsCount:        n,
		IndexedVectorsCount: n,
		PointsCount:         n,
	}, nil
}

func (s *MemoryStore) DeleteCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
