package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// QdrantStore is a minimal REST client to Qdrant. Collections are
// created with cosine distance; point IDs are the deterministic chunk
// IDs, so upserts converge.
type QdrantStore struct {
	url    string
	apiKey string
	client *http.Client
}

type QdrantConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func NewQdrantStore(cfg QdrantConfig) *QdrantStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &QdrantStore{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}
}

type qdrantCollectionInfo struct {
	Result struct {
		Status string `json:"status"`
		Config struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
		VectorsCount        int64 `json:"vectors_count"`
		IndexedVectorsCount int64 `json:"indexed_vectors_count"`
		PointsCount         int64 `json:"points_count"`
	} `json:"result"`
}

func (s *QdrantStore) EnsureCollection(ctx context.Context, name string, vectorSize int, distance string) error {
	if vectorSize <= 0 {
		return fmt.Errorf("invalid vector size %d", vectorSize)
	}

	var info qdrantCollectionInfo
	status, err := s.getJSON(ctx, fmt.Sprintf("%s/collections/%s", s.url, name), &info)
	if err != nil {
		return err
	}

	if status == http.StatusOK {
		if got := info.Result.Config.Params.Vectors.Size; got != vectorSize {
			return fmt.Errorf("collection %q has size %d, want %d: %w", name, got, vectorSize, ErrVectorSizeMismatch)
		}
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": distance,
		},
	}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s", s.url, name), body)
}

func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	body := map[string]any{"points": points}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, collection), body)
}

func (s *QdrantStore) Search(ctx context.Context, collection string, vector []float32, params SearchParams) ([]ScoredPoint, error) {
	req := map[string]any{
		"vector":          vector,
		"limit":           params.Limit,
		"score_threshold": params.ScoreThreshold,
		"with_payload":    true,
	}
	if params.Chapter != "" {
		req["filter"] = map[string]any{
			"must": []map[string]any{
				{"key": "chapter", "match": map[string]any{"value": params.Chapter}},
			},
		}
	}

	var resp struct {
		Result []ScoredPoint `json:"result"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", s.url, collection), req, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (s *QdrantStore) Stats(ctx context.Context, collection string) (*CollectionStats, error) {
	var info qdrantCollectionInfo
	status, err := s.getJSON(ctx, fmt.Sprintf("%s/collections/%s", s.url, collection), &info)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("collection %q: %w", collection, ErrCollectionNotFound)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("qdrant GET collection %q failed: status %d", collection, status)
	}
	return &CollectionStats{
		VectorsCount:        info.Result.VectorsCount,
		IndexedVectorsCount: info.Result.IndexedVectorsCount,
		PointsCount:         info.Result.PointsCount,
	}, nil
}

func (s *QdrantStore) DeleteCollection(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, name), nil)
	if err != nil {
		return err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("qdrant DELETE collection %q failed: %s", name, resp.Status)
	}
	return nil
}

func (s *QdrantStore) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}

func (s *QdrantStore) getJSON(ctx context.Context, url string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("qdrant GET %s: decode: %w", url, err)
		}
	}
	return resp.StatusCode, nil
}

func (s *QdrantStore) putJSON(ctx context.Context, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *QdrantStore) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
