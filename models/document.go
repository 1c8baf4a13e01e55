package models

// Document is a single source file discovered during re-indexing.
// It is immutable once read; re-indexing the same DocID supersedes it.
type Document struct {
	DocID   string `json:"doc_id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Chapter string `json:"chapter"`
	Content string `json:"content"`
}

// Chunk is a bounded, possibly overlapping slice of a document's text,
// the unit of embedding and retrieval. ID is deterministic
// ("{doc_id}_chunk_{chunk_index}") so re-indexing overwrites rather
// than duplicates.
type Chunk struct {
	ID         string `json:"id"`
	DocID      string `json:"doc_id"`
	Text       string `json:"text"`
	ChunkIndex int    `json:"chunk_index"`
	Chapter    string `json:"chapter"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	IndexedAt  string `json:"indexed_at"`
}

// SearchQuery describes one retrieval request.
type SearchQuery struct {
	Text           string
	TopK           int
	ScoreThreshold float32
	Chapter        string
}

// SearchResult is a retrieved chunk with its similarity score,
// ordered descending by score.
type SearchResult struct {
	Text       string  `json:"text"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Chapter    string  `json:"chapter"`
	Score      float32 `json:"score"`
	ChunkIndex int     `json:"chunk_index"`
}
