package models

// ReindexRequest triggers re-indexing of the documentation tree.
type ReindexRequest struct {
	DocsPath   string `json:"docs_path,omitempty"`
	Background bool   `json:"background"`
}

// IndexedFile is the per-file line of a re-index report.
type IndexedFile struct {
	File   string `json:"file"`
	Chunks int    `json:"chunks"`
}

// ReindexReport aggregates one re-index run. Failed documents are
// skipped and contribute nothing to IndexedCount or TotalChunks.
type ReindexReport struct {
	IndexedCount int           `json:"indexed_count"`
	FailedCount  int           `json:"failed_count"`
	TotalChunks  int           `json:"total_chunks"`
	Details      []IndexedFile `json:"details"`
}

// ReindexResponse is the HTTP projection of a re-index run. Background
// runs return status "started" with a job ID and zero counters.
type ReindexResponse struct {
	Status       string        `json:"status"`
	Message      string        `json:"message"`
	IndexedCount int           `json:"indexed_count"`
	FailedCount  int           `json:"failed_count"`
	Details      []IndexedFile `json:"details,omitempty"`
	JobID        string        `json:"job_id,omitempty"`
}
