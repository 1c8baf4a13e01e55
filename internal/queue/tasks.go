package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"rag-chatbot-backend/internal/logger"
	"rag-chatbot-backend/services"
)

const TaskReindexDocs = "index:reindex"

type ReindexPayload struct {
	DocsPath string `json:"docs_path"`
	JobID    string `json:"job_id"`
}

// NewReindexTask builds a full re-index task. Retries are disabled:
// a run that half-completed already upserted those documents, and the
// next run converges on the same chunk IDs anyway.
func NewReindexTask(docsPath, jobID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ReindexPayload{
		DocsPath: docsPath,
		JobID:    jobID,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskReindexDocs,
		payload,
		asynq.MaxRetry(0),
		asynq.Timeout(30*time.Minute),
		asynq.Queue("default"),
	), nil
}

// TaskProcessor executes queued indexing jobs on the worker.
type TaskProcessor struct {
	indexer *services.Indexer
}

func NewTaskProcessor(indexer *services.Indexer) *TaskProcessor {
	return &TaskProcessor{indexer: indexer}
}

func (p *TaskProcessor) ProcessReindex(ctx context.Context, t *asynq.Task) error {
	var payload ReindexPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("Re-index job started", "job_id", payload.JobID, "path", payload.DocsPath)

	report, err := p.indexer.ReindexAll(ctx, payload.DocsPath)
	if err != nil {
		logger.Error("Re-index job failed", "job_id", payload.JobID, "error", err)
		return err
	}

	logger.Info("Re-index job finished",
		"job_id", payload.JobID,
		"indexed", report.IndexedCount,
		"failed", report.FailedCount,
		"chunks", report.TotalChunks)
	return nil
}
