package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"rag-chatbot-backend/internal/logger"
)

// Scheduler runs periodic re-index jobs from a cron expression.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cancel    context.CancelFunc
	ctx       context.Context
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &Scheduler{
		scheduler: s,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop halts all jobs and cancels the scheduler context.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	if s.cancel != nil {
		s.cancel()
	}
}

// ScheduleReindex registers a recurring full re-index of docsPath on
// the given cron expression.
func (s *Scheduler) ScheduleReindex(cronExpr string, indexer *Indexer, docsPath string) error {
	_, err := s.scheduler.Cron(cronExpr).Tag("reindex").Do(func() {
		logger.Info("Scheduled re-index started", "path", docsPath)
		report, err := indexer.ReindexAll(s.ctx, docsPath)
		if err != nil {
			logger.Error("Scheduled re-index failed", "error", err)
			return
		}
		logger.Info("Scheduled re-index finished",
			"indexed", report.IndexedCount,
			"failed", report.FailedCount,
			"chunks", report.TotalChunks)
	})
	return err
}
