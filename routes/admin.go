package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/internal/logger"
	"rag-chatbot-backend/internal/queue"
	"rag-chatbot-backend/internal/telemetry"
	"rag-chatbot-backend/internal/vectorstore"
	"rag-chatbot-backend/models"
	"rag-chatbot-backend/services"
	"rag-chatbot-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

func SetupAdminRoutes(
	router *gin.Engine,
	cfg *config.Config,
	indexer *services.Indexer,
	store vectorstore.VectorStore,
	asynqClient *asynq.Client,
	metrics *telemetry.Metrics,
) {
	api := router.Group("/api")

	api.POST("/reindex", func(c *gin.Context) {
		// An empty body means "re-index defaults in the foreground".
		var req models.ReindexRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		docsPath := req.DocsPath
		if docsPath == "" {
			docsPath = cfg.DocsPath
		}

		if _, err := os.Stat(docsPath); err != nil {
			utils.RespondWithNotFound(c, "Documentation path does not exist")
			return
		}

		if req.Background {
			jobID := uuid.NewString()

			if asynqClient != nil {
				task, err := queue.NewReindexTask(docsPath, jobID)
				if err != nil {
					utils.RespondWithInternalError(c, "Failed to create re-index task", nil)
					return
				}
				if _, err := asynqClient.Enqueue(task); err != nil {
					logger.Error("Failed to enqueue re-index task", "error", err)
					utils.RespondWithInternalError(c, "Failed to enqueue re-index task", nil)
					return
				}
			} else {
				// No queue configured; run in-process instead.
				go func() {
					start := time.Now()
					report, err := indexer.ReindexAll(context.Background(), docsPath)
					if err != nil {
						logger.Error("Background re-index failed", "job_id", jobID, "error", err)
						metrics.RecordIndexing(time.Since(start).Seconds(), "error")
						return
					}
					metrics.RecordIndexing(time.Since(start).Seconds(), "success")
					logger.Info("Background re-index finished",
						"job_id", jobID,
						"indexed", report.IndexedCount,
						"failed", report.FailedCount)
				}()
			}

			c.JSON(http.StatusAccepted, models.ReindexResponse{
				Status:  "started",
				Message: "Re-indexing started in background",
				JobID:   jobID,
			})
			return
		}

		start := time.Now()
		report, err := indexer.ReindexAll(c.Request.Context(), docsPath)
		if err != nil {
			metrics.RecordIndexing(time.Since(start).Seconds(), "error")
			logger.Error("Re-index failed", "error", err)
			utils.RespondWithInternalError(c, "Re-indexing failed", nil)
			return
		}
		metrics.RecordIndexing(time.Since(start).Seconds(), "success")

		c.JSON(http.StatusOK, models.ReindexResponse{
			Status:       "completed",
			Message:      "Re-indexing completed",
			IndexedCount: report.IndexedCount,
			FailedCount:  report.FailedCount,
			Details:      report.Details,
		})
	})

	api.GET("/collection/stats", func(c *gin.Context) {
		stats, err := store.Stats(c.Request.Context(), cfg.CollectionName)
		if err != nil {
			if errors.Is(err, vectorstore.ErrCollectionNotFound) {
				utils.RespondWithNotFound(c, "Collection does not exist")
				return
			}
			logger.Error("Failed to read collection stats", "error", err)
			utils.RespondWithInternalError(c, "Failed to read collection stats", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"collection":            cfg.CollectionName,
			"vectors_count":         stats.VectorsCount,
			"indexed_vectors_count": stats.IndexedVectorsCount,
			"points_count":          stats.PointsCount,
		})
	})

	api.DELETE("/collection", func(c *gin.Context) {
		ctx := c.Request.Context()

		if err := store.DeleteCollection(ctx, cfg.CollectionName); err != nil {
			logger.Error("Failed to delete collection", "error", err)
			utils.RespondWithInternalError(c, "Failed to delete collection", nil)
			return
		}

		if err := store.EnsureCollection(ctx, cfg.CollectionName, cfg.VectorDimensions, vectorstore.DistanceCosine); err != nil {
			logger.Error("Failed to recreate collection", "error", err)
			utils.RespondWithInternalError(c, "Failed to recreate collection", nil)
			return
		}

		logger.Info("Collection reset", "collection", cfg.CollectionName)
		c.JSON(http.StatusOK, gin.H{
			"status":     "reset",
			"collection": cfg.CollectionName,
		})
	})
}
