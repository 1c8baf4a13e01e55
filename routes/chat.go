package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/internal/logger"
	"rag-chatbot-backend/internal/telemetry"
	"rag-chatbot-backend/models"
	"rag-chatbot-backend/services"
	"rag-chatbot-backend/utils"

	"github.com/gin-gonic/gin"
)

// Retrieval depth for selection-grounded questions. The pinned passage
// carries most of the signal, so only two supporting chunks are fetched.
const contextRetrievalLimit = 2

func SetupChatRoutes(
	router *gin.Engine,
	cfg *config.Config,
	retriever services.ContextRetriever,
	prompts *services.PromptBuilder,
	generator services.AnswerGenerator,
	metrics *telemetry.Metrics,
) {
	chat := router.Group("/api/chat")

	chat.POST("", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		topK := req.TopK
		if topK == 0 {
			topK = cfg.DefaultTopK
		}

		results, err := retriever.Retrieve(c.Request.Context(), models.SearchQuery{
			Text:    req.Question,
			TopK:    topK,
			Chapter: req.ChapterFilter,
		})
		if err != nil {
			logger.Error("Retrieval failed", "error", err)
			utils.RespondWithInternalError(c, "Failed to search the knowledge base", nil)
			return
		}
		metrics.RecordRetrieval(int64(len(results)), req.ChapterFilter != "")

		if len(results) == 0 {
			utils.RespondWithNotFound(c, "No relevant content found for the question")
			return
		}

		prompt := prompts.Build(req.Question, results)

		answer, err := generator.GenerateAnswer(c.Request.Context(), prompt)
		if err != nil {
			logger.Error("Answer generation failed", "error", err)
			utils.RespondWithError(c, http.StatusInternalServerError,
				"ai_generation_error", "Failed to generate an answer", nil)
			return
		}
		metrics.RecordTokensUsed(int64(answer.Metadata.TotalTokens), answer.Metadata.Model)

		c.JSON(http.StatusOK, models.ChatResponse{
			Answer:   answer.Text,
			Sources:  models.SourcesFromResults(results),
			Metadata: answer.Metadata,
		})
	})

	chat.POST("/stream", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		topK := req.TopK
		if topK == 0 {
			topK = cfg.DefaultTopK
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		results, err := retriever.Retrieve(c.Request.Context(), models.SearchQuery{
			Text:    req.Question,
			TopK:    topK,
			Chapter: req.ChapterFilter,
		})
		if err != nil {
			logger.Error("Retrieval failed", "error", err)
			writeSSE(c, models.StreamError{Error: "Failed to search the knowledge base"})
			return
		}
		metrics.RecordRetrieval(int64(len(results)), req.ChapterFilter != "")

		if len(results) == 0 {
			writeSSE(c, models.StreamError{Error: "No relevant content found for the question"})
			return
		}

		prompt := prompts.Build(req.Question, results)

		stream, err := generator.GenerateAnswerStream(c.Request.Context(), prompt)
		if err != nil {
			logger.Error("Stream setup failed", "error", err)
			writeSSE(c, models.StreamError{Error: "Failed to generate an answer"})
			return
		}
		defer stream.Close()

		for {
			token, err := stream.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				logger.Error("Stream aborted", "error", err)
				writeSSE(c, models.StreamError{Error: "Answer generation was interrupted"})
				return
			}
			writeSSE(c, models.StreamToken{Type: "token", Token: token})
		}

		writeSSE(c, models.StreamSources{Type: "sources", Sources: models.SourcesFromResults(results)})
		writeSSE(c, models.StreamDone{Type: "done"})
	})

	chat.POST("/context", func(c *gin.Context) {
		var req models.ContextChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		results, err := retriever.Retrieve(c.Request.Context(), models.SearchQuery{
			Text: req.Question,
			TopK: contextRetrievalLimit,
		})
		if err != nil {
			logger.Error("Retrieval failed", "error", err)
			utils.RespondWithInternalError(c, "Failed to search the knowledge base", nil)
			return
		}

		prompt := prompts.BuildWithPinned(req.Question, req.SelectedText, req.PageURL, results)

		answer, err := generator.GenerateAnswer(c.Request.Context(), prompt)
		if err != nil {
			logger.Error("Answer generation failed", "error", err)
			utils.RespondWithError(c, http.StatusInternalServerError,
				"ai_generation_error", "Failed to generate an answer", nil)
			return
		}
		metrics.RecordTokensUsed(int64(answer.Metadata.TotalTokens), answer.Metadata.Model)

		sources := make([]models.Source, 0, len(results)+1)
		sources = append(sources, prompts.PinnedSource(req.PageURL))
		sources = append(sources, models.SourcesFromResults(results)...)

		c.JSON(http.StatusOK, models.ChatResponse{
			Answer:   answer.Text,
			Sources:  sources,
			Metadata: answer.Metadata,
		})
	})
}

// writeSSE emits one server-sent event and flushes it to the client
// immediately.
func writeSSE(c *gin.Context, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	c.Writer.Flush()
}
