// Package jobmanagement exposes the evaluation workflow over HTTP: dataset
// upload, the websocket stream that runs the pipeline item by item, and
// read access to recorded runs.
package jobmanagement

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/configmanagement"
	"voice-ai-eval-platform/internal/coreengine/evaluationengine"
	"voice-ai-eval-platform/internal/dataset"
	"voice-ai-eval-platform/internal/logging"
	"voice-ai-eval-platform/internal/telemetry"
)

// Handlers bundles the dependencies of the evaluation endpoints.
type Handlers struct {
	processor evaluationengine.ItemProcessor
	store     *configmanagement.Store
	metrics   *telemetry.Metrics
	logger    *zap.Logger
}

// NewHandlers wires the endpoint dependencies. metrics may be nil when the
// caller does not expose Prometheus.
func NewHandlers(processor evaluationengine.ItemProcessor, store *configmanagement.Store, metrics *telemetry.Metrics, logger *zap.Logger) *Handlers {
	return &Handlers{
		processor: processor,
		store:     store,
		metrics:   metrics,
		logger:    logging.OrNop(logger),
	}
}

// Upload parses an uploaded QA dataset CSV and returns the test items it
// contains. Column names can be overridden through the id_col,
// question_col and answer_col form fields; stt_provider switches the
// provider for the session.
func (h *Handlers) Upload(c *gin.Context) {
	log := h.logger.Sugar()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file provided"})
		return
	}
	defer file.Close()

	if provider := c.PostForm("stt_provider"); provider != "" {
		h.store.SetProvider(provider)
	}

	parsed, err := dataset.ParseUpload(
		file,
		c.PostForm("id_col"),
		c.PostForm("question_col"),
		c.PostForm("answer_col"),
		h.logger,
	)
	if err != nil {
		log.Warnf("Failed to parse uploaded dataset %s: %v", header.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	log.Infof("Parsed upload %s: %d items", header.Filename, len(parsed.Items))
	c.JSON(http.StatusOK, gin.H{
		"message":    "File uploaded",
		"item_count": len(parsed.Items),
		"items":      parsed.Items,
		"columns":    parsed.Columns,
		"detected_mapping": gin.H{
			"id":       parsed.IDColumn,
			"question": parsed.QuestionColumn,
			"answer":   parsed.AnswerColumn,
		},
		"stt_provider": h.store.Get().STTProvider,
	})
}
