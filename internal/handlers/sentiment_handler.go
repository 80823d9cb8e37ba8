package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/sentiment-api/internal/metrics"
	"github.com/spacesedan/sentiment-api/internal/models"
	"github.com/spacesedan/sentiment-api/internal/service"
)

const API_VERSION = "1.0.0"

// Predictor is the slice of the prediction service the handlers need.
type Predictor interface {
	PredictOne(ctx context.Context, text string) (models.SentimentResponse, error)
	PredictBatch(ctx context.Context, texts []string) (models.BatchSentimentResponse, error)
	ModelLoaded() bool
}

type SentimentHandler struct {
	service Predictor
	counter *metrics.RequestCounter
}

func NewSentimentHandler(svc Predictor, counter *metrics.RequestCounter) *SentimentHandler {
	return &SentimentHandler{
		service: svc,
		counter: counter,
	}
}

func (h *SentimentHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, models.ServiceInfo{
		Message:   "Sentiment Analysis API is running!",
		Version:   API_VERSION,
		Endpoints: []string{"/predict", "/predict-batch", "/health"},
	})
}

func (h *SentimentHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:      "healthy",
		ModelLoaded: h.service.ModelLoaded(),
		Timestamp:   time.Now().Format(time.RFC3339),
	})
}

func (h *SentimentHandler) Predict(c *gin.Context) {
	var input models.TextInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	response, err := h.service.PredictOne(c.Request.Context(), input.Text)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *SentimentHandler) PredictBatch(c *gin.Context) {
	var input models.BatchTextInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	response, err := h.service.PredictBatch(c.Request.Context(), input.Texts)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *SentimentHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, models.MetricsResponse{
		RequestCounts: h.counter.Snapshot(),
	})
}

// handleServiceError maps prediction errors onto the API's status codes.
// Unexpected failures are logged with their cause and never leaked.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrModelNotLoaded):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Detail: "Model not loaded"})
	case errors.Is(err, service.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "Text cannot be empty"})
	case errors.Is(err, service.ErrBatchTooLarge):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "Maximum 100 texts per batch"})
	default:
		slog.Error("[Handlers] Error in sentiment prediction",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Internal server error"})
	}
}
