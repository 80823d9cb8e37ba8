package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/spacesedan/sentiment-api/internal/metrics"
)

// CountRequests increments the counter for every inbound request,
// including the ones that end in an error response. Keys are the exact
// request path.
func CountRequests(counter *metrics.RequestCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		counter.Increment(c.Request.URL.Path)
		c.Next()
	}
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("[HTTP] Request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.String("request_id", c.GetString("request_id")),
			slog.Duration("elapsed", time.Since(start)))
	}
}
