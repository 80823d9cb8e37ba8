package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/spacesedan/sentiment-api/internal/metrics"
)

// NewRouter wires the middleware stack and the five API routes.
func NewRouter(svc Predictor, counter *metrics.RequestCounter) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger())
	router.Use(CountRequests(counter))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler := NewSentimentHandler(svc, counter)

	router.GET("/", handler.Root)
	router.GET("/health", handler.Health)
	router.POST("/predict", handler.Predict)
	router.POST("/predict-batch", handler.PredictBatch)
	router.GET("/metrics", handler.Metrics)

	return router
}
