package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/sentiment-api/config"
	"github.com/spacesedan/sentiment-api/internal/classifier"
	"github.com/spacesedan/sentiment-api/internal/clients"
	"github.com/spacesedan/sentiment-api/internal/clients/kafka_client"
	"github.com/spacesedan/sentiment-api/internal/db"
	"github.com/spacesedan/sentiment-api/internal/handlers"
	"github.com/spacesedan/sentiment-api/internal/logging"
	"github.com/spacesedan/sentiment-api/internal/metrics"
	"github.com/spacesedan/sentiment-api/internal/service"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	clf := classifier.New(classifier.Config{
		ModelDir: config.GetEnv("MODEL_DIR", "./models"),
		Model:    config.GetEnv("SENTIMENT_MODEL", classifier.DEFAULT_MODEL),
	})
	clf.Load()
	defer clf.Close()

	opts, cleanup := buildServiceOptions()
	defer cleanup()
	svc := service.New(clf, opts...)

	counter := metrics.NewRequestCounter()
	router := handlers.NewRouter(svc, counter)

	addr := config.GetEnv("SERVER_ADDR", ":8000")
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("[Main] Starting Sentiment Analysis API",
			slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("[Main] Failed to start server",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("[Main] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("[Main] Server forced to shutdown",
			slog.String("error", err.Error()))
	}

	slog.Info("[Main] Server exited")
}

// buildServiceOptions wires the optional integrations. Each one is off
// unless its environment is configured, leaving the core prediction path
// untouched by default.
func buildServiceOptions() ([]service.Option, func()) {
	var opts []service.Option
	var closers []func()

	if os.Getenv("VALKEY_INIT_ADDRESS") != "" {
		cache, err := clients.NewValkeyCache()
		if err != nil {
			slog.Warn("[Main] Prediction cache disabled",
				slog.String("error", err.Error()))
		} else {
			opts = append(opts, service.WithCache(cache))
			closers = append(closers, cache.Close)
		}
	}

	if os.Getenv("KAFKA_BROKER") != "" {
		publisher, err := kafka_client.NewPredictionPublisher(kafka_client.GetKafkaConfig())
		if err != nil {
			slog.Warn("[Main] Prediction publishing disabled",
				slog.String("error", err.Error()))
		} else {
			opts = append(opts, service.WithSink(publisher))
			closers = append(closers, publisher.Close)
		}
	}

	if table := os.Getenv("DYNAMODB_TABLE"); table != "" {
		opts = append(opts, service.WithSink(db.NewPredictionStore(table)))
	}

	cleanup := func() {
		for _, closer := range closers {
			closer()
		}
	}
	return opts, cleanup
}
