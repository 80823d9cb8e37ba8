package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/spacesedan/sentiment-api/internal/models"
)

const MAX_BATCH_SIZE = 100

var (
	ErrModelNotLoaded = errors.New("model not loaded")
	ErrEmptyInput     = errors.New("text cannot be empty")
	ErrBatchTooLarge  = errors.New("maximum 100 texts per batch")
)

// labelMapping remaps model vocabularies onto the canonical sentiment
// labels. Unknown labels pass through lower-cased.
var labelMapping = map[string]string{
	"LABEL_0":  "negative",
	"LABEL_1":  "neutral",
	"LABEL_2":  "positive",
	"NEGATIVE": "negative",
	"POSITIVE": "positive",
}

// Model is the loaded classification model handle.
type Model interface {
	Predict(text string) (string, float64, error)
	Loaded() bool
}

// Cache stores raw model outputs keyed by input text.
type Cache interface {
	Get(ctx context.Context, text string) (label string, score float64, ok bool)
	Set(ctx context.Context, text string, label string, score float64)
}

// Sink receives completed predictions for downstream delivery. Publish
// must not fail the prediction path; sinks log their own errors.
type Sink interface {
	Publish(ctx context.Context, prediction models.SentimentResponse)
}

type PredictionService struct {
	model Model
	cache Cache
	sinks []Sink
}

type Option func(*PredictionService)

func WithCache(cache Cache) Option {
	return func(s *PredictionService) { s.cache = cache }
}

func WithSink(sink Sink) Option {
	return func(s *PredictionService) { s.sinks = append(s.sinks, sink) }
}

func New(model Model, opts ...Option) *PredictionService {
	s := &PredictionService{model: model}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PredictionService) ModelLoaded() bool {
	return s.model != nil && s.model.Loaded()
}

func (s *PredictionService) PredictOne(ctx context.Context, text string) (models.SentimentResponse, error) {
	slog.Info("[PredictionService] Processing sentiment prediction",
		slog.Int("text_length", len(text)))

	if !s.ModelLoaded() {
		return models.SentimentResponse{}, ErrModelNotLoaded
	}
	if strings.TrimSpace(text) == "" {
		return models.SentimentResponse{}, ErrEmptyInput
	}

	response, err := s.classify(ctx, text)
	if err != nil {
		return models.SentimentResponse{}, err
	}

	s.emit(response)
	slog.Info("[PredictionService] Prediction completed",
		slog.String("sentiment", response.Sentiment),
		slog.Float64("confidence", response.Confidence))

	return response, nil
}

// PredictBatch serves each text as an independent single prediction,
// skipping entries that are empty after trimming. A failed inference
// aborts the whole batch.
func (s *PredictionService) PredictBatch(ctx context.Context, texts []string) (models.BatchSentimentResponse, error) {
	slog.Info("[PredictionService] Processing batch prediction",
		slog.Int("batch_size", len(texts)))

	if !s.ModelLoaded() {
		return models.BatchSentimentResponse{}, ErrModelNotLoaded
	}
	if len(texts) > MAX_BATCH_SIZE {
		return models.BatchSentimentResponse{}, ErrBatchTooLarge
	}

	results := make([]models.SentimentResponse, 0, len(texts))
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}

		response, err := s.classify(ctx, text)
		if err != nil {
			return models.BatchSentimentResponse{}, err
		}
		results = append(results, response)
	}

	for _, response := range results {
		s.emit(response)
	}

	slog.Info("[PredictionService] Batch prediction completed",
		slog.Int("processed", len(results)))

	return models.BatchSentimentResponse{
		Results:        results,
		TotalProcessed: len(results),
	}, nil
}

func (s *PredictionService) classify(ctx context.Context, text string) (models.SentimentResponse, error) {
	label, score, cached := s.lookupCache(ctx, text)
	if !cached {
		var err error
		label, score, err = s.model.Predict(text)
		if err != nil {
			slog.Error("[PredictionService] Inference failed",
				slog.String("error", err.Error()))
			return models.SentimentResponse{}, err
		}

		if s.cache != nil {
			s.cache.Set(ctx, text, label, score)
		}
	}

	sentiment, ok := labelMapping[label]
	if !ok {
		sentiment = strings.ToLower(label)
	}

	return models.SentimentResponse{
		Text:       text,
		Sentiment:  sentiment,
		Confidence: roundConfidence(score),
		Timestamp:  time.Now().Format(time.RFC3339),
	}, nil
}

func (s *PredictionService) lookupCache(ctx context.Context, text string) (string, float64, bool) {
	if s.cache == nil {
		return "", 0, false
	}
	return s.cache.Get(ctx, text)
}

func (s *PredictionService) emit(prediction models.SentimentResponse) {
	for _, sink := range s.sinks {
		go sink.Publish(context.Background(), prediction)
	}
}

func roundConfidence(score float64) float64 {
	return math.Round(score*10000) / 10000
}
