package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentiment-api/internal/models"
)

type stubModel struct {
	label  string
	score  float64
	err    error
	loaded bool
	calls  int
}

func (m *stubModel) Predict(text string) (string, float64, error) {
	m.calls++
	return m.label, m.score, m.err
}

func (m *stubModel) Loaded() bool { return m.loaded }

func TestPredictOneLabelMapping(t *testing.T) {
	tests := []struct {
		name      string
		label     string
		score     float64
		sentiment string
	}{
		{"sst2 positive", "POSITIVE", 0.9876, "positive"},
		{"sst2 negative", "NEGATIVE", 0.8, "negative"},
		{"three way negative", "LABEL_0", 0.7, "negative"},
		{"three way neutral", "LABEL_1", 0.5, "neutral"},
		{"three way positive", "LABEL_2", 0.6, "positive"},
		{"unknown label passes through lower cased", "SURPRISE", 0.4, "surprise"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&stubModel{label: tt.label, score: tt.score, loaded: true})

			resp, err := svc.PredictOne(context.Background(), "some text")
			require.NoError(t, err)

			assert.Equal(t, "some text", resp.Text)
			assert.Equal(t, tt.sentiment, resp.Sentiment)
			assert.Equal(t, tt.score, resp.Confidence)
			assert.GreaterOrEqual(t, resp.Confidence, 0.0)
			assert.LessOrEqual(t, resp.Confidence, 1.0)

			_, err = time.Parse(time.RFC3339, resp.Timestamp)
			assert.NoError(t, err, "timestamp should be ISO-8601")
		})
	}
}

func TestPredictOneRoundsToFourDecimals(t *testing.T) {
	svc := New(&stubModel{label: "POSITIVE", score: 0.98765432, loaded: true})

	resp, err := svc.PredictOne(context.Background(), "rounding")
	require.NoError(t, err)
	assert.Equal(t, 0.9877, resp.Confidence)
}

func TestPredictOneEmptyInput(t *testing.T) {
	svc := New(&stubModel{label: "POSITIVE", score: 0.9, loaded: true})

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.PredictOne(context.Background(), text)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
}

func TestPredictOneModelNotLoaded(t *testing.T) {
	svc := New(&stubModel{loaded: false})
	_, err := svc.PredictOne(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrModelNotLoaded)

	svc = New(nil)
	_, err = svc.PredictOne(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestPredictOneInferenceErrorPropagates(t *testing.T) {
	svc := New(&stubModel{err: errors.New("onnx blew up"), loaded: true})
	_, err := svc.PredictOne(context.Background(), "hello")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyInput)
	assert.NotErrorIs(t, err, ErrModelNotLoaded)
}

func TestPredictBatchSkipsEmptyAndPreservesOrder(t *testing.T) {
	svc := New(&stubModel{label: "POSITIVE", score: 0.9, loaded: true})

	resp, err := svc.PredictBatch(context.Background(),
		[]string{"first", "", "second", "   ", "third"})
	require.NoError(t, err)

	require.Len(t, resp.Results, 3)
	assert.Equal(t, 3, resp.TotalProcessed)
	assert.Equal(t, "first", resp.Results[0].Text)
	assert.Equal(t, "second", resp.Results[1].Text)
	assert.Equal(t, "third", resp.Results[2].Text)
}

func TestPredictBatchSizeLimit(t *testing.T) {
	svc := New(&stubModel{label: "POSITIVE", score: 0.9, loaded: true})

	over := make([]string, MAX_BATCH_SIZE+1)
	for i := range over {
		over[i] = "text"
	}
	_, err := svc.PredictBatch(context.Background(), over)
	assert.ErrorIs(t, err, ErrBatchTooLarge)

	exact := over[:MAX_BATCH_SIZE]
	resp, err := svc.PredictBatch(context.Background(), exact)
	require.NoError(t, err)
	assert.Equal(t, MAX_BATCH_SIZE, resp.TotalProcessed)
}

func TestPredictBatchModelNotLoaded(t *testing.T) {
	svc := New(&stubModel{loaded: false})
	_, err := svc.PredictBatch(context.Background(), []string{"hello"})
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestPredictBatchAbortsOnInferenceError(t *testing.T) {
	svc := New(&stubModel{err: errors.New("onnx blew up"), loaded: true})

	resp, err := svc.PredictBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Empty(t, resp.Results)
}

type fakeCache struct {
	labels map[string]string
	scores map[string]float64
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{labels: map[string]string{}, scores: map[string]float64{}}
}

func (c *fakeCache) Get(_ context.Context, text string) (string, float64, bool) {
	label, ok := c.labels[text]
	if !ok {
		return "", 0, false
	}
	return label, c.scores[text], true
}

func (c *fakeCache) Set(_ context.Context, text, label string, score float64) {
	c.labels[text] = label
	c.scores[text] = score
	c.sets++
}

func TestPredictOneUsesCache(t *testing.T) {
	model := &stubModel{label: "POSITIVE", score: 0.9, loaded: true}
	cache := newFakeCache()
	svc := New(model, WithCache(cache))

	_, err := svc.PredictOne(context.Background(), "cached soon")
	require.NoError(t, err)
	assert.Equal(t, 1, model.calls)
	assert.Equal(t, 1, cache.sets)

	resp, err := svc.PredictOne(context.Background(), "cached soon")
	require.NoError(t, err)
	assert.Equal(t, 1, model.calls, "second call should hit the cache")
	assert.Equal(t, "positive", resp.Sentiment)
}

type captureSink struct {
	ch chan models.SentimentResponse
}

func (s *captureSink) Publish(_ context.Context, prediction models.SentimentResponse) {
	s.ch <- prediction
}

func TestPredictOneNotifiesSinks(t *testing.T) {
	sink := &captureSink{ch: make(chan models.SentimentResponse, 1)}
	svc := New(&stubModel{label: "NEGATIVE", score: 0.8, loaded: true}, WithSink(sink))

	_, err := svc.PredictOne(context.Background(), "bad day")
	require.NoError(t, err)

	select {
	case got := <-sink.ch:
		assert.Equal(t, "negative", got.Sentiment)
	case <-time.After(time.Second):
		t.Fatal("sink was never notified")
	}
}
