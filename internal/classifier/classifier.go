package classifier

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

const DEFAULT_MODEL = "KnightsAnalytics/distilbert-base-uncased-finetuned-sst-2-english"

type Config struct {
	ModelDir string
	Model    string
}

// backend produces a raw top-1 label and confidence for one input string.
type backend interface {
	predict(text string) (string, float64, error)
	name() string
}

// Classifier wraps the loaded sentiment model. It is constructed once at
// startup and read-only afterwards.
type Classifier struct {
	cfg     Config
	session *hugot.Session

	mu      sync.Mutex
	backend backend
	loaded  atomic.Bool
}

func New(cfg Config) *Classifier {
	if cfg.Model == "" {
		cfg.Model = DEFAULT_MODEL
	}
	if cfg.ModelDir == "" {
		cfg.ModelDir = "./models"
	}
	return &Classifier{cfg: cfg}
}

// Load acquires the transformer pipeline. When the model or runtime is
// unavailable it falls back to the VADER lexicon analyzer, which needs
// neither; there is no further fallback.
func (c *Classifier) Load() {
	slog.Info("[Classifier] Loading sentiment analysis model...",
		slog.String("model", c.cfg.Model))

	b, err := c.loadTransformer()
	if err != nil {
		slog.Error("[Classifier] Failed to load model, using fallback analyzer",
			slog.String("error", err.Error()))
		b = newVaderBackend()
	}

	c.mu.Lock()
	c.backend = b
	c.mu.Unlock()
	c.loaded.Store(true)

	slog.Info("[Classifier] Model loaded successfully",
		slog.String("backend", b.name()))
}

func (c *Classifier) loadTransformer() (backend, error) {
	if err := os.MkdirAll(c.cfg.ModelDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}

	modelPath := filepath.Join(c.cfg.ModelDir, filepath.Base(c.cfg.Model))
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		slog.Info("[Classifier] Model not found, downloading...")
		downloaded, err := hugot.DownloadModel(c.cfg.Model, c.cfg.ModelDir, hugot.NewDownloadOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to download model: %w", err)
		}
		modelPath = downloaded
		slog.Info("[Classifier] Model downloaded successfully",
			slog.String("path", modelPath))
	} else {
		slog.Info("[Classifier] Using existing model",
			slog.String("path", modelPath))
	}

	// Needs the onnxruntime shared library; without it the caller falls
	// through to the lexicon backend.
	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "sentimentAnalysisPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	c.session = session
	return &transformerBackend{pipeline: pipeline}, nil
}

// Predict returns the raw top-1 label and score for one input string.
// Calls are serialized: a pipeline is not safe for concurrent runs.
func (c *Classifier) Predict(text string) (string, float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.backend == nil {
		return "", 0, fmt.Errorf("no backend loaded")
	}
	return c.backend.predict(text)
}

func (c *Classifier) Loaded() bool {
	return c.loaded.Load()
}

func (c *Classifier) Close() {
	if c.session != nil {
		c.session.Destroy()
	}
}

type transformerBackend struct {
	pipeline *pipelines.TextClassificationPipeline
}

func (t *transformerBackend) name() string { return "transformer" }

func (t *transformerBackend) predict(text string) (string, float64, error) {
	output, err := t.pipeline.RunPipeline([]string{text})
	if err != nil {
		return "", 0, fmt.Errorf("pipeline run failed: %w", err)
	}

	if len(output.ClassificationOutputs) == 0 || len(output.ClassificationOutputs[0]) == 0 {
		return "", 0, fmt.Errorf("pipeline returned no classifications")
	}

	top := output.ClassificationOutputs[0][0]
	return top.Label, float64(top.Score), nil
}
