package clients

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_PREDICTION_PREFIX = "sentiment:prediction:"
	VALKEY_PREDICTION_TTL    = time.Hour
)

type cachedPrediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ValkeyCache is a read-through cache for raw model outputs, keyed by a
// hash of the input text. Cache failures never fail a prediction.
type ValkeyCache struct {
	client valkey.Client
}

func NewValkeyCache() (*ValkeyCache, error) {
	valkeyAddr := os.Getenv("VALKEY_INIT_ADDRESS")
	valkeyPassword := os.Getenv("VALKEY_PASSWORD")
	useTLS := os.Getenv("VALKEY_TLS") == "true"

	opts := valkey.ClientOption{
		InitAddress: []string{
			valkeyAddr,
		},
		Password:         valkeyPassword,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if useTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyCache] failed to create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		return nil, fmt.Errorf("[ValkeyCache] failed to ping valkey: %w", err)
	}

	slog.Info("[ValkeyCache] Successfully connected to valkey")
	return &ValkeyCache{client: client}, nil
}

func (vc *ValkeyCache) Get(ctx context.Context, text string) (string, float64, bool) {
	res := vc.client.Do(ctx, vc.client.B().Get().Key(predictionKey(text)).Build())
	if res.Error() != nil {
		if !valkey.IsValkeyNil(res.Error()) {
			slog.Warn("[ValkeyCache] Get failed",
				slog.String("error", res.Error().Error()))
		}
		return "", 0, false
	}

	raw, err := res.AsBytes()
	if err != nil {
		return "", 0, false
	}

	var cached cachedPrediction
	if err := json.Unmarshal(raw, &cached); err != nil {
		slog.Warn("[ValkeyCache] Failed to unmarshal cached prediction",
			slog.String("error", err.Error()))
		return "", 0, false
	}

	return cached.Label, cached.Score, true
}

func (vc *ValkeyCache) Set(ctx context.Context, text, label string, score float64) {
	payload, err := json.Marshal(cachedPrediction{Label: label, Score: score})
	if err != nil {
		return
	}

	cmd := vc.client.B().Set().
		Key(predictionKey(text)).
		Value(string(payload)).
		Ex(VALKEY_PREDICTION_TTL).
		Build()

	if err := vc.client.Do(ctx, cmd).Error(); err != nil {
		slog.Warn("[ValkeyCache] Set failed",
			slog.String("error", err.Error()))
	}
}

func (vc *ValkeyCache) Close() {
	vc.client.Close()
}

func predictionKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return VALKEY_PREDICTION_PREFIX + hex.EncodeToString(sum[:])
}
