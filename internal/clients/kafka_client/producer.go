package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/sentiment-api/internal/models"
)

// PredictionPublisher sends completed predictions to Kafka. Delivery is
// fire-and-forget with respect to the request path.
type PredictionPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewPredictionPublisher(cfg KafkaConfig) (*PredictionPublisher, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.Broker),
		slog.String("topic", cfg.Topic))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   cfg.Broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
		"acks":                "all",
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	pub := &PredictionPublisher{producer: p, topic: cfg.Topic}
	go pub.handleDeliveryReports()

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return pub, nil
}

func (p *PredictionPublisher) handleDeliveryReports() {
	for e := range p.producer.Events() {
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			slog.Warn("[KafkaClient] Message delivery failed",
				slog.String("error", m.TopicPartition.Error.Error()))
		}
	}
}

func (p *PredictionPublisher) Publish(ctx context.Context, prediction models.SentimentResponse) {
	jsonData, err := json.Marshal(prediction)
	if err != nil {
		slog.Error("[KafkaClient] Failed to marshal prediction",
			slog.String("error", err.Error()))
		return
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Value:          jsonData,
	}

	for i := 0; i < 3; i++ {
		err = p.producer.Produce(msg, nil)
		if err == nil {
			return
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1))
		time.Sleep(500 * time.Millisecond)
	}

	slog.Error("[KafkaClient] Failed to publish prediction",
		slog.String("error", err.Error()))
}

func (p *PredictionPublisher) Close() {
	slog.Info("[KafkaClient] Shutting down Kafka producer...")
	if remaining := p.producer.Flush(5000); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	p.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}
