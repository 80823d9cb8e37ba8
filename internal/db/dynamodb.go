package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/spacesedan/sentiment-api/internal/clients"
	"github.com/spacesedan/sentiment-api/internal/models"
)

const PREDICTIONS_TABLE_NAME = "SentimentPredictions"

// TTL for stored predictions
const predictionRetention = 7 * 24 * time.Hour

type predictionItem struct {
	PredictionID string  `dynamodbav:"prediction_id"`
	Text         string  `dynamodbav:"text"`
	Sentiment    string  `dynamodbav:"sentiment"`
	Confidence   float64 `dynamodbav:"confidence"`
	Timestamp    string  `dynamodbav:"timestamp"`
	ExpiresAt    int64   `dynamodbav:"expires_at"`
}

// PredictionStore writes served predictions to DynamoDB for later
// inspection. Writes are best-effort.
type PredictionStore struct {
	client *dynamodb.Client
	table  string
}

func NewPredictionStore(table string) *PredictionStore {
	if table == "" {
		table = PREDICTIONS_TABLE_NAME
	}
	return &PredictionStore{
		client: clients.GetDynamoDBClient(),
		table:  table,
	}
}

func (s *PredictionStore) Publish(ctx context.Context, prediction models.SentimentResponse) {
	item, err := attributevalue.MarshalMap(predictionItem{
		PredictionID: uuid.New().String(),
		Text:         prediction.Text,
		Sentiment:    prediction.Sentiment,
		Confidence:   prediction.Confidence,
		Timestamp:    prediction.Timestamp,
		ExpiresAt:    time.Now().Add(predictionRetention).Unix(),
	})
	if err != nil {
		slog.Error("[DynamoDB] Failed to marshal prediction",
			slog.String("error", err.Error()))
		return
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		slog.Error("[DynamoDB] Failed to store prediction",
			slog.String("error", err.Error()))
	}
}
