package kafka_client

import "os"

const KAFKA_TOPIC_PREDICTIONS = "sentiment-predictions"

type KafkaConfig struct {
	Broker string
	Topic  string
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func GetKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Broker: getEnv("KAFKA_BROKER", "localhost:29092"),
		Topic:  getEnv("KAFKA_PREDICTIONS_TOPIC", KAFKA_TOPIC_PREDICTIONS),
	}
}
