package cmd

import "time"

// Config carries all runtime settings read from the environment.
type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	KafkaBrokers       []string
	KafkaConsumerGroup string

	KafkaStartDeliveryTopic    string
	KafkaCompleteDeliveryTopic string
	KafkaFailDeliveryTopic     string
	KafkaAddRegistrationTopic  string
	KafkaEventsTopic           string

	// RedisAddr is optional; when empty the service runs without the read
	// cache and every query hits the database.
	RedisAddr string
	CacheTTL  time.Duration

	ConsumerMaxInFlight int
	RelayBatchSize      int
}
