package config

// BrokerSettings holds configuration for the notification sink.
type BrokerSettings struct {
	Type      string   `mapstructure:"type" validate:"required,oneof=rabbitmq gcp-pubsub kafka"`
	URL       string   `mapstructure:"url" validate:"required_if=Type rabbitmq"`
	Exchange  string   `mapstructure:"exchange"`
	Topic     string   `mapstructure:"topic" validate:"required"`
	ProjectID string   `mapstructure:"project_id" validate:"required_if=Type gcp-pubsub"` // GCP Pub/Sub only
	Brokers   []string `mapstructure:"brokers" validate:"required_if=Type kafka"`         // Kafka only
	PoolSize  int      `mapstructure:"pool_size"`                                         // RabbitMQ channel pool
}
