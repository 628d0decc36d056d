package broker

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/zoff-tech/go-mobile-sdk/pkg/config"
)

// NewSink creates the sink selected by cfg.Type.
func NewSink(ctx context.Context, cfg config.BrokerSettings, logger logr.Logger) (NotificationSink, error) {
	logger = logger.WithName("broker").WithValues("type", cfg.Type)

	switch cfg.Type {
	case "rabbitmq":
		return NewRabbitMqSink(ctx, &cfg, logger)
	case "gcp-pubsub":
		return NewPubSubSink(ctx, &cfg)
	case "kafka":
		return NewKafkaSink(ctx, &cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported broker type: %s", cfg.Type)
	}
}
