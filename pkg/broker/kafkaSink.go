package broker

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/zoff-tech/go-mobile-sdk/pkg/config"
	"github.com/zoff-tech/go-mobile-sdk/pkg/notification"
)

// KafkaSinkCreator defines a function type for creating Kafka sinks.
type KafkaSinkCreator func(ctx context.Context, settings *config.BrokerSettings, logger logr.Logger) (NotificationSink, error)

// NewKafkaSink is the default implementation of KafkaSinkCreator.
var NewKafkaSink KafkaSinkCreator = func(_ context.Context, settings *config.BrokerSettings, logger logr.Logger) (NotificationSink, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(settings.Brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	return newKafkaSink(producer, settings.Topic, logger), nil
}

type kafkaSink struct {
	producer sarama.SyncProducer
	topic    string
	logger   logr.Logger
}

func newKafkaSink(producer sarama.SyncProducer, topic string, logger logr.Logger) *kafkaSink {
	return &kafkaSink{producer: producer, topic: topic, logger: logger}
}

func (k *kafkaSink) Publish(ctx context.Context, n *notification.Notification) error {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "Publish",
		trace.WithAttributes(
			semconv.MessagingSystemKey.String("kafka"),
			semconv.MessagingDestinationKindKey.String("topic"),
			semconv.MessagingDestinationKey.String(k.topic),
		),
	)
	defer span.End()

	data, headers, err := encode(ctx, n)
	if err != nil {
		span.RecordError(err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(n.UniqueKey),
		Value: sarama.ByteEncoder(data),
	}
	for key, value := range headers {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
	}

	// SendMessage does not take a context
	done := make(chan error, 1)
	go func() {
		partition, offset, err := k.producer.SendMessage(msg)
		if err == nil {
			k.logger.V(1).Info("Published notification", "partition", partition, "offset", offset)
		}
		done <- err
	}()

	select {
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		return ctx.Err()
	case err := <-done:
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to publish notification: %w", err)
		}
	}

	span.SetAttributes(
		attribute.Int("messaging.message_payload_size_bytes", len(data)),
	)
	return nil
}

func (k *kafkaSink) Close() error {
	return k.producer.Close()
}
