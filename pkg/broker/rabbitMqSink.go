package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/zoff-tech/go-mobile-sdk/pkg/config"
	"github.com/zoff-tech/go-mobile-sdk/pkg/notification"
)

const reconnectInterval = 5 * time.Second

type RabbitMQSinkCreator func(ctx context.Context, settings *config.BrokerSettings, logger logr.Logger) (NotificationSink, error)

var NewRabbitMqSink RabbitMQSinkCreator = func(_ context.Context, settings *config.BrokerSettings, logger logr.Logger) (NotificationSink, error) {
	if settings.PoolSize <= 0 {
		return nil, errors.New("poolSize must be greater than 0")
	}

	sink := &rabbitMqSink{
		channelPool:     make(chan *pooledChannel, settings.PoolSize),
		settings:        settings,
		logger:          logger,
		reconnectTicker: time.NewTicker(reconnectInterval),
		stopReconnect:   make(chan struct{}),
	}

	// Initialize the connection and channel pool
	if err := sink.connectAndInitialize(); err != nil {
		sink.reconnectTicker.Stop()
		return nil, err
	}

	go sink.recoverConnection()

	return sink, nil
}

type rabbitMqSink struct {
	connection      *amqp.Connection
	channelPool     chan *pooledChannel
	mu              sync.Mutex
	settings        *config.BrokerSettings
	logger          logr.Logger
	reconnectTicker *time.Ticker
	stopReconnect   chan struct{}
}

func (r *rabbitMqSink) Publish(ctx context.Context, n *notification.Notification) error {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "Publish",
		trace.WithAttributes(
			semconv.MessagingSystemKey.String("rabbitmq"),
			semconv.MessagingDestinationKindKey.String("topic"),
			semconv.MessagingDestinationKey.String(r.settings.Exchange),
			semconv.MessagingRabbitmqRoutingKeyKey.String(r.settings.Topic),
		),
	)
	defer span.End()

	data, headers, err := encode(ctx, n)
	if err != nil {
		span.RecordError(err)
		return err
	}

	amqpHeaders := make(amqp.Table, len(headers))
	for k, v := range headers {
		amqpHeaders[k] = v
	}

	pooledChan, err := r.getChannel()
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer r.releaseChannel(pooledChan)

	// The default exchange routes by queue name and cannot be declared.
	if r.settings.Exchange != "" {
		// ExchangeDeclare is idempotent and has no effect if the exchange is already in place
		err = pooledChan.channel.ExchangeDeclare(
			r.settings.Exchange, // name of the exchange
			"topic",             // type of the exchange
			true,                // durable
			false,               // auto-deleted
			false,               // internal
			false,               // no-wait
			nil,                 // arguments
		)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to declare exchange: %w", err)
		}
	}

	err = pooledChan.channel.Publish(
		r.settings.Exchange, r.settings.Topic, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    n.UniqueKey,
			Timestamp:    time.Now(),
			Body:         data,
			Headers:      amqpHeaders,
		},
	)
	if err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(
		attribute.Int("messaging.message_payload_size_bytes", len(data)),
	)

	return nil
}

func (r *rabbitMqSink) Close() error {
	// Stop the connection recovery goroutine
	close(r.stopReconnect)
	r.reconnectTicker.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.drainPool()

	if r.connection != nil && !r.connection.IsClosed() {
		return r.connection.Close()
	}
	return nil
}
