package broker

import (
	"context"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/zoff-tech/go-mobile-sdk/pkg/config"
	"github.com/zoff-tech/go-mobile-sdk/pkg/notification"
)

// PubSubSinkCreator defines a function type for creating Pub/Sub sinks.
type PubSubSinkCreator func(ctx context.Context, settings *config.BrokerSettings, opts ...option.ClientOption) (NotificationSink, error)

// NewPubSubSink is the default implementation of PubSubSinkCreator.
var NewPubSubSink PubSubSinkCreator = func(ctx context.Context, settings *config.BrokerSettings, opts ...option.ClientOption) (NotificationSink, error) {
	client, err := pubsub.NewClient(ctx, settings.ProjectID, opts...)
	if err != nil {
		return nil, err
	}
	topic := client.Topic(settings.Topic)
	// the unique key is used as ordering key
	topic.EnableMessageOrdering = true
	return &pubSubSink{client: client, topic: topic}, nil
}

type pubSubSink struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

func (p *pubSubSink) Publish(ctx context.Context, n *notification.Notification) error {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "Publish",
		trace.WithAttributes(
			semconv.MessagingSystemKey.String("pubsub"),
			semconv.MessagingDestinationKindKey.String("topic"),
			semconv.MessagingDestinationKey.String(p.topic.ID()),
		),
	)
	defer span.End()

	data, attributes, err := encode(ctx, n)
	if err != nil {
		span.RecordError(err)
		return err
	}

	res := p.topic.Publish(ctx, &pubsub.Message{
		Data:        data,
		Attributes:  attributes,
		OrderingKey: n.UniqueKey,
	})
	if _, err := res.Get(ctx); err != nil { // wait for server ack
		span.RecordError(err)
		// a failed publish pauses its ordering key until resumed
		p.topic.ResumePublish(n.UniqueKey)
		return err
	}

	span.SetAttributes(
		attribute.Int("messaging.message_payload_size_bytes", len(data)),
	)

	return nil
}

func (p *pubSubSink) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
