package broker

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/zoff-tech/go-mobile-sdk/pkg/notification"
)

const tracerName = "go-mobile-sdk"

// Message headers set on every published notification.
const (
	HeaderUniqueKey      = "x-push-unique-key"
	HeaderNotificationID = "x-notification-id"
)

// NotificationSink hands rendered notifications over for display.
type NotificationSink interface {
	// Publish delivers one notification.
	Publish(ctx context.Context, n *notification.Notification) error
	// Close cleans up any resources (connections).
	Close() error
}

// encode serializes n and builds its headers, trace context included.
func encode(ctx context.Context, n *notification.Notification) ([]byte, map[string]string, error) {
	if n == nil {
		return nil, nil, fmt.Errorf("notification is nil")
	}

	data, err := json.Marshal(n)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode notification: %w", err)
	}

	headers := map[string]string{
		HeaderUniqueKey:      n.UniqueKey,
		HeaderNotificationID: strconv.FormatInt(int64(n.ID), 10),
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headers))

	return data, headers, nil
}
