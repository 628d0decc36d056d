package push

import (
	"context"
	"errors"

	"github.com/go-logr/logr"

	"github.com/zoff-tech/go-mobile-sdk/pkg/broker"
	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
	"github.com/zoff-tech/go-mobile-sdk/pkg/notification"
)

// ErrNotPushClick is returned for click extras that carry no push key.
var ErrNotPushClick = errors.New("click extras carry no push key")

// EventTracker records push analytics.
type EventTracker interface {
	PushDelivered(ctx context.Context, uniqKey string) error
	PushClicked(ctx context.Context, data event.ClickData) error
}

// Handler receives pushes from the messaging transport.
type Handler struct {
	router        *notification.Router
	routes        *notification.RouteTable
	defaultScreen string
	tracker       EventTracker
	sink          broker.NotificationSink
	logger        logr.Logger
}

func NewHandler(
	router *notification.Router,
	routes *notification.RouteTable,
	defaultScreen string,
	tracker EventTracker,
	sink broker.NotificationSink,
	logger logr.Logger,
) *Handler {
	return &Handler{
		router:        router,
		routes:        routes,
		defaultScreen: defaultScreen,
		tracker:       tracker,
		sink:          sink,
		logger:        logger.WithName("push"),
	}
}

// HandleMessage renders a push and hands it to the sink. It reports whether
// a notification was shown. Pushes that are not ours are ignored. The
// delivery receipt is tracked before rendering.
func (h *Handler) HandleMessage(ctx context.Context, data map[string]string) bool {
	payload, ok := notification.ParsePayload(data)
	if !ok {
		h.logger.V(1).Info("Ignoring push without unique key")
		return false
	}
	log := h.logger.WithValues("uniqueKey", payload.UniqueKey)

	if err := h.tracker.PushDelivered(ctx, payload.UniqueKey); err != nil {
		log.Error(err, "Failed to track push delivery")
	}

	n, ok := h.router.Build(ctx, data, h.routes, h.defaultScreen)
	if !ok {
		return false
	}

	if err := h.sink.Publish(ctx, n); err != nil {
		log.Error(err, "Failed to publish notification")
		return false
	}

	log.V(1).Info("Notification published", "notificationId", n.ID)
	return true
}

// HandleClick tracks a tap on a notification or one of its buttons, given
// the extras of the tapped action.
func (h *Handler) HandleClick(ctx context.Context, extras map[string]string) error {
	uniqKey := extras[notification.ExtraUniqPushKey]
	if uniqKey == "" {
		return ErrNotPushClick
	}

	return h.tracker.PushClicked(ctx, event.ClickData{
		UniqKey:       uniqKey,
		ButtonUniqKey: extras[notification.ExtraUniqPushButtonKey],
	})
}
