package notification

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	PriorityHigh      = "high"
	VisibilityPrivate = "private"
)

// Router turns push payloads into notifications.
type Router struct {
	fetcher      ImageFetcher
	channel      Channel
	imageTimeout time.Duration
	logger       logr.Logger
	tracer       trace.Tracer
	newID        func() int32
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithImageTimeout bounds image downloads.
func WithImageTimeout(timeout time.Duration) RouterOption {
	return func(r *Router) {
		if timeout > 0 {
			r.imageTimeout = timeout
		}
	}
}

// WithIDSource overrides the generator of notification ids and request codes.
func WithIDSource(newID func() int32) RouterOption {
	return func(r *Router) { r.newID = newID }
}

func NewRouter(fetcher ImageFetcher, channel Channel, logger logr.Logger, opts ...RouterOption) *Router {
	r := &Router{
		fetcher:      fetcher,
		channel:      channel,
		imageTimeout: DefaultImageTimeout,
		logger:       logger.WithName("notification"),
		tracer:       otel.Tracer("go-mobile-sdk"),
		newID:        rand.Int32,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build renders the push in data. It reports false when data is not a push
// of ours or the notification could not be built. An image that cannot be
// fetched only drops the expanded style.
func (r *Router) Build(ctx context.Context, data map[string]string, routes *RouteTable, defaultScreen string) (n *Notification, ok bool) {
	ctx, span := r.tracer.Start(ctx, "BuildNotification")
	defer span.End()

	payload, ok := ParsePayload(data)
	if !ok {
		return nil, false
	}
	span.SetAttributes(attribute.String("push.unique_key", payload.UniqueKey))
	log := r.logger.WithValues("uniqueKey", payload.UniqueKey)

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("building notification panicked: %v", rec)
			log.Error(err, "Failed to build notification")
			span.RecordError(err)
			n, ok = nil, false
		}
	}()

	id := r.newID()
	n = &Notification{
		ID:         id,
		UniqueKey:  payload.UniqueKey,
		Channel:    r.channel,
		Title:      payload.Title,
		Message:    payload.Message,
		Priority:   PriorityHigh,
		Visibility: VisibilityPrivate,
		AutoCancel: true,
		ContentAction: r.pendingAction(id, payload.UniqueKey, "", payload.ClickURL,
			routes.Resolve(payload.ClickURL, defaultScreen)),
	}

	buttons := payload.Buttons
	if len(buttons) > MaxActionsCount {
		buttons = buttons[:MaxActionsCount]
	}
	for _, button := range buttons {
		if _, err := url.Parse(button.URL); err != nil {
			log.Info("Skipping action with malformed link", "url", button.URL)
			continue
		}
		n.Actions = append(n.Actions, ActionButton{
			Text: button.Text,
			Action: r.pendingAction(id, payload.UniqueKey, button.UniqueKey, button.URL,
				routes.Resolve(button.URL, defaultScreen)),
		})
	}

	if payload.ImageURL != "" && r.fetcher != nil {
		if image, err := r.fetchImage(ctx, payload.ImageURL); err != nil {
			log.Info("Image unavailable, showing plain notification", "url", payload.ImageURL, "error", err.Error())
		} else {
			n.LargeIcon = image
			n.Style = &BigPictureStyle{Image: image, Title: payload.Title, Summary: payload.Message}
		}
	}

	return n, true
}

type fetchResult struct {
	image []byte
	err   error
}

// fetchImage gives up after imageTimeout even if the fetcher ignores ctx.
func (r *Router) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.imageTimeout)
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fetchResult{err: fmt.Errorf("image fetch panicked: %v", rec)}
			}
		}()
		image, err := r.fetcher.Fetch(ctx, imageURL)
		done <- fetchResult{image: image, err: err}
	}()

	select {
	case res := <-done:
		return res.image, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("image fetch abandoned: %w", ctx.Err())
	}
}

func (r *Router) pendingAction(id int32, uniqueKey, buttonKey, link, screen string) PendingAction {
	extras := map[string]string{
		ExtraNotificationID: strconv.FormatInt(int64(id), 10),
		ExtraUniqPushKey:    uniqueKey,
	}
	if link != "" {
		extras[ExtraURL] = link
	}
	if buttonKey != "" {
		extras[ExtraUniqPushButtonKey] = buttonKey
	}
	return PendingAction{
		Screen:      screen,
		RequestCode: r.newID(),
		Extras:      extras,
	}
}
