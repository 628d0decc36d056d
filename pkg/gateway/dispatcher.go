package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
)

var (
	// ErrNotConfigured is reported when no endpoint configuration is available.
	ErrNotConfigured = errors.New("endpoint configuration was not initialized")
	// ErrMalformedBody is reported when an event body is not valid JSON.
	ErrMalformedBody = errors.New("event body is not valid JSON")
)

// Dispatcher performs delivery attempts. It holds no per-event state and is
// safe for concurrent use on distinct events.
type Dispatcher struct {
	transport Transport
	tracer    trace.Tracer
	logger    logr.Logger
	now       func() time.Time
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithClock overrides the clock used for dateTimeOffset.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher creates a Dispatcher sending through transport.
func NewDispatcher(transport Transport, logger logr.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		transport: transport,
		tracer:    otel.Tracer("go-mobile-sdk"),
		logger:    logger.WithName("gateway"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SendEvent performs one attempt for ev and calls done with true when the
// event must be removed from the queue (success or permanent failure) and
// false when it must be kept for a later attempt.
func (d *Dispatcher) SendEvent(ctx context.Context, cfg *EndpointConfig, ev event.Event, done func(delivered bool)) Outcome {
	outcome := d.Attempt(ctx, cfg, ev)
	if done != nil {
		done(Delivered(outcome))
	}
	return outcome
}

// Attempt sends ev once and classifies the result. Any failure before a
// response is received, panics included, becomes TransientFailure(-1).
func (d *Dispatcher) Attempt(ctx context.Context, cfg *EndpointConfig, ev event.Event) Outcome {
	ctx, span := d.tracer.Start(ctx, "SendEvent", trace.WithAttributes(
		attribute.String("event.transaction_id", ev.TransactionID),
		attribute.String("event.type", typeKey(ev.Type)),
		attribute.String("event.enqueued_at", ev.EnqueueTimestamp.String()),
	))
	defer span.End()

	log := d.logger.WithValues("transactionId", ev.TransactionID, "type", typeKey(ev.Type))

	resp, err := d.send(ctx, cfg, ev)
	if err != nil {
		log.Error(err, "Sending event failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return TransientFailure{Code: NoResponseCode}
	}

	outcome := Classify(resp)
	span.SetAttributes(
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.String("delivery.outcome", outcome.String()),
	)

	switch outcome.(type) {
	case Success:
		log.V(1).Info("Event sent")
	case PermanentFailure:
		log.Info("Event rejected, dropping it", "status", resp.StatusCode)
	default:
		log.Info("Sending event failed, will retry", "status", resp.StatusCode)
		span.SetStatus(codes.Error, outcome.String())
	}

	return outcome
}

func (d *Dispatcher) send(ctx context.Context, cfg *EndpointConfig, ev event.Event) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("delivery attempt panicked: %v", r)
		}
	}()

	if cfg == nil {
		return nil, ErrNotConfigured
	}

	md, err := event.MetadataOf(ev.Type)
	if err != nil {
		return nil, err
	}

	req := Request{
		Method: md.Method,
		URL:    BuildEventURL(*cfg, ev, d.now()),
	}
	if ev.HasBody() && md.Method != http.MethodGet {
		if !json.Valid(ev.Body) {
			return nil, ErrMalformedBody
		}
		req.Body = ev.Body
	}

	return d.transport.Send(ctx, req)
}

func typeKey(t event.Type) string {
	if t == nil {
		return ""
	}
	return event.Key(t)
}
