package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
	"github.com/zoff-tech/go-mobile-sdk/pkg/store"
)

// Flusher starts a delivery cycle. *processor.FlushProcessor implements it.
type Flusher interface {
	Trigger()
}

// Tracker turns SDK calls into queued events. Errors are logged and returned;
// callers that treat tracking as best effort may ignore them.
type Tracker struct {
	queue   store.DurableQueue
	flusher Flusher
	logger  logr.Logger
	now     func() time.Time
}

func New(queue store.DurableQueue, flusher Flusher, logger logr.Logger) *Tracker {
	return &Tracker{
		queue:   queue,
		flusher: flusher,
		logger:  logger.WithName("tracker"),
		now:     time.Now,
	}
}

func (t *Tracker) AppInstalled(ctx context.Context, data event.InstallData) error {
	ev, err := event.AppInstalledEvent(data, t.now())
	return t.enqueue(ctx, "AppInstalled", ev, err)
}

func (t *Tracker) AppInfoUpdated(ctx context.Context, data event.UpdateData) error {
	ev, err := event.AppInfoUpdatedEvent(data, t.now())
	return t.enqueue(ctx, "AppInfoUpdated", ev, err)
}

func (t *Tracker) PushDelivered(ctx context.Context, uniqKey string) error {
	return t.enqueue(ctx, "PushDelivered", event.PushDeliveredEvent(uniqKey, t.now()), nil)
}

func (t *Tracker) PushClicked(ctx context.Context, data event.ClickData) error {
	ev, err := event.PushClickedEvent(data, t.now())
	return t.enqueue(ctx, "PushClicked", ev, err)
}

// AppStarted records a visit.
func (t *Tracker) AppStarted(ctx context.Context, data event.VisitData) error {
	ev, err := event.TrackVisitEvent(data, t.now())
	return t.enqueue(ctx, "TrackVisit", ev, err)
}

func (t *Tracker) AsyncOperation(ctx context.Context, name string, properties map[string]any) error {
	ev, err := event.AsyncOperationEvent(name, properties, t.now())
	return t.enqueue(ctx, "AsyncOperation", ev, err)
}

// SendEventsIfExist triggers a flush when the queue holds pending events.
func (t *Tracker) SendEventsIfExist(ctx context.Context) error {
	pending, err := t.queue.ListPending(ctx, 1)
	if err != nil {
		t.logger.Error(err, "Failed to check pending events")
		return err
	}
	if len(pending) > 0 {
		t.flusher.Trigger()
	}
	return nil
}

func (t *Tracker) enqueue(ctx context.Context, name string, ev event.Event, buildErr error) error {
	if buildErr != nil {
		err := fmt.Errorf("failed to build %s event: %w", name, buildErr)
		t.logger.Error(err, "Tracking failed")
		return err
	}
	if err := t.queue.Enqueue(ctx, ev); err != nil {
		err = fmt.Errorf("failed to enqueue %s event: %w", name, err)
		t.logger.Error(err, "Tracking failed", "transactionId", ev.TransactionID)
		return err
	}
	t.logger.V(1).Info("Event queued", "type", name, "transactionId", ev.TransactionID)
	return nil
}
