package store

import (
	"context"

	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
)

// DurableQueue persists events until their delivery is confirmed.
type DurableQueue interface {
	// Enqueue stores ev. Enqueuing a transaction id twice keeps the first copy.
	Enqueue(ctx context.Context, ev event.Event) error
	// ListPending returns up to limit events, oldest first. Events older than
	// the queue's TTL are dropped instead of returned.
	ListPending(ctx context.Context, limit int) ([]event.Event, error)
	// Remove deletes the event with the given transaction id. Removing an
	// unknown id is not an error.
	Remove(ctx context.Context, transactionID string) error
	// Close releases the underlying connection.
	Close() error
}
