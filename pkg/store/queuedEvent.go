package store

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
)

// queuedEvent is the persisted form of an event.
type queuedEvent struct {
	TransactionID string            `json:"transaction_id" bson:"transaction_id"`
	EventType     string            `json:"event_type" bson:"event_type"`
	EnqueuedAt    time.Time         `json:"enqueued_at" bson:"enqueued_at"`
	Body          []byte            `json:"body,omitempty" bson:"body,omitempty"`
	Fields        map[string]string `json:"fields,omitempty" bson:"fields,omitempty"`
}

func newQueuedEvent(ev event.Event) queuedEvent {
	return queuedEvent{
		TransactionID: ev.TransactionID,
		EventType:     event.Key(ev.Type),
		EnqueuedAt:    ev.EnqueueTimestamp.UTC(),
		Body:          ev.Body,
		Fields:        ev.AdditionalFields,
	}
}

func (q queuedEvent) toEvent() (event.Event, error) {
	t, err := event.ParseType(q.EventType)
	if err != nil {
		return event.Event{}, err
	}
	return event.Event{
		TransactionID:    q.TransactionID,
		Type:             t,
		EnqueueTimestamp: q.EnqueuedAt,
		Body:             q.Body,
		AdditionalFields: q.Fields,
	}, nil
}

// encodeFields returns nil for an empty map so that it is stored as NULL.
func encodeFields(fields map[string]string) ([]byte, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	return json.Marshal(fields)
}

func decodeFields(data []byte) (map[string]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// decodeRecord attaches the stored fields to record and converts it.
func decodeRecord(record queuedEvent, fields []byte) (event.Event, error) {
	var err error
	if record.Fields, err = decodeFields(fields); err != nil {
		return event.Event{}, err
	}
	return record.toEvent()
}
