package event

import (
	"time"

	"github.com/google/uuid"
)

// FieldUniqKey is the additional field holding the push delivery key.
const FieldUniqKey = "uniqKey"

// Event represents a trackable occurrence waiting in the queue for delivery.
type Event struct {
	TransactionID    string            `json:"transaction_id"`
	Type             Type              `json:"-"`
	EnqueueTimestamp time.Time         `json:"enqueue_timestamp"`
	Body             []byte            `json:"body,omitempty"`
	AdditionalFields map[string]string `json:"additional_fields,omitempty"`
}

// New creates an Event with a fresh transaction id stamped at now.
func New(t Type, body []byte, fields map[string]string, now time.Time) Event {
	return Event{
		TransactionID:    uuid.NewString(),
		Type:             t,
		EnqueueTimestamp: now,
		Body:             body,
		AdditionalFields: fields,
	}
}

// Field returns an additional field, or "" when absent.
func (e Event) Field(name string) string {
	if e.AdditionalFields == nil {
		return ""
	}
	return e.AdditionalFields[name]
}

// HasBody reports whether a serialized payload is attached.
func (e Event) HasBody() bool {
	return e.Body != nil
}
