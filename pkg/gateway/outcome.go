package gateway

import "fmt"

// Outcome is the classification of one delivery attempt.
type Outcome interface {
	fmt.Stringer
	isOutcome()
}

// Success means the collector accepted the event.
type Success struct{}

// PermanentFailure means the collector rejected the event and a retry would
// be rejected too.
type PermanentFailure struct{ Code int }

// TransientFailure means the attempt may succeed later. Code is -1 when no
// response was received.
type TransientFailure struct{ Code int }

func (Success) isOutcome()          {}
func (PermanentFailure) isOutcome() {}
func (TransientFailure) isOutcome() {}

func (Success) String() string            { return "success" }
func (o PermanentFailure) String() string { return fmt.Sprintf("permanent_failure(%d)", o.Code) }
func (o TransientFailure) String() string { return fmt.Sprintf("transient_failure(%d)", o.Code) }

// Delivered reports whether the outcome is terminal, i.e. the event must
// leave the queue.
func Delivered(o Outcome) bool {
	switch o.(type) {
	case Success, PermanentFailure:
		return true
	default:
		return false
	}
}
