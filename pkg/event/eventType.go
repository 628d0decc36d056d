package event

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnknownEventType is returned when a persisted type key cannot be mapped back to a Type.
var ErrUnknownEventType = errors.New("unknown event type")

// Kind is the stable, persisted name of an event variant.
type Kind string

const (
	KindAppInstalled   Kind = "app_installed"
	KindAppInfoUpdated Kind = "app_info_updated"
	KindPushDelivered  Kind = "push_delivered"
	KindPushClicked    Kind = "push_clicked"
	KindTrackVisit     Kind = "track_visit"
	KindAsyncOperation Kind = "async_operation"
)

// Type is the closed set of trackable event variants. Only the types in this
// package implement it.
type Type interface {
	Kind() Kind
	isType()
}

type (
	AppInstalled   struct{}
	AppInfoUpdated struct{}
	PushDelivered  struct{}
	PushClicked    struct{}
	TrackVisit     struct{}
	// AsyncOperation is a named custom operation.
	AsyncOperation struct{ Name string }
)

func (AppInstalled) Kind() Kind   { return KindAppInstalled }
func (AppInfoUpdated) Kind() Kind { return KindAppInfoUpdated }
func (PushDelivered) Kind() Kind  { return KindPushDelivered }
func (PushClicked) Kind() Kind    { return KindPushClicked }
func (TrackVisit) Kind() Kind     { return KindTrackVisit }
func (AsyncOperation) Kind() Kind { return KindAsyncOperation }

func (AppInstalled) isType()   {}
func (AppInfoUpdated) isType() {}
func (PushDelivered) isType()  {}
func (PushClicked) isType()    {}
func (TrackVisit) isType()     {}
func (AsyncOperation) isType() {}

// Operation codes sent in the "operation" query parameter.
const (
	OperationInstall = "install"
	OperationUpdate  = "update"
)

// Metadata is the wire shape of an event variant.
type Metadata struct {
	Method       string
	RequiresBody bool
	// Operation is non-empty for variants that carry an operation query parameter.
	Operation string
	// UniqKeyParam is true for variants that carry the uniqKey query parameter.
	UniqKeyParam bool
}

// MetadataOf returns the static wire metadata of t.
func MetadataOf(t Type) (Metadata, error) {
	switch t.(type) {
	case AppInstalled:
		return Metadata{Method: http.MethodPost, RequiresBody: true, Operation: OperationInstall}, nil
	case AppInfoUpdated:
		return Metadata{Method: http.MethodPost, RequiresBody: true, Operation: OperationUpdate}, nil
	case PushDelivered:
		return Metadata{Method: http.MethodGet, UniqKeyParam: true}, nil
	case PushClicked, TrackVisit:
		return Metadata{Method: http.MethodPost, RequiresBody: true}, nil
	case AsyncOperation:
		return Metadata{Method: http.MethodPost}, nil
	default:
		return Metadata{}, fmt.Errorf("%w: %T", ErrUnknownEventType, t)
	}
}

// Key returns the persisted form of t.
func Key(t Type) string {
	if op, ok := t.(AsyncOperation); ok {
		return string(KindAsyncOperation) + ":" + op.Name
	}
	return string(t.Kind())
}

// ParseType is the inverse of Key.
func ParseType(key string) (Type, error) {
	if name, ok := strings.CutPrefix(key, string(KindAsyncOperation)+":"); ok {
		return AsyncOperation{Name: name}, nil
	}
	switch Kind(key) {
	case KindAppInstalled:
		return AppInstalled{}, nil
	case KindAppInfoUpdated:
		return AppInfoUpdated{}, nil
	case KindPushDelivered:
		return PushDelivered{}, nil
	case KindPushClicked:
		return PushClicked{}, nil
	case KindTrackVisit:
		return TrackVisit{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, key)
}
