package gateway

import (
	"net/url"

	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
)

// EndpointConfig identifies the device and the collection endpoint.
// It is replaced as a whole on re-initialization and never mutated here.
type EndpointConfig struct {
	EndpointID     string
	DeviceUUID     string
	InstallationID string
	Domain         string
	Paths          map[event.Kind]string
}

// DefaultPaths returns the endpoint path of every event kind.
func DefaultPaths() map[event.Kind]string {
	return map[event.Kind]string{
		event.KindAppInstalled:   "/v3/operations/async",
		event.KindAppInfoUpdated: "/v3/operations/async",
		event.KindPushDelivered:  "/mobile-push/delivered",
		event.KindPushClicked:    "/mobile-push/click",
		event.KindTrackVisit:     "/mobile-push/visit",
		event.KindAsyncOperation: "/v3/operations/async",
	}
}

// PathFor returns the endpoint path for t, falling back to DefaultPaths.
func (c EndpointConfig) PathFor(t event.Type) string {
	path, ok := c.Paths[t.Kind()]
	if !ok {
		path = DefaultPaths()[t.Kind()]
	}
	if op, ok := t.(event.AsyncOperation); ok {
		path += "/" + url.PathEscape(op.Name)
	}
	return path
}
