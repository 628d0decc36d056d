package event

import (
	"time"

	"github.com/goccy/go-json"
)

// InstallData is the body of an AppInstalled event.
type InstallData struct {
	Token                  string `json:"token"`
	IsTokenAvailable       bool   `json:"isTokenAvailable"`
	InstallationID         string `json:"installationId"`
	IsNotificationsEnabled bool   `json:"isNotificationsEnabled"`
	Subscribe              bool   `json:"subscribe"`
}

// UpdateData is the body of an AppInfoUpdated event.
type UpdateData struct {
	Token                  string `json:"token"`
	IsTokenAvailable       bool   `json:"isTokenAvailable"`
	IsNotificationsEnabled bool   `json:"isNotificationsEnabled"`
	Version                int    `json:"version"`
}

// ClickData is the body of a PushClicked event.
type ClickData struct {
	UniqKey       string `json:"messageUniqueKey"`
	ButtonUniqKey string `json:"buttonUniqueKey,omitempty"`
}

// VisitData is the body of a TrackVisit event.
type VisitData struct {
	Source     string `json:"source,omitempty"`
	RequestURL string `json:"requestUrl,omitempty"`
}

// Marshal serializes a tracking payload. A nil v yields a nil body.
func Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// AppInstalledEvent builds an AppInstalled event.
func AppInstalledEvent(data InstallData, now time.Time) (Event, error) {
	body, err := Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return New(AppInstalled{}, body, nil, now), nil
}

// AppInfoUpdatedEvent builds an AppInfoUpdated event.
func AppInfoUpdatedEvent(data UpdateData, now time.Time) (Event, error) {
	body, err := Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return New(AppInfoUpdated{}, body, nil, now), nil
}

// PushDeliveredEvent builds a delivery receipt. It has no body.
func PushDeliveredEvent(uniqKey string, now time.Time) Event {
	return New(PushDelivered{}, nil, map[string]string{FieldUniqKey: uniqKey}, now)
}

// PushClickedEvent builds a PushClicked event.
func PushClickedEvent(data ClickData, now time.Time) (Event, error) {
	body, err := Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return New(PushClicked{}, body, nil, now), nil
}

// TrackVisitEvent builds a TrackVisit event.
func TrackVisitEvent(data VisitData, now time.Time) (Event, error) {
	body, err := Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return New(TrackVisit{}, body, nil, now), nil
}

// AsyncOperationEvent builds a named operation. Properties are optional.
func AsyncOperationEvent(name string, properties map[string]any, now time.Time) (Event, error) {
	var body []byte
	if properties != nil {
		var err error
		if body, err = json.Marshal(properties); err != nil {
			return Event{}, err
		}
	}
	return New(AsyncOperation{Name: name}, body, nil, now), nil
}
