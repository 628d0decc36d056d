package notification

import (
	"strings"

	"github.com/goccy/go-json"
)

// Keys of the push data map.
const (
	DataUniqueKey = "uniqueKey"
	DataTitle     = "title"
	DataMessage   = "message"
	DataImageURL  = "imageUrl"
	DataButtons   = "buttons"
	DataClickURL  = "clickUrl"
)

// Button is a secondary action of a push.
type Button struct {
	Text      string `json:"text"`
	URL       string `json:"url"`
	UniqueKey string `json:"uniqueKey"`
}

// Payload is an inbound push message.
type Payload struct {
	UniqueKey string
	Title     string
	Message   string
	ImageURL  string
	ClickURL  string
	Buttons   []Button
}

// ParsePayload reads a push data map. It reports false when the map is not a
// push of ours, i.e. it has no unique key. Malformed buttons are ignored.
func ParsePayload(data map[string]string) (Payload, bool) {
	uniqueKey, ok := data[DataUniqueKey]
	if !ok || uniqueKey == "" {
		return Payload{}, false
	}

	payload := Payload{
		UniqueKey: uniqueKey,
		Title:     data[DataTitle],
		Message:   data[DataMessage],
		ImageURL:  strings.TrimSpace(data[DataImageURL]),
		ClickURL:  data[DataClickURL],
	}

	if raw := data[DataButtons]; raw != "" {
		var buttons []Button
		if err := json.Unmarshal([]byte(raw), &buttons); err == nil {
			payload.Buttons = buttons
		}
	}

	return payload, true
}
