package gateway

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
)

// Query parameter names, in the order the collector expects them.
const (
	QueryEndpointID     = "endpointId"
	QueryDeviceUUID     = "deviceUUID"
	QueryTransactionID  = "transactionId"
	QueryDateTimeOffset = "dateTimeOffset"
	QueryOperation      = "operation"
	QueryUniqKey        = "uniqKey"
)

type queryParam struct {
	key, value string
}

// BuildEventURL returns the request URL for ev. It never fails: a missing
// required field is sent as an empty value.
func BuildEventURL(cfg EndpointConfig, ev event.Event, now time.Time) string {
	params := []queryParam{
		{QueryEndpointID, cfg.EndpointID},
		{QueryDeviceUUID, cfg.DeviceUUID},
		{QueryTransactionID, ev.TransactionID},
		{QueryDateTimeOffset, strconv.FormatInt(now.Sub(ev.EnqueueTimestamp).Milliseconds(), 10)},
	}

	var path string
	if ev.Type != nil {
		path = cfg.PathFor(ev.Type)
		if md, err := event.MetadataOf(ev.Type); err == nil {
			switch {
			case md.Operation != "":
				params = append(params, queryParam{QueryOperation, md.Operation})
			case md.UniqKeyParam:
				params = append(params, queryParam{QueryUniqKey, ev.Field(event.FieldUniqKey)})
			}
		}
	}

	var b strings.Builder
	b.WriteString("https://")
	b.WriteString(cfg.Domain)
	b.WriteString(path)
	for i, p := range params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}
