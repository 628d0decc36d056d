package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushDeliveredEvent(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ev := PushDeliveredEvent("push-1", now)

	assert.Equal(t, PushDelivered{}, ev.Type)
	assert.Equal(t, now, ev.EnqueueTimestamp)
	assert.False(t, ev.HasBody())
	assert.Equal(t, "push-1", ev.Field(FieldUniqKey))
	assert.NotEmpty(t, ev.TransactionID)
}

func TestNew_UniqueTransactionIDs(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ev := New(TrackVisit{}, []byte("{}"), nil, now)
		assert.False(t, seen[ev.TransactionID])
		seen[ev.TransactionID] = true
	}
}

func TestAppInstalledEvent_Body(t *testing.T) {
	ev, err := AppInstalledEvent(InstallData{Token: "fcm", IsTokenAvailable: true, InstallationID: "inst"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, AppInstalled{}, ev.Type)
	assert.JSONEq(t,
		`{"token":"fcm","isTokenAvailable":true,"installationId":"inst","isNotificationsEnabled":false,"subscribe":false}`,
		string(ev.Body))
}

func TestPushClickedEvent_OmitsEmptyButton(t *testing.T) {
	ev, err := PushClickedEvent(ClickData{UniqKey: "push-1"}, time.Now())
	require.NoError(t, err)
	assert.JSONEq(t, `{"messageUniqueKey":"push-1"}`, string(ev.Body))
}

func TestAsyncOperationEvent(t *testing.T) {
	ev, err := AsyncOperationEvent("Order.Created", nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, AsyncOperation{Name: "Order.Created"}, ev.Type)
	assert.False(t, ev.HasBody())

	ev, err = AsyncOperationEvent("Order.Created", map[string]any{"total": 42}, time.Now())
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":42}`, string(ev.Body))
}

func TestField_NilMap(t *testing.T) {
	assert.Equal(t, "", Event{}.Field(FieldUniqKey))
}
