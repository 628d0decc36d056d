package main

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoff-tech/go-mobile-sdk/pkg/config"
	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
	"github.com/zoff-tech/go-mobile-sdk/pkg/notification"
	"github.com/zoff-tech/go-mobile-sdk/pkg/store"
)

type recordingSink struct {
	published []*notification.Notification
	closed    bool
}

func (s *recordingSink) Publish(_ context.Context, n *notification.Notification) error {
	s.published = append(s.published, n)
	return nil
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}

func testSettings() *config.Settings {
	return &config.Settings{
		Endpoint: config.EndpointSettings{
			Domain:     "api.example.com",
			EndpointID: "shop-android",
			DeviceUUID: "device-1",
		},
		Notification: config.NotificationSettings{
			ChannelID:     "marketing",
			ChannelName:   "Marketing",
			DefaultScreen: "home",
			Routes:        []config.RouteSettings{{Pattern: "*/cart*", Screen: "cart"}},
		},
		PollInterval:   time.Hour,
		BatchSize:      10,
		Concurrency:    1,
		RequestTimeout: time.Second,
	}
}

func kinds(t *testing.T, queue store.DurableQueue) []event.Kind {
	pending, err := queue.ListPending(context.Background(), 100)
	require.NoError(t, err)
	var out []event.Kind
	for _, ev := range pending {
		out = append(out, ev.Type.Kind())
	}
	return out
}

func TestServeCommands(t *testing.T) {
	queue := store.NewMemoryQueue(0)
	sink := &recordingSink{}
	a := assemble(testSettings(), queue, sink, logr.Discard())

	input := strings.Join([]string{
		`{"kind":"install","install":{"token":"fcm","isTokenAvailable":true}}`,
		`{"kind":"push","data":{"uniqueKey":"push-1","title":"Sale","clickUrl":"app://cart/1"}}`,
		`not json`,
		`{"kind":"click","data":{"uniq_push_key":"push-1"}}`,
		`{"kind":"unknown"}`,
		``,
		`{"kind":"operation","operation":"viewProduct","properties":{"id":"42"}}`,
		`{"kind":"flush"}`,
	}, "\n")

	require.NoError(t, a.ServeCommands(context.Background(), strings.NewReader(input)))

	assert.Equal(t, []event.Kind{
		event.KindAppInstalled,
		event.KindPushDelivered,
		event.KindPushClicked,
		event.KindAsyncOperation,
	}, kinds(t, queue))

	require.Len(t, sink.published, 1)
	assert.Equal(t, "cart", sink.published[0].ContentAction.Screen)
	assert.Equal(t, "marketing", sink.published[0].Channel.ID)

	require.NoError(t, a.Close())
	assert.True(t, sink.closed)
}

func TestServeCommands_Cancelled(t *testing.T) {
	a := assemble(testSettings(), store.NewMemoryQueue(0), &recordingSink{}, logr.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.ServeCommands(ctx, strings.NewReader(`{"kind":"start"}`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestServeCommands_CancelWhileReaderOpen(t *testing.T) {
	queue := store.NewMemoryQueue(0)
	a := assemble(testSettings(), queue, &recordingSink{}, logr.Discard())

	reader, writer := io.Pipe()
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.ServeCommands(ctx, reader) }()

	_, err := writer.Write([]byte(`{"kind":"start"}` + "\n"))
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return queue.Len() == 1 }, time.Second, 10*time.Millisecond)

	// the writer stays open, so the next read never completes
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("ServeCommands did not return after cancellation")
	}
}

func TestServeCommands_ReaderError(t *testing.T) {
	a := assemble(testSettings(), store.NewMemoryQueue(0), &recordingSink{}, logr.Discard())

	reader, writer := io.Pipe()
	writer.CloseWithError(io.ErrUnexpectedEOF)

	err := a.ServeCommands(context.Background(), reader)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
