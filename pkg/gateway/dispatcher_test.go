package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
)

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Send(ctx context.Context, req Request) (*Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Response), args.Error(1)
}

type panickingTransport struct{}

func (panickingTransport) Send(context.Context, Request) (*Response, error) {
	panic("boom")
}

func newTestDispatcher(transport Transport) *Dispatcher {
	return NewDispatcher(transport, logr.Discard(), WithClock(func() time.Time { return testNow }))
}

func captureDelivered(t *testing.T) (func(bool), func() bool) {
	var called, delivered bool
	return func(d bool) {
			assert.False(t, called, "callback invoked twice")
			called, delivered = true, d
		}, func() bool {
			assert.True(t, called, "callback not invoked")
			return delivered
		}
}

func TestSendEvent_PushDeliveredNotFound(t *testing.T) {
	transport := new(mockTransport)
	cfg := testConfig()
	ev := testEvent(event.PushDelivered{}, map[string]string{event.FieldUniqKey: "push-1"})

	transport.On("Send", mock.Anything, Request{
		Method: http.MethodGet,
		URL:    BuildEventURL(cfg, ev, testNow),
	}).Return(&Response{StatusCode: 404}, nil)

	done, delivered := captureDelivered(t)
	outcome := newTestDispatcher(transport).SendEvent(context.Background(), &cfg, ev, done)

	assert.Equal(t, PermanentFailure{Code: 404}, outcome)
	assert.True(t, delivered())
	transport.AssertExpectations(t)
}

func TestSendEvent_AppInstalledConnectionRefused(t *testing.T) {
	transport := new(mockTransport)
	cfg := testConfig()
	ev := testEvent(event.AppInstalled{}, nil)
	ev.Body = []byte(`{"token":"t"}`)

	transport.On("Send", mock.Anything, mock.MatchedBy(func(req Request) bool {
		return req.Method == http.MethodPost && string(req.Body) == `{"token":"t"}`
	})).Return(nil, errors.New("connection refused"))

	done, delivered := captureDelivered(t)
	outcome := newTestDispatcher(transport).SendEvent(context.Background(), &cfg, ev, done)

	assert.Equal(t, TransientFailure{Code: -1}, outcome)
	assert.False(t, delivered())
	transport.AssertExpectations(t)
}

func TestSendEvent_StatusOutcomes(t *testing.T) {
	tests := []struct {
		status    int
		expected  Outcome
		delivered bool
	}{
		{200, Success{}, true},
		{204, Success{}, true},
		{301, TransientFailure{Code: 301}, false},
		{400, PermanentFailure{Code: 400}, true},
		{429, PermanentFailure{Code: 429}, true},
		{500, TransientFailure{Code: 500}, false},
		{503, TransientFailure{Code: 503}, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			transport := new(mockTransport)
			transport.On("Send", mock.Anything, mock.Anything).Return(&Response{StatusCode: tt.status}, nil)

			cfg := testConfig()
			ev := testEvent(event.TrackVisit{}, nil)
			ev.Body = []byte(`{}`)

			done, delivered := captureDelivered(t)
			outcome := newTestDispatcher(transport).SendEvent(context.Background(), &cfg, ev, done)

			assert.Equal(t, tt.expected, outcome)
			assert.Equal(t, tt.delivered, delivered())
		})
	}
}

func TestSendEvent_NotConfigured(t *testing.T) {
	transport := new(mockTransport)

	done, delivered := captureDelivered(t)
	outcome := newTestDispatcher(transport).SendEvent(context.Background(), nil, testEvent(event.TrackVisit{}, nil), done)

	assert.Equal(t, TransientFailure{Code: -1}, outcome)
	assert.False(t, delivered())
	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSendEvent_MalformedBody(t *testing.T) {
	transport := new(mockTransport)
	cfg := testConfig()
	ev := testEvent(event.PushClicked{}, nil)
	ev.Body = []byte(`{"broken"`)

	done, delivered := captureDelivered(t)
	outcome := newTestDispatcher(transport).SendEvent(context.Background(), &cfg, ev, done)

	assert.Equal(t, TransientFailure{Code: -1}, outcome)
	assert.False(t, delivered())
	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSendEvent_UnknownType(t *testing.T) {
	transport := new(mockTransport)
	cfg := testConfig()

	done, delivered := captureDelivered(t)
	outcome := newTestDispatcher(transport).SendEvent(context.Background(), &cfg, testEvent(nil, nil), done)

	assert.Equal(t, TransientFailure{Code: -1}, outcome)
	assert.False(t, delivered())
}

func TestSendEvent_TransportPanic(t *testing.T) {
	cfg := testConfig()

	done, delivered := captureDelivered(t)
	outcome := newTestDispatcher(panickingTransport{}).SendEvent(context.Background(), &cfg, testEvent(event.TrackVisit{}, nil), done)

	assert.Equal(t, TransientFailure{Code: -1}, outcome)
	assert.False(t, delivered())
}

func TestSendEvent_GetDropsBody(t *testing.T) {
	transport := new(mockTransport)
	cfg := testConfig()
	ev := testEvent(event.PushDelivered{}, nil)
	ev.Body = []byte(`{}`)

	transport.On("Send", mock.Anything, mock.MatchedBy(func(req Request) bool {
		return req.Method == http.MethodGet && req.Body == nil
	})).Return(&Response{StatusCode: 200}, nil)

	outcome := newTestDispatcher(transport).SendEvent(context.Background(), &cfg, ev, nil)
	assert.Equal(t, Success{}, outcome)
	transport.AssertExpectations(t)
}
