package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Request is an outbound delivery request.
type Request struct {
	Method string
	URL    string
	Body   []byte
}

// Transport sends a request and returns the response. Any status code is a
// response; an error means no response was received.
type Transport interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// maxResponseBody bounds how much of a response body is kept.
const maxResponseBody = 64 << 10

// HTTPTransport is a Transport over net/http. It stamps the SDK headers on
// every request.
type HTTPTransport struct {
	client  *http.Client
	headers http.Header
}

// NewHTTPTransport creates an instrumented transport. A zero timeout leaves
// requests unbounded.
func NewHTTPTransport(info ClientInfo, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		headers: info.Headers(),
	}
}

func (t *HTTPTransport) Send(ctx context.Context, req Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for key, values := range t.headers {
		httpReq.Header[key] = values
	}

	res, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		// the status line arrived, the body is best effort
		data = nil
	}

	return &Response{StatusCode: res.StatusCode, Body: data}, nil
}
