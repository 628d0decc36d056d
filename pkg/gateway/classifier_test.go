package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		resp     *Response
		expected Outcome
	}{
		{"no response", nil, TransientFailure{Code: -1}},
		{"ok", &Response{StatusCode: 200}, Success{}},
		{"accepted", &Response{StatusCode: 202}, Success{}},
		{"redirect", &Response{StatusCode: 302}, TransientFailure{Code: 302}},
		{"bad request", &Response{StatusCode: 400}, PermanentFailure{Code: 400}},
		{"not found", &Response{StatusCode: 404}, PermanentFailure{Code: 404}},
		{"rate limited is still permanent", &Response{StatusCode: 429}, PermanentFailure{Code: 429}},
		{"last client error", &Response{StatusCode: 499}, PermanentFailure{Code: 499}},
		{"server error", &Response{StatusCode: 500}, TransientFailure{Code: 500}},
		{"unavailable", &Response{StatusCode: 503}, TransientFailure{Code: 503}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.resp))
		})
	}
}

func TestClassify_AllStatusCodes(t *testing.T) {
	for code := 100; code < 600; code++ {
		outcome := Classify(&Response{StatusCode: code})
		switch {
		case code < 300:
			assert.Equal(t, Success{}, outcome, code)
		case code >= 400 && code < 500:
			assert.Equal(t, PermanentFailure{Code: code}, outcome, code)
		default:
			assert.Equal(t, TransientFailure{Code: code}, outcome, code)
		}
	}
}

func TestDelivered(t *testing.T) {
	assert.True(t, Delivered(Success{}))
	assert.True(t, Delivered(PermanentFailure{Code: 404}))
	assert.False(t, Delivered(TransientFailure{Code: 500}))
	assert.False(t, Delivered(TransientFailure{Code: -1}))
	assert.False(t, Delivered(nil))
}
