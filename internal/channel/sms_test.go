package channel

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+1 (555) 123-4567 ext", "+15551234567"},
		{"555-0100", "5550100"},
		{"++34 600 00 11", "+346000011"},
		{"call me", ""},
		{"+", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

func TestTextSend(t *testing.T) {
	var captured *http.Request
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		captured = r
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}, nil
	})}

	tx := &Text{HTTP: client}
	err := tx.Send(context.Background(), "tok-123", "sender-1", "+1 (555) 123-4567", "hi there")
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "Bearer tok-123", captured.Header.Get("Authorization"))
	assert.Contains(t, captured.URL.Path, "/sender-1/messages")
}

func TestTextSendUnusablePhone(t *testing.T) {
	called := false
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}, nil
	})}

	tx := &Text{HTTP: client}
	err := tx.Send(context.Background(), "tok", "sender", "no digits here", "hi")
	assert.ErrorIs(t, err, ErrNoUsablePhone)
	assert.False(t, called)
}

func TestTextSendNon2xx(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusTooManyRequests, Body: io.NopCloser(strings.NewReader("{}"))}, nil
	})}

	tx := &Text{HTTP: client}
	err := tx.Send(context.Background(), "tok", "sender", "+15550100", "hi")
	assert.ErrorContains(t, err, "429")
}
