package channel

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWebhook(t *testing.T) {
	tests := []struct {
		name string
		url  string
		ok   bool
	}{
		{"valid", "https://hooks.slack.com/services/T000/B000/xyz", true},
		{"plain http", "http://hooks.slack.com/services/T000/B000/xyz", false},
		{"wrong host", "https://hooks.example.com/services/T000/B000/xyz", false},
		{"missing prefix", "https://hooks.slack.com/api/T000", false},
		{"prefix only", "https://hooks.slack.com/services/", false},
		{"query string", "https://hooks.slack.com/services/T000?x=1", false},
		{"fragment", "https://hooks.slack.com/services/T000#frag", false},
		{"empty", "", false},
		{"garbage", "://nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWebhook(tt.url)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidWebhook)
			}
		})
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestChatSend(t *testing.T) {
	var captured *http.Request
	var capturedBody []byte

	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		captured = r
		capturedBody, _ = io.ReadAll(r.Body)
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("ok"))}, nil
	})}

	c := &Chat{HTTP: client}
	err := c.Send(context.Background(), "https://hooks.slack.com/services/T000/B000/xyz", "hello")
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "hooks.slack.com", captured.URL.Host)
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(capturedBody, &payload))
	assert.Equal(t, "hello", payload["text"])
}

func TestChatSendNon2xx(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusInternalServerError, Body: io.NopCloser(strings.NewReader("no"))}, nil
	})}

	c := &Chat{HTTP: client}
	err := c.Send(context.Background(), "https://hooks.slack.com/services/T000/B000/xyz", "hello")
	assert.ErrorContains(t, err, "500")
}

func TestChatSendRejectsInvalidWebhookWithoutCalling(t *testing.T) {
	called := false
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("ok"))}, nil
	})}

	c := &Chat{HTTP: client}
	err := c.Send(context.Background(), "http://attacker.example/services/x", "hello")
	assert.ErrorIs(t, err, ErrInvalidWebhook)
	assert.False(t, called)
}
