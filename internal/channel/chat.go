package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	chatWebhookHost       = "hooks.slack.com"
	chatWebhookPathPrefix = "/services/"
)

var ErrInvalidWebhook = errors.New("invalid chat webhook url")

// ValidateWebhook enforces the exact shape an incoming-webhook URL must
// have before we will POST to it: https, the fixed provider host, the
// fixed path prefix with a non-empty endpoint segment, and no query or
// fragment. Anything else is treated as channel-unavailable, never as
// a retryable delivery failure.
func ValidateWebhook(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ErrInvalidWebhook
	}
	if u.Scheme != "https" {
		return ErrInvalidWebhook
	}
	if u.Host != chatWebhookHost {
		return ErrInvalidWebhook
	}
	if !strings.HasPrefix(u.Path, chatWebhookPathPrefix) || len(u.Path) <= len(chatWebhookPathPrefix) {
		return ErrInvalidWebhook
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return ErrInvalidWebhook
	}
	return nil
}

// Chat delivers through a provider incoming webhook.
type Chat struct {
	HTTP *http.Client
}

func (c *Chat) Send(ctx context.Context, webhookURL, text string) error {
	if err := ValidateWebhook(webhookURL); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("chat webhook returned %d", resp.StatusCode)
	}
	return nil
}
