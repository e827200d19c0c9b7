package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const textAPIBase = "https://graph.facebook.com/v19.0"

var ErrNoUsablePhone = errors.New("no usable destination phone")

// NormalizePhone strips everything that is not a digit, keeping at most
// one leading +. "+1 (555) 123-4567 ext" becomes "+15551234567"; input
// with no digits at all normalizes to "".
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}

// Text delivers through the provider's template message API.
type Text struct {
	HTTP *http.Client
}

func (t *Text) Send(ctx context.Context, token, senderID, phone, text string) error {
	dest := NormalizePhone(phone)
	if dest == "" {
		return ErrNoUsablePhone
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                dest,
		"type":              "text",
		"text":              map[string]string{"body": text},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/messages", textAPIBase, senderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("text message api returned %d", resp.StatusCode)
	}
	return nil
}
