// Package relay sends notifications to an HTTP relay that owns the email/SMS templates and providers.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"event-rsvp/backend/internal/notify"
)

const defaultTimeout = 15 * time.Second

// Client posts notify.Message JSON to the relay.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	nowF       func() time.Time
}

// NewClient returns a relay client for baseURL authenticated with apiKey.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		nowF:       func() time.Time { return time.Now().UTC() },
	}
}

// SendCode posts a verification code notification. Does not log the code.
func (c *Client) SendCode(ctx context.Context, userID, eventID, code string) error {
	return c.Send(ctx, notify.Message{Kind: notify.KindCode, UserID: userID, EventID: eventID, Code: code})
}

// SendConfirmation posts a booking confirmation notification.
func (c *Client) SendConfirmation(ctx context.Context, userID, eventID string) error {
	return c.Send(ctx, notify.Message{Kind: notify.KindConfirmation, UserID: userID, EventID: eventID})
}

// Send posts m to the relay. Any non-2xx response is an error.
func (c *Client) Send(ctx context.Context, m notify.Message) error {
	if c.BaseURL == "" {
		return fmt.Errorf("relay: base URL not configured")
	}
	if m.SentAt.IsZero() {
		m.SentAt = c.nowF()
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("relay: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
