package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PushChannel posts to a push relay that owns browser subscriptions and
// permission state. A denied or unsupported delivery is a PermissionError so
// the dispatcher degrades instead of retrying.
type PushChannel struct {
	relayURL string
	apiKey   string
	client   *http.Client
}

func NewPushChannel(relayURL, apiKey string) *PushChannel {
	return &PushChannel{
		relayURL: relayURL,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *PushChannel) Name() string { return ChannelPush }

type pushPayload struct {
	UserID  int64  `json:"user_id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (c *PushChannel) Send(ctx context.Context, n Notification) error {
	if c.relayURL == "" {
		return &PermissionError{Channel: ChannelPush, Reason: "push relay not configured"}
	}

	payload, err := json.Marshal(pushPayload{UserID: n.UserID, Subject: n.Subject, Body: n.Body})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("push relay request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return &PermissionError{Channel: ChannelPush, Reason: "permission denied by relay"}
	case resp.StatusCode == http.StatusNotFound:
		return &PermissionError{Channel: ChannelPush, Reason: "no push subscription for user"}
	default:
		return fmt.Errorf("push relay returned status %d", resp.StatusCode)
	}
}
