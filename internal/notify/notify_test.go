package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"brewhub-system/internal/commission"
)

type stubChannel struct {
	name string
	err  error
	sent []Notification
}

func (c *stubChannel) Name() string { return c.name }

func (c *stubChannel) Send(_ context.Context, n Notification) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, n)
	return nil
}

func TestDispatchAlertChannelRouting(t *testing.T) {
	ctx := context.Background()

	settings := commission.AlertSettings{
		Enabled:      true,
		Threshold:    decimal.RequireFromString("100"),
		EmailEnabled: true,
		EmailAddress: "user@example.com",
		PushEnabled:  true,
	}

	t.Run("fans out to every enabled channel", func(t *testing.T) {
		email := &stubChannel{name: ChannelEmail}
		push := &stubChannel{name: ChannelPush}
		dispatcher := NewDispatcher(nil, email, push)

		dispatcher.DispatchAlert(ctx, 1, settings, "large_commission", "Alert", "body")

		if len(email.sent) != 1 {
			t.Errorf("email deliveries = %d, want 1", len(email.sent))
		}
		if email.sent[0].Recipient != "user@example.com" {
			t.Errorf("email recipient = %s", email.sent[0].Recipient)
		}
		if len(push.sent) != 1 {
			t.Errorf("push deliveries = %d, want 1", len(push.sent))
		}
	})

	t.Run("disabled channels stay silent", func(t *testing.T) {
		email := &stubChannel{name: ChannelEmail}
		push := &stubChannel{name: ChannelPush}
		dispatcher := NewDispatcher(nil, email, push)

		quiet := settings
		quiet.PushEnabled = false
		dispatcher.DispatchAlert(ctx, 1, quiet, "large_commission", "Alert", "body")

		if len(push.sent) != 0 {
			t.Errorf("push deliveries = %d, want 0", len(push.sent))
		}
		if len(email.sent) != 1 {
			t.Errorf("email deliveries = %d, want 1", len(email.sent))
		}
	})

	t.Run("one failing channel does not block the other", func(t *testing.T) {
		db := newTestDB(t)
		email := &stubChannel{name: ChannelEmail, err: errors.New("smtp down")}
		push := &stubChannel{name: ChannelPush}
		queue := NewRetryQueue(db, email, push)
		dispatcher := NewDispatcher(queue, email, push)

		retried := settings
		retried.AutoRetryEnabled = true
		retried.AutoRetryMaxAttempts = 3
		dispatcher.DispatchAlert(ctx, 1, retried, "large_commission", "Alert", "body")

		if len(push.sent) != 1 {
			t.Errorf("push deliveries = %d, want 1", len(push.sent))
		}
		items, err := queue.ListFailed(ctx, false)
		if err != nil {
			t.Fatalf("ListFailed: %v", err)
		}
		if len(items) != 1 || items[0].Channel != ChannelEmail {
			t.Errorf("queued = %+v, want one email item", items)
		}
		if items[0].MaxAttempts != 3 {
			t.Errorf("max attempts snapshot = %d, want 3", items[0].MaxAttempts)
		}
	})

	t.Run("permission denial degrades without queueing", func(t *testing.T) {
		db := newTestDB(t)
		push := &stubChannel{name: ChannelPush, err: &PermissionError{Channel: ChannelPush, Reason: "permission denied"}}
		email := &stubChannel{name: ChannelEmail}
		queue := NewRetryQueue(db, email, push)
		dispatcher := NewDispatcher(queue, email, push)

		retried := settings
		retried.AutoRetryEnabled = true
		retried.AutoRetryMaxAttempts = 3
		dispatcher.DispatchAlert(ctx, 1, retried, "large_commission", "Alert", "body")

		items, err := queue.ListFailed(ctx, false)
		if err != nil {
			t.Fatalf("ListFailed: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("permission failure queued %d items, want 0", len(items))
		}
		if len(email.sent) != 1 {
			t.Errorf("email deliveries = %d, want 1", len(email.sent))
		}
	})
}
