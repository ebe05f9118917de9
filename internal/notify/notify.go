package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"brewhub-system/internal/commission"
)

const (
	ChannelEmail    = "email"
	ChannelPush     = "push"
	ChannelTelegram = "telegram"
)

// Notification is one channel-addressed message. The same logical alert may
// fan out into several of these.
type Notification struct {
	ID        string
	UserID    int64
	Kind      string
	Channel   string
	Recipient string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// Channel delivers a notification over one transport.
type Channel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// PermissionError marks deliveries that must degrade silently instead of
// being retried (push permission denied or channel unsupported).
type PermissionError struct {
	Channel string
	Reason  string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s delivery not permitted: %s", e.Channel, e.Reason)
}

// Dispatcher routes alerts to enabled channels and hands failures to the
// retry queue. Channel delivery never blocks or fails the triggering action.
type Dispatcher struct {
	channels map[string]Channel
	queue    *RetryQueue
}

func NewDispatcher(queue *RetryQueue, channels ...Channel) *Dispatcher {
	byName := make(map[string]Channel, len(channels))
	for _, ch := range channels {
		byName[ch.Name()] = ch
	}
	return &Dispatcher{channels: byName, queue: queue}
}

// DispatchAlert satisfies commission.AlertDispatcher. Each enabled channel is
// attempted independently: both, one, or neither may fire for one event.
func (d *Dispatcher) DispatchAlert(ctx context.Context, userID int64, settings commission.AlertSettings, kind, subject, body string) {
	maxAttempts := 0
	if settings.AutoRetryEnabled {
		maxAttempts = settings.AutoRetryMaxAttempts
	}

	if settings.EmailEnabled {
		d.Deliver(ctx, Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Kind:      kind,
			Channel:   ChannelEmail,
			Recipient: settings.EmailAddress,
			Subject:   subject,
			Body:      body,
			CreatedAt: time.Now(),
		}, maxAttempts)
	}
	if settings.PushEnabled {
		d.Deliver(ctx, Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Kind:      kind,
			Channel:   ChannelPush,
			Recipient: fmt.Sprintf("user:%d", userID),
			Subject:   subject,
			Body:      body,
			CreatedAt: time.Now(),
		}, maxAttempts)
	}
	if ch, ok := d.channels[ChannelTelegram]; ok {
		d.deliverVia(ctx, ch, Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Kind:      kind,
			Channel:   ChannelTelegram,
			Recipient: "ops",
			Subject:   subject,
			Body:      body,
			CreatedAt: time.Now(),
		}, maxAttempts)
	}
}

// Deliver attempts one notification. Permission problems degrade with a
// warning; other failures go to the retry queue and are never dropped.
func (d *Dispatcher) Deliver(ctx context.Context, n Notification, maxAttempts int) {
	ch, ok := d.channels[n.Channel]
	if !ok {
		log.Printf("notify: channel %s not configured, dropping %s for user %d", n.Channel, n.Kind, n.UserID)
		return
	}
	d.deliverVia(ctx, ch, n, maxAttempts)
}

func (d *Dispatcher) deliverVia(ctx context.Context, ch Channel, n Notification, maxAttempts int) {
	err := ch.Send(ctx, n)
	if err == nil {
		return
	}

	var permErr *PermissionError
	if errors.As(err, &permErr) {
		log.Printf("notify: %s delivery for user %d degraded: %v", n.Channel, n.UserID, err)
		return
	}

	log.Printf("notify: %s delivery failed for user %d: %v", n.Channel, n.UserID, err)
	if d.queue == nil {
		return
	}
	if err := d.queue.Enqueue(ctx, n, maxAttempts, err); err != nil {
		log.Printf("notify: could not queue failed %s delivery %s: %v", n.Channel, n.ID, err)
	}
}
