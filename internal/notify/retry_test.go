package notify

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"brewhub-system/internal/database/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.FailedDelivery{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// flakyChannel fails the first `failures` sends, then succeeds.
type flakyChannel struct {
	name     string
	failures int
	sent     []Notification
}

func (c *flakyChannel) Name() string { return c.name }

func (c *flakyChannel) Send(_ context.Context, n Notification) error {
	if c.failures > 0 {
		c.failures--
		return errors.New("connection refused")
	}
	c.sent = append(c.sent, n)
	return nil
}

func testNotification(id string) Notification {
	return Notification{
		ID:        id,
		UserID:    1,
		Kind:      "large_commission",
		Channel:   ChannelEmail,
		Recipient: "user@example.com",
		Subject:   "Alert",
		Body:      "Threshold crossed",
		CreatedAt: time.Now(),
	}
}

func TestRetryQueueExhaustion(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	channel := &flakyChannel{name: ChannelEmail, failures: 100}
	queue := NewRetryQueue(db, channel)

	// The original delivery failure counts as attempt one.
	if err := queue.Enqueue(ctx, testNotification("n-1"), 3, errors.New("connection refused")); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// Attempts two and three. The third failure exhausts the budget.
	for pass := 1; pass <= 2; pass++ {
		result, err := queue.RetryAllFailed(ctx)
		if err != nil {
			t.Fatalf("RetryAllFailed pass %d: %v", pass, err)
		}
		if result.Failed != 1 || result.Success != 0 {
			t.Errorf("pass %d = %+v, want 1 failed", pass, result)
		}
	}

	items, err := queue.ListFailed(ctx, true)
	if err != nil {
		t.Fatalf("ListFailed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("permanent items = %d, want 1", len(items))
	}
	if items[0].AttemptCount != 3 {
		t.Errorf("attempt count = %d, want 3", items[0].AttemptCount)
	}

	// Exhausted items are left alone by further passes.
	result, err := queue.RetryAllFailed(ctx)
	if err != nil {
		t.Fatalf("RetryAllFailed after exhaustion: %v", err)
	}
	if result.Failed != 0 || result.Success != 0 {
		t.Errorf("post-exhaustion pass = %+v, want all zero", result)
	}
}

func TestRetryQueueSuccessRemovesItem(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	channel := &flakyChannel{name: ChannelEmail}
	queue := NewRetryQueue(db, channel)

	if err := queue.Enqueue(ctx, testNotification("n-2"), 3, errors.New("timeout")); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	result, err := queue.RetryAllFailed(ctx)
	if err != nil {
		t.Fatalf("RetryAllFailed: %v", err)
	}
	if result.Success != 1 || result.Failed != 0 {
		t.Errorf("result = %+v, want 1 success", result)
	}
	if len(channel.sent) != 1 || channel.sent[0].ID != "n-2" {
		t.Errorf("channel received %v, want n-2", channel.sent)
	}

	items, err := queue.ListFailed(ctx, false)
	if err != nil {
		t.Fatalf("ListFailed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("queue still holds %d items after successful retry", len(items))
	}
}

func TestRetryQueueDisabledAutoRetry(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	channel := &flakyChannel{name: ChannelEmail}
	queue := NewRetryQueue(db, channel)

	// maxAttempts 0 = user has auto-retry off: permanent on arrival.
	if err := queue.Enqueue(ctx, testNotification("n-3"), 0, errors.New("timeout")); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	result, err := queue.RetryAllFailed(ctx)
	if err != nil {
		t.Fatalf("RetryAllFailed: %v", err)
	}
	if result.Success != 0 || result.Failed != 0 {
		t.Errorf("result = %+v, want nothing attempted", result)
	}

	items, _ := queue.ListFailed(ctx, true)
	if len(items) != 1 {
		t.Errorf("permanent items = %d, want 1 (still queryable)", len(items))
	}
}

func TestRetryQueueSkipsUnconfiguredChannel(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	queue := NewRetryQueue(db, &flakyChannel{name: ChannelEmail})

	push := testNotification("n-4")
	push.Channel = ChannelPush
	if err := queue.Enqueue(ctx, push, 3, errors.New("relay down")); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	result, err := queue.RetryAllFailed(ctx)
	if err != nil {
		t.Fatalf("RetryAllFailed: %v", err)
	}
	if result.Success != 0 || result.Failed != 0 {
		t.Errorf("result = %+v, want skip without counting", result)
	}

	// Neither delivered nor burned an attempt.
	items, _ := queue.ListFailed(ctx, false)
	if len(items) != 1 || items[0].AttemptCount != 1 {
		t.Errorf("items = %+v, want single untouched item", items)
	}
}

func TestRetryQueueMixedBatch(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	channel := &flakyChannel{name: ChannelEmail, failures: 1}
	queue := NewRetryQueue(db, channel)

	for i := 0; i < 2; i++ {
		n := testNotification(fmt.Sprintf("n-5-%d", i))
		if err := queue.Enqueue(ctx, n, 5, errors.New("timeout")); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	result, err := queue.RetryAllFailed(ctx)
	if err != nil {
		t.Fatalf("RetryAllFailed: %v", err)
	}
	if result.Success != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want 1 success and 1 failure", result)
	}
}
