package notify

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"brewhub-system/internal/database/models"
)

// RetryQueue is the bounded-retry policy over persisted failed deliveries.
// It is synchronous: scheduling between invocations belongs to an external
// cron, for which the per-user retry delay is advisory metadata.
type RetryQueue struct {
	db       *gorm.DB
	channels map[string]Channel
}

func NewRetryQueue(db *gorm.DB, channels ...Channel) *RetryQueue {
	byName := make(map[string]Channel, len(channels))
	for _, ch := range channels {
		byName[ch.Name()] = ch
	}
	return &RetryQueue{db: db, channels: byName}
}

// Enqueue records a delivery that has already failed once. maxAttempts below
// one means auto-retry is disabled for this user, so the item goes straight
// to permanently-failed for manual inspection.
func (q *RetryQueue) Enqueue(ctx context.Context, n Notification, maxAttempts int, cause error) error {
	row := models.FailedDelivery{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Channel:        n.Channel,
		Recipient:      n.Recipient,
		Subject:        n.Subject,
		Body:           n.Body,
		AttemptCount:   1,
		MaxAttempts:    maxAttempts,
		LastError:      cause.Error(),
		Permanent:      maxAttempts <= 1,
	}
	return q.db.WithContext(ctx).Create(&row).Error
}

type RetryResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// RetryAllFailed re-attempts every still-eligible queued delivery once.
// Idempotent per invocation: permanently-failed items are never re-attempted
// and never counted again.
func (q *RetryQueue) RetryAllFailed(ctx context.Context) (RetryResult, error) {
	var result RetryResult

	var pending []models.FailedDelivery
	err := q.db.WithContext(ctx).Where("permanent = ?", false).Order("created_at asc").Find(&pending).Error
	if err != nil {
		return result, err
	}

	for _, item := range pending {
		ch, ok := q.channels[item.Channel]
		if !ok {
			// Channel no longer configured; keep the item queryable.
			log.Printf("notify: retry skipped, channel %s unavailable for delivery %s", item.Channel, item.NotificationID)
			continue
		}

		n := Notification{
			ID:        item.NotificationID,
			UserID:    item.UserID,
			Channel:   item.Channel,
			Recipient: item.Recipient,
			Subject:   item.Subject,
			Body:      item.Body,
			CreatedAt: time.Now(),
		}

		if sendErr := ch.Send(ctx, n); sendErr == nil {
			if err := q.db.WithContext(ctx).Delete(&models.FailedDelivery{}, item.ID).Error; err != nil {
				log.Printf("notify: delivered %s but could not dequeue: %v", item.NotificationID, err)
				continue
			}
			result.Success++
		} else {
			log.Printf("notify: retry %d/%d failed for %s delivery %s: %v",
				item.AttemptCount+1, item.MaxAttempts, item.Channel, item.NotificationID, sendErr)
			updates := map[string]interface{}{
				"attempt_count": item.AttemptCount + 1,
				"last_error":    sendErr.Error(),
			}
			if item.AttemptCount+1 >= item.MaxAttempts {
				updates["permanent"] = true
			}
			if err := q.db.WithContext(ctx).Model(&models.FailedDelivery{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
				log.Printf("notify: could not record retry failure for %s: %v", item.NotificationID, err)
			}
			result.Failed++
		}
	}

	return result, nil
}

// ListFailed returns queued deliveries for manual inspection.
func (q *RetryQueue) ListFailed(ctx context.Context, permanentOnly bool) ([]models.FailedDelivery, error) {
	query := q.db.WithContext(ctx).Order("created_at desc")
	if permanentOnly {
		query = query.Where("permanent = ?", true)
	}
	var items []models.FailedDelivery
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
