package reports

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"brewhub-system/internal/commission"
	"brewhub-system/internal/database/models"
	"brewhub-system/internal/notify"
)

// WeeklySummary is the content of one scheduled report email: the last seven
// days of a tenant's commission activity.
type WeeklySummary struct {
	PeriodStart     time.Time
	PeriodEnd       time.Time
	RecordCount     int64
	TotalCommission decimal.Decimal
	PendingAmount   decimal.Decimal
	CompletedAmount decimal.Decimal
}

// Dispatcher is the target of the external time trigger. One invocation
// evaluates every enabled row and sends whatever is due right now.
type Dispatcher struct {
	db    *gorm.DB
	email notify.Channel
}

func NewDispatcher(db *gorm.DB, email notify.Channel) *Dispatcher {
	return &Dispatcher{db: db, email: email}
}

// DispatchDue sends every report due at now and stamps last_sent_at on
// success only, so a failed send stays eligible for the next trigger.
func (d *Dispatcher) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	var rows []models.ScheduledReportSettings
	if err := d.db.WithContext(ctx).Where("enabled = ?", true).Find(&rows).Error; err != nil {
		return 0, err
	}

	sent := 0
	for _, row := range rows {
		due, err := Due(now, row)
		if err != nil {
			log.Printf("reports: skipping user %d, bad timezone %q: %v", row.UserID, row.Timezone, err)
			continue
		}
		if !due {
			continue
		}

		if err := d.dispatchOne(ctx, now, row); err != nil {
			log.Printf("reports: dispatch for user %d failed: %v", row.UserID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, now time.Time, row models.ScheduledReportSettings) error {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, row.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %d no longer exists", row.UserID)
		}
		return err
	}

	recipient := user.Email
	if row.EmailOverride != nil && *row.EmailOverride != "" {
		recipient = *row.EmailOverride
	}

	summary, err := d.buildSummary(ctx, user.TenantID, now)
	if err != nil {
		return err
	}

	n := notify.Notification{
		ID:        uuid.NewString(),
		UserID:    row.UserID,
		Kind:      "weekly_report",
		Channel:   notify.ChannelEmail,
		Recipient: recipient,
		Subject:   "Weekly commission report",
		Body:      formatSummary(summary),
		CreatedAt: now,
	}
	if err := d.email.Send(ctx, n); err != nil {
		return err
	}

	return d.db.WithContext(ctx).Model(&models.ScheduledReportSettings{}).
		Where("id = ?", row.ID).
		Update("last_sent_at", now).Error
}

func (d *Dispatcher) buildSummary(ctx context.Context, tenantID int64, now time.Time) (WeeklySummary, error) {
	periodStart := now.AddDate(0, 0, -7)

	var agg struct {
		RecordCount     int64
		TotalCommission string
		PendingAmount   string
		CompletedAmount string
	}
	err := d.db.WithContext(ctx).Model(&models.CommissionRecord{}).
		Select("COUNT(*) as record_count, "+
			"COALESCE(SUM(total_commission), 0) as total_commission, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN total_commission ELSE 0 END), 0) as pending_amount, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN total_commission ELSE 0 END), 0) as completed_amount",
			commission.StatusPending, commission.StatusCompleted).
		Where("tenant_id = ? AND created_at >= ? AND created_at <= ?", tenantID, periodStart, now).
		Scan(&agg).Error
	if err != nil {
		return WeeklySummary{}, err
	}

	total, _ := decimal.NewFromString(agg.TotalCommission)
	pending, _ := decimal.NewFromString(agg.PendingAmount)
	completed, _ := decimal.NewFromString(agg.CompletedAmount)

	return WeeklySummary{
		PeriodStart:     periodStart,
		PeriodEnd:       now,
		RecordCount:     agg.RecordCount,
		TotalCommission: total,
		PendingAmount:   pending,
		CompletedAmount: completed,
	}, nil
}

func formatSummary(s WeeklySummary) string {
	return fmt.Sprintf(
		"Commission activity %s to %s\n\n"+
			"Records: %d\n"+
			"Total commission: %s\n"+
			"Completed: %s\n"+
			"Pending: %s\n",
		s.PeriodStart.Format("2006-01-02"), s.PeriodEnd.Format("2006-01-02"),
		s.RecordCount,
		s.TotalCommission.StringFixed(2),
		s.CompletedAmount.StringFixed(2),
		s.PendingAmount.StringFixed(2),
	)
}
