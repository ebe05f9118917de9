package reports

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"brewhub-system/internal/database/models"
	"brewhub-system/internal/notify"
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
	err = db.AutoMigrate(
		&models.User{},
		&models.CommissionRecord{},
		&models.ScheduledReportSettings{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

type captureChannel struct {
	fail bool
	sent []notify.Notification
}

func (c *captureChannel) Name() string { return notify.ChannelEmail }

func (c *captureChannel) Send(_ context.Context, n notify.Notification) error {
	if c.fail {
		return errors.New("smtp unavailable")
	}
	c.sent = append(c.sent, n)
	return nil
}

func seedUser(t *testing.T, db *gorm.DB, id, tenantID int64, email string) {
	t.Helper()
	user := models.User{
		ID:       id,
		TenantID: tenantID,
		Username: "user",
		Email:    email,
		Password: "x",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
}

func seedSchedule(t *testing.T, db *gorm.DB, userID int64, now time.Time, override *string) {
	t.Helper()
	local := now.Local()
	row := models.ScheduledReportSettings{
		UserID:        userID,
		Enabled:       true,
		ReportDay:     int(local.Weekday()),
		ReportHour:    local.Hour(),
		Timezone:      "Local",
		EmailOverride: override,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("Failed to seed schedule: %v", err)
	}
}

func TestDispatchDue(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("sends due report and stamps last_sent_at", func(t *testing.T) {
		db := newTestDB(t)
		seedUser(t, db, 1, 10, "owner@example.com")
		seedSchedule(t, db, 1, now, nil)

		email := &captureChannel{}
		sent, err := NewDispatcher(db, email).DispatchDue(ctx, now)
		if err != nil {
			t.Fatalf("DispatchDue: %v", err)
		}
		if sent != 1 {
			t.Fatalf("sent = %d, want 1", sent)
		}
		if len(email.sent) != 1 || email.sent[0].Recipient != "owner@example.com" {
			t.Errorf("delivered to %v, want owner@example.com", email.sent)
		}

		var row models.ScheduledReportSettings
		db.Where("user_id = ?", 1).First(&row)
		if row.LastSentAt == nil {
			t.Error("last_sent_at not stamped after successful send")
		}

		// Retriggering inside the same window sends nothing.
		sent, err = NewDispatcher(db, email).DispatchDue(ctx, now)
		if err != nil {
			t.Fatalf("second DispatchDue: %v", err)
		}
		if sent != 0 {
			t.Errorf("retrigger sent = %d, want 0", sent)
		}
	})

	t.Run("failed send leaves the row eligible", func(t *testing.T) {
		db := newTestDB(t)
		seedUser(t, db, 1, 10, "owner@example.com")
		seedSchedule(t, db, 1, now, nil)

		email := &captureChannel{fail: true}
		sent, err := NewDispatcher(db, email).DispatchDue(ctx, now)
		if err != nil {
			t.Fatalf("DispatchDue: %v", err)
		}
		if sent != 0 {
			t.Errorf("sent = %d, want 0", sent)
		}

		var row models.ScheduledReportSettings
		db.Where("user_id = ?", 1).First(&row)
		if row.LastSentAt != nil {
			t.Error("last_sent_at stamped despite failed send")
		}

		// Next trigger with a healthy channel delivers.
		email.fail = false
		sent, err = NewDispatcher(db, email).DispatchDue(ctx, now)
		if err != nil {
			t.Fatalf("retry DispatchDue: %v", err)
		}
		if sent != 1 {
			t.Errorf("retry sent = %d, want 1", sent)
		}
	})

	t.Run("email override wins over account address", func(t *testing.T) {
		db := newTestDB(t)
		seedUser(t, db, 1, 10, "owner@example.com")
		override := "reports@example.com"
		seedSchedule(t, db, 1, now, &override)

		email := &captureChannel{}
		if _, err := NewDispatcher(db, email).DispatchDue(ctx, now); err != nil {
			t.Fatalf("DispatchDue: %v", err)
		}
		if len(email.sent) != 1 || email.sent[0].Recipient != "reports@example.com" {
			t.Errorf("delivered to %v, want reports@example.com", email.sent)
		}
	})
}
