package models

import "time"

// FailedDelivery is one notification that a channel could not deliver.
// MaxAttempts is snapshotted from the user's auto-retry settings at enqueue
// time so later settings edits do not change the fate of queued items.
type FailedDelivery struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	NotificationID string `gorm:"index;not null"`
	UserID         int64  `gorm:"index;not null"`
	Channel        string `gorm:"not null"`
	Recipient      string `gorm:"not null"`
	Subject        string `gorm:"not null"`
	Body           string `gorm:"type:text;not null"`
	AttemptCount   int    `gorm:"not null"`
	MaxAttempts    int    `gorm:"not null"`
	LastError      string `gorm:"type:text"`
	Permanent      bool   `gorm:"index;not null;default:false"`
	CreatedAt      *time.Time `gorm:"autoCreateTime"`
	UpdatedAt      *time.Time `gorm:"autoUpdateTime"`
}

// ScheduledReportSettings drives the weekly report dispatcher. LastSentAt is
// the only idempotency guard against duplicate sends from retriggered runs.
type ScheduledReportSettings struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	UserID        int64  `gorm:"uniqueIndex;not null"`
	Enabled       bool   `gorm:"not null;default:false"`
	ReportDay     int    `gorm:"not null"` // 0 = Sunday .. 6 = Saturday
	ReportHour    int    `gorm:"not null"` // 0..23
	Timezone      string `gorm:"not null"`
	EmailOverride *string
	LastSentAt    *time.Time
	CreatedAt     *time.Time `gorm:"autoCreateTime"`
	UpdatedAt     *time.Time `gorm:"autoUpdateTime"`
}
