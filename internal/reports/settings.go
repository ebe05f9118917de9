package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"brewhub-system/internal/database/models"
)

// SettingsStore manages the per-user scheduled report configuration rows.
type SettingsStore struct {
	db *gorm.DB
}

func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

type SettingsInput struct {
	Enabled       bool
	ReportDay     int
	ReportHour    int
	Timezone      string
	EmailOverride *string
}

// ErrInvalidSettings wraps every validation failure from Save.
var ErrInvalidSettings = errors.New("invalid report settings")

func (in SettingsInput) validate() error {
	if in.ReportDay < 0 || in.ReportDay > 6 {
		return fmt.Errorf("%w: report_day must be between 0 and 6", ErrInvalidSettings)
	}
	if in.ReportHour < 0 || in.ReportHour > 23 {
		return fmt.Errorf("%w: report_hour must be between 0 and 23", ErrInvalidSettings)
	}
	if _, err := time.LoadLocation(in.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidSettings, in.Timezone)
	}
	return nil
}

func (s *SettingsStore) Get(ctx context.Context, userID int64) (*models.ScheduledReportSettings, error) {
	var row models.ScheduledReportSettings
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Save upserts the row. LastSentAt is owned by the dispatcher and never
// touched here.
func (s *SettingsStore) Save(ctx context.Context, userID int64, in SettingsInput) (*models.ScheduledReportSettings, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	row := models.ScheduledReportSettings{
		UserID:        userID,
		Enabled:       in.Enabled,
		ReportDay:     in.ReportDay,
		ReportHour:    in.ReportHour,
		Timezone:      in.Timezone,
		EmailOverride: in.EmailOverride,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "report_day", "report_hour", "timezone", "email_override", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	saved, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return saved, nil
}
