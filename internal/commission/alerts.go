package commission

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
)

const (
	AlertKindLargeCommission  = "large_commission"
	AlertKindThresholdReached = "threshold_reached"
)

const (
	CheckPeriodDaily  = "daily"
	CheckPeriodWeekly = "weekly"
)

// AlertSettings is the per-user threshold alert configuration, loaded at
// session start and saved wholesale on explicit user action.
type AlertSettings struct {
	Enabled                bool            `json:"enabled"`
	Threshold              decimal.Decimal `json:"threshold"`
	NotifyOnEachCommission bool            `json:"notify_on_each_commission"`
	NotifyOnTotalReached   bool            `json:"notify_on_total_reached"`

	EmailEnabled bool   `json:"email_enabled"`
	EmailAddress string `json:"email_address"`
	PushEnabled  bool   `json:"push_enabled"`

	SuccessRateAlertEnabled bool            `json:"success_rate_alert_enabled"`
	SuccessRateThreshold    decimal.Decimal `json:"success_rate_threshold"`
	SuccessRateCheckPeriod  string          `json:"success_rate_check_period"`

	AutoRetryEnabled      bool `json:"auto_retry_enabled"`
	AutoRetryMaxAttempts  int  `json:"auto_retry_max_attempts"`
	AutoRetryDelayMinutes int  `json:"auto_retry_delay_minutes"`

	WeeklyReportEnabled bool `json:"weekly_report_enabled"`
	WeeklyReportDay     int  `json:"weekly_report_day"`
	WeeklyReportHour    int  `json:"weekly_report_hour"`
}

// Validate runs at settings-save time. The evaluator itself assumes a valid
// positive threshold and does not re-check.
func (s *AlertSettings) Validate() error {
	if s.Enabled && !s.Threshold.IsPositive() {
		return &ValidationError{Field: "threshold", Reason: "must be greater than zero"}
	}
	if s.EmailEnabled && s.EmailAddress == "" {
		return &ValidationError{Field: "email_address", Reason: "required when email is enabled"}
	}
	if s.SuccessRateAlertEnabled {
		if s.SuccessRateThreshold.IsNegative() || s.SuccessRateThreshold.GreaterThan(decimal.NewFromInt(100)) {
			return &ValidationError{Field: "success_rate_threshold", Reason: "must be between 0 and 100"}
		}
		if s.SuccessRateCheckPeriod != CheckPeriodDaily && s.SuccessRateCheckPeriod != CheckPeriodWeekly {
			return &ValidationError{Field: "success_rate_check_period", Reason: "must be daily or weekly"}
		}
	}
	if s.AutoRetryEnabled {
		if s.AutoRetryMaxAttempts < 1 {
			return &ValidationError{Field: "auto_retry_max_attempts", Reason: "must be at least 1"}
		}
		if s.AutoRetryDelayMinutes < 1 {
			return &ValidationError{Field: "auto_retry_delay_minutes", Reason: "must be at least 1"}
		}
	}
	if s.WeeklyReportEnabled {
		if s.WeeklyReportDay < 0 || s.WeeklyReportDay > 6 {
			return &ValidationError{Field: "weekly_report_day", Reason: "must be between 0 and 6"}
		}
		if s.WeeklyReportHour < 0 || s.WeeklyReportHour > 23 {
			return &ValidationError{Field: "weekly_report_hour", Reason: "must be between 0 and 23"}
		}
	}
	return nil
}

// AlertSettingsStore loads per-user settings. Load returns nil when the user
// never configured alerts.
type AlertSettingsStore interface {
	Load(ctx context.Context, userID int64) (*AlertSettings, error)
	Save(ctx context.Context, userID int64, settings AlertSettings) error
}

// AlertStateStore tracks the already-notified flag per user. The flag is
// cleared only by an explicit reset; falling back below the threshold does
// not re-arm the alert.
type AlertStateStore interface {
	AlreadyNotified(ctx context.Context, userID int64) (bool, error)
	MarkNotified(ctx context.Context, userID int64) error
	ClearNotified(ctx context.Context, userID int64) error
}

// AlertDispatcher routes one logical alert to whichever channels the user's
// settings enable. Fire-and-forget from the evaluator's perspective.
type AlertDispatcher interface {
	DispatchAlert(ctx context.Context, userID int64, settings AlertSettings, kind, subject, body string)
}

// Evaluator implements the two threshold trigger modes. Constructed with
// explicit stores so it stays independently testable.
type Evaluator struct {
	settings   AlertSettingsStore
	state      AlertStateStore
	dispatcher AlertDispatcher
}

func NewEvaluator(settings AlertSettingsStore, state AlertStateStore, dispatcher AlertDispatcher) *Evaluator {
	return &Evaluator{settings: settings, state: state, dispatcher: dispatcher}
}

// OnCommissionCreated inspects one new commission against the user's
// threshold configuration. The per-event trigger may fire on every record;
// the total trigger fires at most once until ResetNotification.
func (e *Evaluator) OnCommissionCreated(ctx context.Context, userID int64, amount, runningTotal decimal.Decimal) {
	settings, err := e.settings.Load(ctx, userID)
	if err != nil {
		log.Printf("alerts: could not load settings for user %d: %v", userID, err)
		return
	}
	if settings == nil || !settings.Enabled {
		return
	}

	if settings.NotifyOnEachCommission && amount.GreaterThanOrEqual(settings.Threshold) {
		subject := "Large commission recorded"
		body := fmt.Sprintf("A single commission of %s reached your alert threshold of %s.",
			amount.StringFixed(2), settings.Threshold.StringFixed(2))
		e.dispatcher.DispatchAlert(ctx, userID, *settings, AlertKindLargeCommission, subject, body)
	}

	if settings.NotifyOnTotalReached && runningTotal.GreaterThanOrEqual(settings.Threshold) {
		notified, err := e.state.AlreadyNotified(ctx, userID)
		if err != nil {
			log.Printf("alerts: could not read notified flag for user %d: %v", userID, err)
			return
		}
		if notified {
			return
		}
		subject := "Commission total threshold reached"
		body := fmt.Sprintf("Your cumulative commissions reached %s, crossing your threshold of %s.",
			runningTotal.StringFixed(2), settings.Threshold.StringFixed(2))
		e.dispatcher.DispatchAlert(ctx, userID, *settings, AlertKindThresholdReached, subject, body)
		if err := e.state.MarkNotified(ctx, userID); err != nil {
			log.Printf("alerts: could not persist notified flag for user %d: %v", userID, err)
		}
	}
}

// ResetNotification re-arms the total-reached alert. Called on explicit user
// action and whenever threshold-affecting settings change.
func (e *Evaluator) ResetNotification(ctx context.Context, userID int64) error {
	return e.state.ClearNotified(ctx, userID)
}
