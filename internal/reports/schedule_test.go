package reports

import (
	"testing"
	"time"

	"brewhub-system/internal/database/models"
)

func mustParseInZone(t *testing.T, value, zone string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(zone)
	if err != nil {
		t.Fatalf("LoadLocation(%s): %v", zone, err)
	}
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	if err != nil {
		t.Fatalf("ParseInLocation(%s): %v", value, err)
	}
	return parsed
}

func TestDue(t *testing.T) {
	// 2026-08-31 is a Monday.
	monday9UTC := mustParseInZone(t, "2026-08-31 09:30", "UTC")

	base := models.ScheduledReportSettings{
		Enabled:    true,
		ReportDay:  1, // Monday
		ReportHour: 9,
		Timezone:   "UTC",
	}

	sentEarlier := monday9UTC.Add(-15 * time.Minute)
	sentLastWeek := monday9UTC.AddDate(0, 0, -7)

	tests := []struct {
		name   string
		now    time.Time
		mutate func(*models.ScheduledReportSettings)
		want   bool
	}{
		{
			name:   "matching day and hour",
			now:    monday9UTC,
			mutate: func(s *models.ScheduledReportSettings) {},
			want:   true,
		},
		{
			name: "disabled row never due",
			now:  monday9UTC,
			mutate: func(s *models.ScheduledReportSettings) {
				s.Enabled = false
			},
			want: false,
		},
		{
			name: "wrong hour",
			now:  mustParseInZone(t, "2026-08-31 10:30", "UTC"),
			mutate: func(s *models.ScheduledReportSettings) {},
			want: false,
		},
		{
			name: "wrong day",
			now:  mustParseInZone(t, "2026-09-01 09:30", "UTC"),
			mutate: func(s *models.ScheduledReportSettings) {},
			want: false,
		},
		{
			name: "already sent inside this window",
			now:  monday9UTC,
			mutate: func(s *models.ScheduledReportSettings) {
				s.LastSentAt = &sentEarlier
			},
			want: false,
		},
		{
			name: "sent last week is due again",
			now:  monday9UTC,
			mutate: func(s *models.ScheduledReportSettings) {
				s.LastSentAt = &sentLastWeek
			},
			want: true,
		},
		{
			name: "timezone shifts the local hour",
			// 09:30 UTC is 12:30 in Nairobi (+03:00), so a 9 o'clock
			// Nairobi schedule is not due.
			now: monday9UTC,
			mutate: func(s *models.ScheduledReportSettings) {
				s.Timezone = "Africa/Nairobi"
			},
			want: false,
		},
		{
			name: "due in the row's own timezone",
			// 06:30 UTC Monday = 09:30 Nairobi Monday.
			now: mustParseInZone(t, "2026-08-31 06:30", "UTC"),
			mutate: func(s *models.ScheduledReportSettings) {
				s.Timezone = "Africa/Nairobi"
			},
			want: true,
		},
		{
			name: "day boundary crossing west of UTC",
			// 02:30 UTC Monday = 21:30 Sunday in New York (-05:00/-04:00 DST).
			now: mustParseInZone(t, "2026-08-31 01:30", "UTC"),
			mutate: func(s *models.ScheduledReportSettings) {
				s.Timezone = "America/New_York"
				s.ReportDay = 0 // Sunday
				s.ReportHour = 21
			},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := base
			tt.mutate(&settings)
			got, err := Due(tt.now, settings)
			if err != nil {
				t.Fatalf("Due: %v", err)
			}
			if got != tt.want {
				t.Errorf("Due = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDueBadTimezone(t *testing.T) {
	settings := models.ScheduledReportSettings{
		Enabled:  true,
		Timezone: "Mars/Olympus_Mons",
	}
	if _, err := Due(time.Now(), settings); err == nil {
		t.Error("Due accepted an unknown timezone")
	}
}
