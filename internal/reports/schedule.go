package reports

import (
	"time"

	"brewhub-system/internal/database/models"
)

// Due decides whether a scheduled report row should dispatch at the given
// instant. The row matches when now, seen in the row's timezone, falls on the
// configured weekday and hour, and nothing was already sent inside the same
// hour window. LastSentAt is the sole guard against duplicate sends from
// retriggered or concurrent scheduler runs.
func Due(now time.Time, s models.ScheduledReportSettings) (bool, error) {
	if !s.Enabled {
		return false, nil
	}

	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return false, err
	}

	local := now.In(loc)
	if int(local.Weekday()) != s.ReportDay || local.Hour() != s.ReportHour {
		return false, nil
	}

	windowStart := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc)
	if s.LastSentAt != nil && !s.LastSentAt.Before(windowStart) {
		return false, nil
	}
	return true, nil
}
