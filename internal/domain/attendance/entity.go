package attendance

import (
	"fmt"
	"time"
)

// WorkHours is the fixed span between clock-in and the earliest legal clock-out.
const WorkHours = 9 * time.Hour

// WorkInfo is the last known attendance snapshot for today.
// ClockedIn is false exactly when ClockInTime is nil, and MinClockOutTime is set whenever ClockedIn is.
type WorkInfo struct {
	ClockedIn       bool       `json:"clocked_in"`
	ClockInTime     *string    `json:"clock_in_time"`
	ClockOutTime    *string    `json:"clock_out_time"`
	MinClockOutTime *string    `json:"min_clock_out_time"`
	LastUpdated     *time.Time `json:"last_updated"`
}

// IsWorking reports whether the user is clocked in and has not clocked out.
func (w WorkInfo) IsWorking() bool {
	return w.ClockedIn && w.ClockOutTime == nil
}

// MonthlyWorkHours holds the monthly totals as scraped, e.g. "152:30" or "-03:15".
type MonthlyWorkHours struct {
	WorkedTime    string `json:"worked_time"`
	RequiredTime  string `json:"required_time"`
	DiffTime      string `json:"diff_time"`
	DailyDiffTime string `json:"daily_diff_time"`
}

// TaskAllocation is the time written into one man-hour row.
type TaskAllocation struct {
	RowID   string `json:"row_id"`
	Minutes int    `json:"minutes"`
	Label   string `json:"label"`
}

// ClockResult is what the portal reported after a clock action.
type ClockResult struct {
	Time        string
	Allocations []TaskAllocation
	ManHourErr  error
}

// Credentials identify the user against the portal sign-in.
type Credentials struct {
	UserID   string
	Password string
}

// History sources.
const (
	SourceFetch       = "fetch"
	SourceClockIn     = "clock_in"
	SourceAutoClockIn = "auto_clock_in"
	SourceClockOut    = "clock_out"
)

// HistoryEntry is one persisted attendance observation.
type HistoryEntry struct {
	ID              string    `json:"id"`
	Date            string    `json:"date"`
	Source          string    `json:"source"`
	ClockInTime     *string   `json:"clock_in_time"`
	ClockOutTime    *string   `json:"clock_out_time"`
	MinClockOutTime *string   `json:"min_clock_out_time"`
	Message         string    `json:"message"`
	CreatedAt       time.Time `json:"created_at"`
}

// MinClockOut returns clockIn + 9h wrapped at 24h as "HH:MM".
func MinClockOut(clockIn string) (string, error) {
	var h, m int
	if _, err := fmt.Sscanf(clockIn, "%d:%d", &h, &m); err != nil {
		return "", fmt.Errorf("parse clock-in time %q: %w", clockIn, err)
	}
	total := (h*60 + m + int(WorkHours/time.Minute)) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}
