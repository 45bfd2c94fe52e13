package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/domain/settings"
	"github.com/ozo-extended/ozo-agent/internal/pkg/holiday"
)

// DefaultMinHour is the earliest local hour at which auto clock-in may run.
const DefaultMinHour = 6

// DailyResetConfig holds daily reset configuration
type DailyResetConfig struct {
	MinHour int // default: 6
}

// DailyReset clears the caches once per local date and runs the automatic clock-in.
type DailyReset struct {
	svc      attendance.Service
	settings settings.Reader
	calendar holiday.Calendar
	minHour  int
	now      func() time.Time

	mu       sync.Mutex
	lastDate string
}

func NewDailyReset(svc attendance.Service, settingsReader settings.Reader, calendar holiday.Calendar, cfg DailyResetConfig) *DailyReset {
	if cfg.MinHour == 0 {
		cfg.MinHour = DefaultMinHour
	}
	d := &DailyReset{
		svc:      svc,
		settings: settingsReader,
		calendar: calendar,
		minHour:  cfg.MinHour,
		now:      time.Now,
	}
	d.lastDate = d.now().Format(time.DateOnly)
	return d
}

// CheckRollover implements attendance.DayWatcher.
func (d *DailyReset) CheckRollover(ctx context.Context) error {
	today := d.now().Format(time.DateOnly)

	d.mu.Lock()
	if today == d.lastDate {
		d.mu.Unlock()
		return nil
	}
	previous := d.lastDate
	d.lastDate = today
	d.mu.Unlock()

	slog.Info("Date changed, resetting attendance cache", "previous", previous, "today", today)
	if err := d.svc.ResetAndRefresh(ctx); err != nil {
		logSkipped("Work info fetch after reset", err)
	}
	if _, err := d.svc.GetMonthlyWorkHours(ctx); err != nil {
		slog.Error("Monthly work hours fetch after reset failed", "error", err)
	}

	return d.maybeAutoClockIn(ctx, "daily_reset")
}

// Startup implements attendance.DayWatcher.
func (d *DailyReset) Startup(ctx context.Context) error {
	return d.maybeAutoClockIn(ctx, "startup")
}

// AllowsAutoClockIn reports whether t is a working moment. reason explains a refusal.
func (d *DailyReset) AllowsAutoClockIn(t time.Time) (bool, string) {
	switch {
	case holiday.IsWeekend(t):
		return false, "weekend"
	case d.calendar != nil && d.calendar.IsHoliday(t):
		return false, "holiday"
	case t.Hour() < d.minHour:
		return false, fmt.Sprintf("before %02d:00", d.minHour)
	}
	return true, ""
}

func (d *DailyReset) maybeAutoClockIn(ctx context.Context, trigger string) error {
	cfg := d.settings.Get(ctx)
	if !cfg.AutoClockIn {
		return nil
	}
	if !cfg.IsConfigured() {
		slog.Info("Auto clock-in skipped", "trigger", trigger, "reason", "not configured")
		return nil
	}

	now := d.now()
	if ok, reason := d.AllowsAutoClockIn(now); !ok {
		slog.Info("Auto clock-in skipped", "trigger", trigger, "date", now.Format(time.DateOnly), "reason", reason)
		return nil
	}

	slog.Info("Auto clock-in starting", "trigger", trigger)
	result := d.svc.AutoClockIn(ctx)
	if !result.Success {
		slog.Info("Auto clock-in did not complete", "trigger", trigger, "message", result.Message)
	}

	if _, err := d.svc.GetMonthlyWorkHours(ctx); err != nil {
		slog.Error("Monthly work hours fetch after auto clock-in failed", "error", err)
	}
	return nil
}

func logSkipped(what string, err error) {
	if IsDomainState(err) || errors.Is(err, attendance.ErrOffline) || errors.Is(err, attendance.ErrNotConfigured) {
		slog.Info(what+" skipped", "reason", err)
		return
	}
	slog.Error(what+" failed", "error", err)
}
