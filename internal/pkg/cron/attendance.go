package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
)

// Job names used with Scheduler.Reset.
const (
	JobStartupAutoClockIn = "startup_auto_clock_in"
	JobRefreshWorkInfo    = "refresh_work_info"
	JobDailyReset         = "daily_reset"
	JobResumeCheck        = "resume_check"
)

// JobsConfig holds attendance job timing
type JobsConfig struct {
	FetchInterval       time.Duration // default: 30 minutes
	ResetBuffer         time.Duration // default: 1 second
	ResumeCheckInterval time.Duration // default: 30 seconds
	ResumeDelay         time.Duration // default: 5 seconds
}

type AttendanceJobs struct {
	attendanceSvc attendance.Service
	dayWatcher    attendance.DayWatcher
	config        JobsConfig
}

func NewAttendanceJobs(attendanceSvc attendance.Service, dayWatcher attendance.DayWatcher, cfg JobsConfig) *AttendanceJobs {
	if cfg.FetchInterval == 0 {
		cfg.FetchInterval = 30 * time.Minute
	}
	if cfg.ResetBuffer == 0 {
		cfg.ResetBuffer = time.Second
	}
	if cfg.ResumeCheckInterval == 0 {
		cfg.ResumeCheckInterval = 30 * time.Second
	}
	if cfg.ResumeDelay == 0 {
		cfg.ResumeDelay = 5 * time.Second
	}
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		dayWatcher:    dayWatcher,
		config:        cfg,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddStartupJob(JobStartupAutoClockIn, j.dayWatcher.Startup)
	scheduler.AddJob(JobRefreshWorkInfo, j.config.FetchInterval, j.RefreshWorkInfo)
	scheduler.AddScheduledJob(JobDailyReset, NextMidnight(j.config.ResetBuffer), j.dayWatcher.CheckRollover)
	scheduler.OnResume(JobResumeCheck, j.config.ResumeCheckInterval, j.config.ResumeDelay, j.dayWatcher.CheckRollover)
}

// RefreshWorkInfo is the periodic best-effort fetch. Overlapping runs are dropped,
// and the monthly totals are fetched when the cache has none.
func (j *AttendanceJobs) RefreshWorkInfo(ctx context.Context) error {
	if err := j.attendanceSvc.RefreshWorkInfo(ctx); err != nil {
		if skippable(err) {
			slog.Debug("Cron: work info refresh skipped", "reason", err)
			return nil
		}
		return err
	}

	if _, err := j.attendanceSvc.GetMonthlyWorkHours(ctx); err != nil {
		return err
	}
	return nil
}

func skippable(err error) bool {
	return errors.Is(err, attendance.ErrBusy) ||
		errors.Is(err, attendance.ErrOffline) ||
		errors.Is(err, attendance.ErrNotConfigured)
}
