package attendance

import (
	"context"
)

// Service is the attendance surface consumed by the UI and the scheduler.
type Service interface {
	// GetWorkInfo returns the cached snapshot, fetching it first when the cache is empty.
	GetWorkInfo(ctx context.Context) (WorkInfoResponse, error)

	// RefreshWorkInfo re-reads today's times from the portal. Returns ErrBusy instead of waiting.
	RefreshWorkInfo(ctx context.Context) error

	// ResetAndRefresh clears both caches and re-reads today's times as one operation,
	// waiting for a running operation to finish first.
	ResetAndRefresh(ctx context.Context) error

	// GetMonthlyWorkHours returns the cached monthly totals, fetching them when absent.
	// A nil result means they could not be read.
	GetMonthlyWorkHours(ctx context.Context) (*MonthlyWorkHours, error)

	// RefreshMonthlyWorkHours re-reads the monthly totals. Returns ErrBusy instead of waiting.
	RefreshMonthlyWorkHours(ctx context.Context) error

	ClockIn(ctx context.Context) Result

	// AutoClockIn clocks in on behalf of the scheduler, waiting for a running operation to finish.
	AutoClockIn(ctx context.Context) Result

	ClockOut(ctx context.Context, req ClockOutRequest) Result

	History(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, error)

	IsProcessing() bool
}

// DayWatcher owns the daily reset.
type DayWatcher interface {
	// CheckRollover resets the caches when the local date changed since the last check.
	CheckRollover(ctx context.Context) error

	// Startup performs the launch-time auto clock-in when it is allowed.
	Startup(ctx context.Context) error
}
