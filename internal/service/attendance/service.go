package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/domain/notification"
	"github.com/ozo-extended/ozo-agent/internal/domain/settings"
	"github.com/ozo-extended/ozo-agent/internal/pkg/flight"
	"github.com/ozo-extended/ozo-agent/internal/pkg/netcheck"
)

// Config holds attendance service configuration
type Config struct {
	// AutoClockInWait bounds how long a scheduled clock-in waits for a running operation.
	AutoClockInWait time.Duration // default: 5 minutes
}

type AttendanceServiceImpl struct {
	store    *Store
	opener   attendance.SessionOpener
	coord    *flight.Coordinator
	settings settings.Reader
	notifier notification.Service
	network  netcheck.Checker
	history  attendance.HistoryRepository
	config   Config
	now      func() time.Time
}

func NewAttendanceService(
	store *Store,
	opener attendance.SessionOpener,
	coord *flight.Coordinator,
	settingsReader settings.Reader,
	notifier notification.Service,
	network netcheck.Checker,
	history attendance.HistoryRepository,
	cfg Config,
) *AttendanceServiceImpl {
	if cfg.AutoClockInWait == 0 {
		cfg.AutoClockInWait = 5 * time.Minute
	}
	return &AttendanceServiceImpl{
		store:    store,
		opener:   opener,
		coord:    coord,
		settings: settingsReader,
		notifier: notifier,
		network:  network,
		history:  history,
		config:   cfg,
		now:      time.Now,
	}
}

// withSession opens, authenticates and always closes one portal session around fn.
// The caller must hold the coordinator.
func (a *AttendanceServiceImpl) withSession(ctx context.Context, fn func(attendance.Session) error) error {
	cfg := a.settings.Get(ctx)
	if !cfg.IsConfigured() {
		return attendance.ErrNotConfigured
	}

	session, err := a.opener.Open(ctx, attendance.OpenOptions{
		Headless: cfg.HeadlessMode,
		Credentials: attendance.Credentials{
			UserID:   cfg.UserID,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			slog.Warn("Failed to close portal session", "error", err)
		}
	}()

	if err := session.Authenticate(ctx); err != nil {
		return err
	}
	return fn(session)
}

// readBack refreshes the cache from the session's current page.
func (a *AttendanceServiceImpl) readBack(ctx context.Context, session attendance.Session) (attendance.WorkInfo, error) {
	in, err := session.ClockInTime(ctx)
	if err != nil {
		return attendance.WorkInfo{}, fmt.Errorf("failed to read clock-in time: %w", err)
	}
	out, err := session.ClockOutTime(ctx)
	if err != nil {
		return attendance.WorkInfo{}, fmt.Errorf("failed to read clock-out time: %w", err)
	}
	return a.store.UpdateWorkInfo(in, out), nil
}

// GetWorkInfo implements attendance.Service.
func (a *AttendanceServiceImpl) GetWorkInfo(ctx context.Context) (attendance.WorkInfoResponse, error) {
	if info := a.store.WorkInfo(); info != nil {
		return attendance.WorkInfoResponse{WorkInfo: *info, IsProcessing: a.coord.IsBusy()}, nil
	}

	if err := a.RefreshWorkInfo(ctx); err != nil && !errors.Is(err, attendance.ErrBusy) {
		return attendance.WorkInfoResponse{}, err
	}

	resp := attendance.WorkInfoResponse{IsProcessing: a.coord.IsBusy()}
	if info := a.store.WorkInfo(); info != nil {
		resp.WorkInfo = *info
	}
	return resp, nil
}

// RefreshWorkInfo implements attendance.Service.
func (a *AttendanceServiceImpl) RefreshWorkInfo(ctx context.Context) error {
	release, ok := a.coord.TryAcquire()
	if !ok {
		return attendance.ErrBusy
	}
	defer release()

	return a.refreshWorkInfo(ctx)
}

// ResetAndRefresh implements attendance.Service.
func (a *AttendanceServiceImpl) ResetAndRefresh(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, a.config.AutoClockInWait)
	defer cancel()

	release, err := a.coord.Acquire(waitCtx)
	if err != nil {
		// The running operation may still write the old day; the next refresh corrects it.
		slog.Warn("Cache reset gave up waiting for a running operation", "error", err)
		a.store.Clear()
		return attendance.ErrBusy
	}
	defer release()

	a.store.Clear()
	return a.refreshWorkInfo(ctx)
}

// refreshWorkInfo reads today's times into the store. The caller must hold the coordinator.
func (a *AttendanceServiceImpl) refreshWorkInfo(ctx context.Context) error {
	if !a.network.Online(ctx) {
		return attendance.ErrOffline
	}

	previous := a.store.WorkInfo()
	var info attendance.WorkInfo
	err := a.withSession(ctx, func(session attendance.Session) error {
		var err error
		info, err = a.readBack(ctx, session)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to fetch work info: %w", err)
	}

	slog.Info("Work info refreshed", "clocked_in", info.ClockedIn, "clock_in", deref(info.ClockInTime), "clock_out", deref(info.ClockOutTime))
	if changed(previous, info) {
		a.recordHistory(ctx, attendance.SourceFetch, info, "")
	}
	return nil
}

// GetMonthlyWorkHours implements attendance.Service.
func (a *AttendanceServiceImpl) GetMonthlyWorkHours(ctx context.Context) (*attendance.MonthlyWorkHours, error) {
	if m := a.store.Monthly(); m != nil {
		return m, nil
	}

	if err := a.RefreshMonthlyWorkHours(ctx); err != nil {
		if IsDomainState(err) || errors.Is(err, attendance.ErrNotConfigured) {
			slog.Info("Monthly work hours not fetched", "reason", err)
		} else {
			slog.Error("Failed to fetch monthly work hours", "error", err)
		}
		return nil, nil
	}
	return a.store.Monthly(), nil
}

// RefreshMonthlyWorkHours implements attendance.Service.
func (a *AttendanceServiceImpl) RefreshMonthlyWorkHours(ctx context.Context) error {
	release, ok := a.coord.TryAcquire()
	if !ok {
		return attendance.ErrBusy
	}
	defer release()

	if !a.network.Online(ctx) {
		return attendance.ErrOffline
	}

	return a.withSession(ctx, func(session attendance.Session) error {
		m, err := session.MonthlyWorkHours(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch monthly work hours: %w", err)
		}
		a.store.SetMonthly(m)
		return nil
	})
}

// ClockIn implements attendance.Service.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context) attendance.Result {
	release, ok := a.coord.TryAcquire()
	if !ok {
		a.notifier.Notify(ctx, notification.TypeError, MsgBusy)
		return attendance.Fail(MsgBusy)
	}
	defer release()

	return a.clockIn(ctx, attendance.SourceClockIn)
}

// AutoClockIn implements attendance.Service.
func (a *AttendanceServiceImpl) AutoClockIn(ctx context.Context) attendance.Result {
	waitCtx, cancel := context.WithTimeout(ctx, a.config.AutoClockInWait)
	defer cancel()

	release, err := a.coord.Acquire(waitCtx)
	if err != nil {
		slog.Warn("Auto clock-in gave up waiting for a running operation", "error", err)
		return attendance.Fail(MsgBusy)
	}
	defer release()

	return a.clockIn(ctx, attendance.SourceAutoClockIn)
}

func (a *AttendanceServiceImpl) clockIn(ctx context.Context, source string) attendance.Result {
	if !a.network.Online(ctx) {
		a.notifier.Notify(ctx, notification.TypeError, MsgOffline)
		return attendance.Fail(MsgOffline)
	}

	a.notifier.Notify(ctx, notification.TypeOperationStarted, "Clocking in...")

	var (
		res  attendance.ClockResult
		info attendance.WorkInfo
	)
	err := a.withSession(ctx, func(session attendance.Session) error {
		var clockErr error
		res, clockErr = session.ClockIn(ctx)

		var readErr error
		if info, readErr = a.readBack(ctx, session); readErr != nil {
			slog.Warn("Work info update after clock-in failed", "error", readErr)
		}
		return clockErr
	})

	var result attendance.Result
	switch {
	case err == nil:
		result = attendance.Ok(fmt.Sprintf("Clock-in complete (%s)", res.Time))
		slog.Info("Clock-in complete", "source", source, "clock_in", res.Time)
		a.recordHistory(ctx, source, info, result.Message)
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		result = attendance.Fail(fmt.Sprintf("Already clocked in (%s)", res.Time))
		slog.Info("Clock-in skipped", "source", source, "reason", err, "clock_in", res.Time)
	default:
		result = attendance.Fail(FailureMessage("Clock-in", err))
		a.logFailure("Clock-in", source, err)
	}

	if result.Success && source == attendance.SourceAutoClockIn {
		a.notifier.Notify(ctx, notification.TypeAutoClockIn, result.Message)
	} else {
		a.notifyResult(ctx, result)
	}
	return result
}

// ClockOut implements attendance.Service.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) attendance.Result {
	autoManHour := a.settings.Get(ctx).AutoManHour
	if req.AutoManHour != nil {
		autoManHour = *req.AutoManHour
	}
	force := true
	if req.Force != nil {
		force = *req.Force
	}

	release, ok := a.coord.TryAcquire()
	if !ok {
		a.notifier.Notify(ctx, notification.TypeError, MsgBusy)
		return attendance.Fail(MsgBusy)
	}
	defer release()

	if !a.network.Online(ctx) {
		a.notifier.Notify(ctx, notification.TypeError, MsgOffline)
		return attendance.Fail(MsgOffline)
	}

	if autoManHour {
		a.notifier.Notify(ctx, notification.TypeOperationStarted, "Clocking out and entering man-hours...")
	} else {
		a.notifier.Notify(ctx, notification.TypeOperationStarted, "Clocking out...")
	}

	var (
		res  attendance.ClockResult
		info attendance.WorkInfo
	)
	err := a.withSession(ctx, func(session attendance.Session) error {
		var clockErr error
		res, clockErr = session.ClockOut(ctx, attendance.ClockOutOptions{Force: force, AutoFill: autoManHour})

		var readErr error
		if info, readErr = a.readBack(ctx, session); readErr != nil {
			slog.Warn("Work info update after clock-out failed", "error", readErr)
		}
		return clockErr
	})

	var result attendance.Result
	switch {
	case err == nil:
		a.store.InvalidateMonthly()
		result = attendance.Ok(clockOutMessage(res, autoManHour))
		slog.Info("Clock-out complete", "clock_out", res.Time, "auto_man_hour", autoManHour, "rows", len(res.Allocations))
		a.recordHistory(ctx, attendance.SourceClockOut, info, result.Message)
	case errors.Is(err, attendance.ErrAlreadyClockedOut):
		result = attendance.Fail(fmt.Sprintf("Already clocked out (%s)", res.Time))
		slog.Info("Clock-out skipped", "reason", err, "clock_out", res.Time)
	case errors.Is(err, attendance.ErrNotClockedIn):
		result = attendance.Fail("Not clocked in yet.")
		slog.Info("Clock-out skipped", "reason", err)
	default:
		result = attendance.Fail(FailureMessage("Clock-out", err))
		a.logFailure("Clock-out", attendance.SourceClockOut, err)
	}

	a.notifyResult(ctx, result)
	return result
}

// History implements attendance.Service.
func (a *AttendanceServiceImpl) History(ctx context.Context, filter attendance.HistoryFilter) ([]attendance.HistoryEntry, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if a.history == nil {
		return []attendance.HistoryEntry{}, nil
	}
	entries, err := a.history.ListRecent(ctx, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance history: %w", err)
	}
	return entries, nil
}

// IsProcessing implements attendance.Service.
func (a *AttendanceServiceImpl) IsProcessing() bool {
	return a.coord.IsBusy()
}

func (a *AttendanceServiceImpl) logFailure(action, source string, err error) {
	if IsDomainState(err) || errors.Is(err, attendance.ErrOffline) || errors.Is(err, attendance.ErrNotConfigured) {
		slog.Info(action+" not performed", "source", source, "reason", err)
		return
	}
	slog.Error(action+" failed", "source", source, "error", err)
}

func (a *AttendanceServiceImpl) notifyResult(ctx context.Context, result attendance.Result) {
	t := notification.TypeOperationFinished
	if !result.Success {
		t = notification.TypeError
	}
	a.notifier.Notify(ctx, t, result.Message)
}

func (a *AttendanceServiceImpl) recordHistory(ctx context.Context, source string, info attendance.WorkInfo, message string) {
	if a.history == nil {
		return
	}
	id, err := uuid.NewV7()
	if err != nil {
		slog.Error("Failed to generate history id", "error", err)
		return
	}
	now := a.now()
	entry := attendance.HistoryEntry{
		ID:              id.String(),
		Date:            now.Format(time.DateOnly),
		Source:          source,
		ClockInTime:     info.ClockInTime,
		ClockOutTime:    info.ClockOutTime,
		MinClockOutTime: info.MinClockOutTime,
		Message:         message,
		CreatedAt:       now,
	}
	if err := a.history.Record(ctx, entry); err != nil {
		slog.Error("Failed to record attendance history", "source", source, "error", err)
	}
}

func changed(previous *attendance.WorkInfo, current attendance.WorkInfo) bool {
	if previous == nil {
		return true
	}
	return deref(previous.ClockInTime) != deref(current.ClockInTime) ||
		deref(previous.ClockOutTime) != deref(current.ClockOutTime)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
