package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/domain/notification"
	"github.com/ozo-extended/ozo-agent/internal/portal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceService_GetWorkInfo_FetchesOnceThenServesCache(t *testing.T) {
	f := newFixture()
	f.session.clockIn = strPtr("08:30")

	// Act
	first, err := f.svc.GetWorkInfo(context.Background())
	require.NoError(t, err)
	second, err := f.svc.GetWorkInfo(context.Background())
	require.NoError(t, err)

	// Assert
	opens, _ := f.opener.counts()
	assert.Equal(t, 1, opens)
	assert.True(t, first.ClockedIn)
	assert.Equal(t, "17:30", *first.MinClockOutTime)
	assert.Equal(t, first.WorkInfo.ClockInTime, second.WorkInfo.ClockInTime)
	assert.False(t, second.IsProcessing)
	assert.Equal(t, 1, f.session.closed)
}

func TestAttendanceService_RefreshWorkInfo_RecordsHistoryOnlyWhenChanged(t *testing.T) {
	f := newFixture()
	f.session.clockIn = strPtr("08:30")

	require.NoError(t, f.svc.RefreshWorkInfo(context.Background()))
	require.NoError(t, f.svc.RefreshWorkInfo(context.Background()))

	require.Len(t, f.history.entries, 1)
	assert.Equal(t, attendance.SourceFetch, f.history.entries[0].Source)
	assert.Equal(t, "2026-10-16", f.history.entries[0].Date)
}

func TestAttendanceService_RefreshWorkInfo_NotConfigured(t *testing.T) {
	f := newFixture()
	f.settings.s.Password = "  "

	err := f.svc.RefreshWorkInfo(context.Background())

	assert.ErrorIs(t, err, attendance.ErrNotConfigured)
	opens, _ := f.opener.counts()
	assert.Zero(t, opens)
}

func TestAttendanceService_RefreshWorkInfo_Offline(t *testing.T) {
	f := newFixture()
	f.checker.offline = true

	err := f.svc.RefreshWorkInfo(context.Background())

	assert.ErrorIs(t, err, attendance.ErrOffline)
	assert.False(t, f.svc.IsProcessing(), "coordinator released")
}

func TestAttendanceService_ResetAndRefresh_WaitsForInFlightFetch(t *testing.T) {
	f := newFixture()
	f.session.setTimes(strPtr("09:00"), strPtr("18:00"))
	f.store.SetMonthly(attendance.MonthlyWorkHours{WorkedTime: "80:00"})
	f.session.readBlock = make(chan struct{})
	f.session.readEntered = make(chan struct{})

	fetchDone := make(chan error)
	go func() { fetchDone <- f.svc.RefreshWorkInfo(context.Background()) }()
	<-f.session.readEntered

	// Act
	resetDone := make(chan error)
	go func() { resetDone <- f.svc.ResetAndRefresh(context.Background()) }()
	time.Sleep(20 * time.Millisecond)
	f.session.setTimes(nil, nil)
	close(f.session.readBlock)

	// Assert
	require.NoError(t, <-fetchDone)
	require.NoError(t, <-resetDone)
	opens, maxOpen := f.opener.counts()
	assert.Equal(t, 2, opens)
	assert.Equal(t, 1, maxOpen)
	info := f.store.WorkInfo()
	require.NotNil(t, info, "reset fetched the new day")
	assert.False(t, info.ClockedIn)
	assert.Nil(t, info.ClockInTime)
	assert.Nil(t, info.ClockOutTime)
	assert.Nil(t, f.store.Monthly())
}

func TestAttendanceService_ResetAndRefresh_GivesUpButStillClears(t *testing.T) {
	f := newFixture()
	f.svc.config.AutoClockInWait = 20 * time.Millisecond
	f.store.UpdateWorkInfo(strPtr("09:00"), nil)
	release, ok := f.svc.coord.TryAcquire()
	require.True(t, ok)
	defer release()

	err := f.svc.ResetAndRefresh(context.Background())

	assert.ErrorIs(t, err, attendance.ErrBusy)
	assert.Nil(t, f.store.WorkInfo())
	opens, _ := f.opener.counts()
	assert.Zero(t, opens)
}

func TestAttendanceService_ClockIn_Success(t *testing.T) {
	f := newFixture()

	// Act
	result := f.svc.ClockIn(context.Background())

	// Assert
	assert.True(t, result.Success)
	assert.Equal(t, "Clock-in complete (09:01)", result.Message)
	info := f.store.WorkInfo()
	require.NotNil(t, info)
	assert.True(t, info.IsWorking())
	assert.Equal(t, "18:01", *info.MinClockOutTime)
	assert.Equal(t, []notification.NotificationType{notification.TypeOperationStarted, notification.TypeOperationFinished}, f.notifier.types())
	require.Len(t, f.history.entries, 1)
	assert.Equal(t, attendance.SourceClockIn, f.history.entries[0].Source)
	assert.Equal(t, 1, f.session.closed)
	assert.Equal(t, "taro@example.com", f.opener.last.Credentials.UserID)
	assert.True(t, f.opener.last.Headless)
}

func TestAttendanceService_ClockIn_AlreadyClockedIn(t *testing.T) {
	f := newFixture()
	f.session.clockIn = strPtr("08:45")

	result := f.svc.ClockIn(context.Background())

	assert.False(t, result.Success)
	assert.Equal(t, "Already clocked in (08:45)", result.Message)
	assert.Empty(t, f.history.entries)
	assert.Equal(t, "08:45", *f.store.WorkInfo().ClockInTime)
}

func TestAttendanceService_ClockIn_BusyNeverOpensSecondSession(t *testing.T) {
	f := newFixture()
	f.session.block = make(chan struct{})
	f.session.entered = make(chan struct{})

	done := make(chan attendance.Result)
	go func() { done <- f.svc.ClockIn(context.Background()) }()
	<-f.session.entered
	assert.True(t, f.svc.IsProcessing())

	// Act
	second := f.svc.ClockIn(context.Background())
	third := f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{})
	refreshErr := f.svc.RefreshWorkInfo(context.Background())
	close(f.session.block)
	first := <-done

	// Assert
	assert.True(t, first.Success)
	assert.Equal(t, attendance.Fail(MsgBusy), second)
	assert.Equal(t, attendance.Fail(MsgBusy), third)
	assert.ErrorIs(t, refreshErr, attendance.ErrBusy)
	opens, maxOpen := f.opener.counts()
	assert.Equal(t, 1, opens)
	assert.Equal(t, 1, maxOpen)
	assert.False(t, f.svc.IsProcessing())
}

func TestAttendanceService_ClockIn_Offline(t *testing.T) {
	f := newFixture()
	f.checker.offline = true

	result := f.svc.ClockIn(context.Background())

	assert.Equal(t, attendance.Fail(MsgOffline), result)
	opens, _ := f.opener.counts()
	assert.Zero(t, opens)
}

func TestAttendanceService_ClockIn_LaunchFailureCarriesHint(t *testing.T) {
	f := newFixture()
	f.opener.openErr = errors.Join(portal.ErrLaunch, errors.New("executable doesn't exist"))

	result := f.svc.ClockIn(context.Background())

	assert.Equal(t, attendance.Fail(MsgLaunchHint), result)
}

func TestAttendanceService_ClockIn_AuthFailure(t *testing.T) {
	f := newFixture()
	f.session.authErr = portal.ErrAuth

	result := f.svc.ClockIn(context.Background())

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Sign-in failed")
	assert.Equal(t, 1, f.session.closed)
	assert.Zero(t, f.session.clockInCalls)
}

func TestAttendanceService_AutoClockIn_WaitsForRunningOperation(t *testing.T) {
	f := newFixture()
	release, ok := f.svc.coord.TryAcquire()
	require.True(t, ok)
	go func() {
		time.Sleep(50 * time.Millisecond)
		release()
	}()

	// Act
	result := f.svc.AutoClockIn(context.Background())

	// Assert
	assert.True(t, result.Success)
	assert.Contains(t, f.notifier.types(), notification.TypeAutoClockIn)
	require.Len(t, f.history.entries, 1)
	assert.Equal(t, attendance.SourceAutoClockIn, f.history.entries[0].Source)
}

func TestAttendanceService_AutoClockIn_GivesUpAfterWait(t *testing.T) {
	f := newFixture()
	f.svc.config.AutoClockInWait = 20 * time.Millisecond
	release, ok := f.svc.coord.TryAcquire()
	require.True(t, ok)
	defer release()

	result := f.svc.AutoClockIn(context.Background())

	assert.Equal(t, attendance.Fail(MsgBusy), result)
	opens, _ := f.opener.counts()
	assert.Zero(t, opens)
}

func TestAttendanceService_ClockOut_NotClockedInTouchesNothing(t *testing.T) {
	f := newFixture()

	// Act
	result := f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{})

	// Assert
	assert.False(t, result.Success)
	assert.Equal(t, "Not clocked in yet.", result.Message)
	assert.Zero(t, f.session.clockOutCalls)
	assert.Empty(t, f.history.entries)
}

func TestAttendanceService_ClockOut_InvalidatesMonthly(t *testing.T) {
	f := newFixture()
	f.session.clockIn = strPtr("09:00")
	f.store.SetMonthly(attendance.MonthlyWorkHours{WorkedTime: "100:00"})

	// Act
	result := f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{})

	// Assert
	assert.True(t, result.Success)
	assert.Equal(t, "Clock-out complete (18:05)", result.Message)
	assert.Nil(t, f.store.Monthly())
	info := f.store.WorkInfo()
	require.NotNil(t, info)
	assert.False(t, info.IsWorking())
	require.Len(t, f.history.entries, 1)
	assert.Equal(t, attendance.SourceClockOut, f.history.entries[0].Source)
}

func TestAttendanceService_ClockOut_ManHourBreakdown(t *testing.T) {
	f := newFixture()
	f.session.clockIn = strPtr("09:00")
	auto := true

	result := f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{AutoManHour: &auto})

	assert.True(t, result.Success)
	assert.Equal(t, "Clock-out complete & man-hours entered (18:05)\nBreakdown: Design, Review", result.Message)
}

func TestAttendanceService_ClockOut_UsesSavedManHourSetting(t *testing.T) {
	f := newFixture()
	f.session.clockIn = strPtr("09:00")
	f.settings.s.AutoManHour = true

	result := f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{})

	assert.Contains(t, result.Message, "man-hours entered")
}

func TestAttendanceService_ClockOut_AlreadyOutWithoutForce(t *testing.T) {
	f := newFixture()
	f.session.clockIn = strPtr("09:00")
	f.session.clockOut = strPtr("18:00")
	force := false

	result := f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{Force: &force})

	assert.Equal(t, attendance.Fail("Already clocked out (18:00)"), result)
	assert.Zero(t, f.session.clockOutCalls)
}

func TestAttendanceService_GetMonthlyWorkHours_CachesAndSwallowsFailure(t *testing.T) {
	f := newFixture()

	got, err := f.svc.GetMonthlyWorkHours(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "120:00", got.WorkedTime)

	f.opener.openErr = portal.ErrLaunch
	again, err := f.svc.GetMonthlyWorkHours(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got, again)

	f.store.InvalidateMonthly()
	missing, err := f.svc.GetMonthlyWorkHours(context.Background())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAttendanceService_History_DefaultsLimit(t *testing.T) {
	f := newFixture()
	for i := 0; i < 40; i++ {
		f.history.entries = append(f.history.entries, attendance.HistoryEntry{ID: "x"})
	}

	got, err := f.svc.History(context.Background(), attendance.HistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, got, attendance.DefaultHistoryLimit)

	_, err = f.svc.History(context.Background(), attendance.HistoryFilter{Limit: 1000})
	assert.Error(t, err)
}

func TestFailureMessage(t *testing.T) {
	assert.Equal(t, MsgNotConfigured, FailureMessage("Clock-in", attendance.ErrNotConfigured))
	assert.Equal(t, "Clock-in may have failed: no time appeared on the portal.", FailureMessage("Clock-in", attendance.ErrClockNotConfirmed))
	assert.Equal(t, "Clock-out failed: boom", FailureMessage("Clock-out", errors.New("boom")))
}
