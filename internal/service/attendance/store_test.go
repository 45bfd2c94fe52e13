package attendance

import (
	"testing"
	"time"

	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UpdateWorkInfo_ComputesMinClockOut(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "09:00", want: "18:00"},
		{in: "08:47", want: "17:47"},
		{in: "16:30", want: "01:30"},
		{in: "23:59", want: "08:59"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			store := NewStore(sse.NewHub())

			info := store.UpdateWorkInfo(strPtr(tt.in), nil)

			assert.True(t, info.ClockedIn)
			require.NotNil(t, info.MinClockOutTime)
			assert.Equal(t, tt.want, *info.MinClockOutTime)
		})
	}
}

func TestStore_UpdateWorkInfo_NilClockInIsNotClockedIn(t *testing.T) {
	store := NewStore(sse.NewHub())
	fixed := time.Date(2026, 10, 16, 12, 0, 0, 0, time.Local)
	store.now = func() time.Time { return fixed }

	// Act
	info := store.UpdateWorkInfo(nil, strPtr("18:00"))

	// Assert
	assert.False(t, info.ClockedIn)
	assert.Nil(t, info.ClockInTime)
	assert.Nil(t, info.ClockOutTime)
	assert.Nil(t, info.MinClockOutTime)
	require.NotNil(t, info.LastUpdated)
	assert.Equal(t, fixed, *info.LastUpdated)
}

func TestStore_UpdateWorkInfo_UnparseableClockInIsNotClockedIn(t *testing.T) {
	store := NewStore(sse.NewHub())

	// Act
	info := store.UpdateWorkInfo(strPtr("--:--"), strPtr("18:00"))

	// Assert
	assert.False(t, info.ClockedIn)
	assert.Nil(t, info.ClockInTime)
	assert.Nil(t, info.ClockOutTime)
	assert.Nil(t, info.MinClockOutTime)
	assert.Equal(t, IconInactive, IconFor(store.WorkInfo()))
}

func TestStore_WorkInfo_ReturnsCopy(t *testing.T) {
	store := NewStore(sse.NewHub())
	store.UpdateWorkInfo(strPtr("09:00"), nil)

	got := store.WorkInfo()
	got.ClockedIn = false

	assert.True(t, store.WorkInfo().ClockedIn)
}

func TestStore_PublishesIconHints(t *testing.T) {
	hub := sse.NewHub()
	store := NewStore(hub)
	events, cleanup := hub.Subscribe(sse.TopicAttendance)
	defer cleanup()

	// Act
	store.UpdateWorkInfo(strPtr("09:00"), nil)
	store.UpdateWorkInfo(strPtr("09:00"), strPtr("18:00"))
	store.SetMonthly(attendance.MonthlyWorkHours{WorkedTime: "10:00"})

	// Assert
	require.Len(t, events, 3)
	working := (<-events).Data.(WorkInfoEvent)
	assert.Equal(t, IconActive, working.Icon)
	done := (<-events).Data.(WorkInfoEvent)
	assert.Equal(t, IconInactive, done.Icon)
	monthly := <-events
	assert.Equal(t, EventMonthlyChanged, monthly.Event)
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(sse.NewHub())
	store.UpdateWorkInfo(strPtr("09:00"), nil)
	store.SetMonthly(attendance.MonthlyWorkHours{WorkedTime: "10:00"})

	store.Clear()

	assert.Nil(t, store.WorkInfo())
	assert.Nil(t, store.Monthly())
}

func TestIconFor(t *testing.T) {
	assert.Equal(t, IconInactive, IconFor(nil))
	assert.Equal(t, IconInactive, IconFor(&attendance.WorkInfo{}))
	assert.Equal(t, IconActive, IconFor(&attendance.WorkInfo{ClockedIn: true, ClockInTime: strPtr("09:00")}))
}
