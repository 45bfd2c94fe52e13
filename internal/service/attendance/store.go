package attendance

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/pkg/sse"
)

// Store events and icon hints published on sse.TopicAttendance.
const (
	EventWorkInfoChanged = "work_info_changed"
	EventMonthlyChanged  = "monthly_changed"

	IconActive   = "active"
	IconInactive = "inactive"
)

// WorkInfoEvent is the payload of EventWorkInfoChanged. WorkInfo is nil after a reset.
type WorkInfoEvent struct {
	WorkInfo *attendance.WorkInfo `json:"work_info"`
	Icon     string               `json:"icon"`
}

// Store owns the cached attendance snapshots. Readers never block on the portal.
type Store struct {
	mu       sync.RWMutex
	workInfo *attendance.WorkInfo
	monthly  *attendance.MonthlyWorkHours
	hub      *sse.Hub
	now      func() time.Time
}

func NewStore(hub *sse.Hub) *Store {
	return &Store{hub: hub, now: time.Now}
}

// WorkInfo returns a copy of the cached snapshot, or nil.
func (s *Store) WorkInfo() *attendance.WorkInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.workInfo == nil {
		return nil
	}
	w := *s.workInfo
	return &w
}

// Monthly returns a copy of the cached monthly totals, or nil.
func (s *Store) Monthly() *attendance.MonthlyWorkHours {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.monthly == nil {
		return nil
	}
	m := *s.monthly
	return &m
}

// UpdateWorkInfo replaces the snapshot from freshly read portal times.
// A nil or unparseable clockIn yields a not-clocked-in snapshot, so a
// clocked-in snapshot always carries its minimum clock-out time.
func (s *Store) UpdateWorkInfo(clockIn, clockOut *string) attendance.WorkInfo {
	now := s.now()
	info := attendance.WorkInfo{LastUpdated: &now}

	if clockIn != nil {
		in := *clockIn
		if minOut, err := attendance.MinClockOut(in); err != nil {
			slog.Warn("Ignoring unreadable clock-in time", "clock_in", in, "error", err)
		} else {
			info.ClockedIn = true
			info.ClockInTime = &in
			info.MinClockOutTime = &minOut
			if clockOut != nil {
				out := *clockOut
				info.ClockOutTime = &out
			}
		}
	}

	s.mu.Lock()
	s.workInfo = &info
	s.mu.Unlock()

	s.publishWorkInfo(&info)
	return info
}

// SetMonthly replaces the monthly totals.
func (s *Store) SetMonthly(m attendance.MonthlyWorkHours) {
	s.mu.Lock()
	s.monthly = &m
	s.mu.Unlock()

	s.hub.Publish(sse.TopicAttendance, sse.Event{Event: EventMonthlyChanged, Data: &m})
}

// InvalidateMonthly drops the monthly totals so the next read fetches them again.
func (s *Store) InvalidateMonthly() {
	s.mu.Lock()
	s.monthly = nil
	s.mu.Unlock()

	s.hub.Publish(sse.TopicAttendance, sse.Event{Event: EventMonthlyChanged, Data: (*attendance.MonthlyWorkHours)(nil)})
}

// Clear drops both snapshots.
func (s *Store) Clear() {
	s.mu.Lock()
	s.workInfo = nil
	s.monthly = nil
	s.mu.Unlock()

	s.publishWorkInfo(nil)
	s.hub.Publish(sse.TopicAttendance, sse.Event{Event: EventMonthlyChanged, Data: (*attendance.MonthlyWorkHours)(nil)})
}

func (s *Store) publishWorkInfo(info *attendance.WorkInfo) {
	s.hub.Publish(sse.TopicAttendance, sse.Event{
		Event: EventWorkInfoChanged,
		Data:  WorkInfoEvent{WorkInfo: info, Icon: IconFor(info)},
	})
}

// IconFor is the tray icon hint: active only while clocked in and not yet out.
func IconFor(info *attendance.WorkInfo) string {
	if info != nil && info.IsWorking() {
		return IconActive
	}
	return IconInactive
}
