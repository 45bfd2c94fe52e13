package attendance

import (
	"context"
	"sync"
	"time"

	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/domain/notification"
	"github.com/ozo-extended/ozo-agent/internal/domain/settings"
	"github.com/ozo-extended/ozo-agent/internal/pkg/flight"
	"github.com/ozo-extended/ozo-agent/internal/pkg/sse"
)

func strPtr(s string) *string { return &s }

// fakeSession plays the portal. clockIn/clockOut hold today's cells.
type fakeSession struct {
	mu       sync.Mutex
	clockIn  *string
	clockOut *string
	monthly  attendance.MonthlyWorkHours
	authErr  error

	// block, when set, holds ClockIn until it is closed.
	block   chan struct{}
	entered chan struct{}

	// readBlock, when set, holds the next ClockInTime until it is closed.
	readBlock   chan struct{}
	readEntered chan struct{}

	clockInCalls  int
	clockOutCalls int
	closed        int
}

func (s *fakeSession) Authenticate(context.Context) error { return s.authErr }

func (s *fakeSession) ClockInTime(context.Context) (*string, error) {
	s.mu.Lock()
	block := s.readBlock
	s.readBlock = nil
	s.mu.Unlock()
	if block != nil {
		close(s.readEntered)
		<-block
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clockIn, nil
}

func (s *fakeSession) setTimes(in, out *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clockIn, s.clockOut = in, out
}

func (s *fakeSession) ClockOutTime(context.Context) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clockOut, nil
}

func (s *fakeSession) ClockIn(context.Context) (attendance.ClockResult, error) {
	if s.entered != nil {
		close(s.entered)
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clockInCalls++
	if s.clockIn != nil {
		return attendance.ClockResult{Time: *s.clockIn}, attendance.ErrAlreadyClockedIn
	}
	s.clockIn = strPtr("09:01")
	return attendance.ClockResult{Time: "09:01"}, nil
}

func (s *fakeSession) ClockOut(_ context.Context, opts attendance.ClockOutOptions) (attendance.ClockResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clockIn == nil {
		return attendance.ClockResult{}, attendance.ErrNotClockedIn
	}
	if s.clockOut != nil && !opts.Force {
		return attendance.ClockResult{Time: *s.clockOut}, attendance.ErrAlreadyClockedOut
	}
	s.clockOutCalls++
	s.clockOut = strPtr("18:05")
	res := attendance.ClockResult{Time: "18:05"}
	if opts.AutoFill {
		res.Allocations = []attendance.TaskAllocation{
			{RowID: "row1", Minutes: 244, Label: "Design"},
			{RowID: "row2", Minutes: 240, Label: "Review"},
		}
	}
	return res, nil
}

func (s *fakeSession) MonthlyWorkHours(context.Context) (attendance.MonthlyWorkHours, error) {
	return s.monthly, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// fakeOpener hands out the same session and tracks how many are open at once.
type fakeOpener struct {
	session *fakeSession
	openErr error

	mu      sync.Mutex
	opens   int
	open    int
	maxOpen int
	last    attendance.OpenOptions
}

type countedSession struct {
	*fakeSession
	opener *fakeOpener
	once   sync.Once
}

func (c *countedSession) Close() error {
	c.once.Do(func() {
		c.opener.mu.Lock()
		c.opener.open--
		c.opener.mu.Unlock()
	})
	return c.fakeSession.Close()
}

func (o *fakeOpener) Open(_ context.Context, opts attendance.OpenOptions) (attendance.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return nil, o.openErr
	}
	o.opens++
	o.open++
	if o.open > o.maxOpen {
		o.maxOpen = o.open
	}
	o.last = opts
	return &countedSession{fakeSession: o.session, opener: o}, nil
}

func (o *fakeOpener) counts() (opens, maxOpen int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens, o.maxOpen
}

type fakeSettings struct {
	s settings.Settings
}

func (f *fakeSettings) Get(context.Context) settings.Settings { return f.s }

func configured() *fakeSettings {
	s := settings.Defaults()
	s.UserID = "taro@example.com"
	s.Password = "secret"
	return &fakeSettings{s: s}
}

type sentNotification struct {
	Type    notification.NotificationType
	Message string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *fakeNotifier) Notify(_ context.Context, t notification.NotificationType, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Type: t, Message: message})
}

func (n *fakeNotifier) SetUIVisible(bool) {}
func (n *fakeNotifier) UIVisible() bool   { return false }
func (n *fakeNotifier) Subscribe(context.Context) (<-chan notification.SSEEvent, func()) {
	return nil, func() {}
}
func (n *fakeNotifier) Stop() {}

func (n *fakeNotifier) types() []notification.NotificationType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.NotificationType, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Type)
	}
	return out
}

type fakeChecker struct{ offline bool }

func (c fakeChecker) Online(context.Context) bool { return !c.offline }

type fakeHistory struct {
	mu      sync.Mutex
	entries []attendance.HistoryEntry
}

func (h *fakeHistory) Record(_ context.Context, e attendance.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
	return nil
}

func (h *fakeHistory) ListRecent(_ context.Context, limit int) ([]attendance.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit > len(h.entries) {
		limit = len(h.entries)
	}
	return h.entries[:limit], nil
}

type fixture struct {
	svc      *AttendanceServiceImpl
	store    *Store
	hub      *sse.Hub
	session  *fakeSession
	opener   *fakeOpener
	settings *fakeSettings
	notifier *fakeNotifier
	history  *fakeHistory
	checker  *fakeChecker
}

func newFixture() *fixture {
	hub := sse.NewHub()
	store := NewStore(hub)
	session := &fakeSession{monthly: attendance.MonthlyWorkHours{
		WorkedTime: "120:00", RequiredTime: "152:00", DiffTime: "-32:00", DailyDiffTime: "-04:00",
	}}
	f := &fixture{
		store:    store,
		hub:      hub,
		session:  session,
		opener:   &fakeOpener{session: session},
		settings: configured(),
		notifier: &fakeNotifier{},
		history:  &fakeHistory{},
		checker:  &fakeChecker{},
	}
	f.svc = NewAttendanceService(store, f.opener, flight.NewCoordinator(), f.settings, f.notifier, f.checker, f.history, Config{AutoClockInWait: time.Second})
	f.svc.now = func() time.Time { return time.Date(2026, 10, 16, 9, 1, 0, 0, time.Local) }
	return f
}
