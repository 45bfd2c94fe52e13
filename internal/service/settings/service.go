package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/domain/settings"
	"github.com/ozo-extended/ozo-agent/internal/pkg/flight"
	"github.com/ozo-extended/ozo-agent/internal/pkg/netcheck"
	attendanceService "github.com/ozo-extended/ozo-agent/internal/service/attendance"
)

type SettingsServiceImpl struct {
	repo    settings.Repository
	opener  attendance.SessionOpener
	coord   *flight.Coordinator
	network netcheck.Checker

	mu    sync.Mutex
	hooks []func(settings.Settings)
}

func NewSettingsService(repo settings.Repository, opener attendance.SessionOpener, coord *flight.Coordinator, network netcheck.Checker) *SettingsServiceImpl {
	return &SettingsServiceImpl{
		repo:    repo,
		opener:  opener,
		coord:   coord,
		network: network,
	}
}

// Get implements settings.Reader.
func (s *SettingsServiceImpl) Get(ctx context.Context) settings.Settings {
	cfg, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, settings.ErrSettingsCorrupt) {
			slog.Warn("Settings file is corrupt, using defaults", "error", err)
		} else {
			slog.Error("Failed to load settings, using defaults", "error", err)
		}
	}
	return cfg
}

// Save implements settings.Service. The stored password survives only when
// the request sets KEEP_PASSWORD; otherwise the document is replaced as sent.
func (s *SettingsServiceImpl) Save(ctx context.Context, req settings.SaveRequest) attendance.Result {
	if err := req.Validate(); err != nil {
		return attendance.Fail(fmt.Sprintf("Invalid settings: %v", err))
	}

	next := req.ToSettings()
	if req.KeepPassword {
		next.Password = s.Get(ctx).Password
	}

	if err := s.repo.Save(ctx, next); err != nil {
		slog.Error("Failed to save settings", "error", err)
		return attendance.Fail(fmt.Sprintf("Failed to save settings: %v", err))
	}
	slog.Info("Settings saved",
		"configured", next.IsConfigured(),
		"headless", next.HeadlessMode,
		"auto_clock_in", next.AutoClockIn,
		"auto_man_hour", next.AutoManHour,
	)

	s.mu.Lock()
	hooks := append([]func(settings.Settings){}, s.hooks...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(next)
	}

	return attendance.Ok("Settings saved.")
}

// IsConfigured implements settings.Service.
func (s *SettingsServiceImpl) IsConfigured(ctx context.Context) bool {
	return s.Get(ctx).IsConfigured()
}

// TestLogin implements settings.Service.
func (s *SettingsServiceImpl) TestLogin(ctx context.Context, req settings.TestLoginRequest) attendance.Result {
	if err := req.Validate(); err != nil {
		return attendance.Fail("Enter both USER_ID and PASSWORD.")
	}

	release, ok := s.coord.TryAcquire()
	if !ok {
		return attendance.Fail(attendanceService.MsgBusy)
	}
	defer release()

	if !s.network.Online(ctx) {
		return attendance.Fail(attendanceService.MsgOffline)
	}

	session, err := s.opener.Open(ctx, attendance.OpenOptions{
		Headless: s.Get(ctx).HeadlessMode,
		Credentials: attendance.Credentials{
			UserID:   req.UserID,
			Password: req.Password,
		},
	})
	if err != nil {
		slog.Error("Test login could not open a session", "error", err)
		return attendance.Fail(attendanceService.FailureMessage("Login test", err))
	}
	defer func() {
		if err := session.Close(); err != nil {
			slog.Warn("Failed to close portal session", "error", err)
		}
	}()

	if err := session.Authenticate(ctx); err != nil {
		slog.Info("Test login failed", "user_id", req.UserID, "error", err)
		return attendance.Fail(attendanceService.FailureMessage("Login test", err))
	}

	slog.Info("Test login succeeded", "user_id", req.UserID)
	return attendance.Ok("Login succeeded.")
}

// OnSave implements settings.Service.
func (s *SettingsServiceImpl) OnSave(fn func(settings.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}
