package settings

import (
	"context"

	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
)

// Reader exposes the current settings. Get falls back to defaults on a read failure.
type Reader interface {
	Get(ctx context.Context) Settings
}

// Service manages the user settings.
type Service interface {
	Reader

	Save(ctx context.Context, req SaveRequest) attendance.Result

	IsConfigured(ctx context.Context) bool

	// TestLogin signs in with the given credentials without saving them.
	TestLogin(ctx context.Context, req TestLoginRequest) attendance.Result

	// OnSave registers fn to run after every successful save.
	OnSave(fn func(Settings))
}
