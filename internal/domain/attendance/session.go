package attendance

import (
	"context"
)

// ClockOutOptions controls a clock-out on the portal.
type ClockOutOptions struct {
	Force    bool
	AutoFill bool
}

// Session is one authenticated browser session against the portal.
// Every operation except Close requires a successful Authenticate.
type Session interface {
	Authenticate(ctx context.Context) error

	// ClockInTime returns nil when no clock-in has been recorded today.
	ClockInTime(ctx context.Context) (*string, error)

	// ClockOutTime returns nil when no clock-out has been recorded today.
	ClockOutTime(ctx context.Context) (*string, error)

	// ClockIn returns ErrAlreadyClockedIn with the existing time when nothing was clicked.
	ClockIn(ctx context.Context) (ClockResult, error)

	// ClockOut returns ErrNotClockedIn before clock-in, and ErrAlreadyClockedOut when
	// already out and Force is false. A man-hour failure is reported in ClockResult.ManHourErr.
	ClockOut(ctx context.Context, opts ClockOutOptions) (ClockResult, error)

	MonthlyWorkHours(ctx context.Context) (MonthlyWorkHours, error)

	// Close releases the browser. Calling it more than once is a no-op.
	Close() error
}

type OpenOptions struct {
	Headless    bool
	Credentials Credentials
}

// SessionOpener launches browser sessions.
type SessionOpener interface {
	Open(ctx context.Context, opts OpenOptions) (Session, error)
}
