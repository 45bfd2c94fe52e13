package attendance

import "errors"

// Attendance domain errors
var (
	// Portal state errors. These are expected outcomes, not failures.
	ErrAlreadyClockedIn  = errors.New("already clocked in")
	ErrNotClockedIn      = errors.New("not clocked in yet")
	ErrAlreadyClockedOut = errors.New("already clocked out")

	// Clock action errors
	ErrClockNotConfirmed = errors.New("clock time did not appear after the action")

	// Agent errors
	ErrBusy          = errors.New("another operation is in progress")
	ErrOffline       = errors.New("no network connection")
	ErrNotConfigured = errors.New("user id and password are not configured")
)
