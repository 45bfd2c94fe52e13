package portal

import "errors"

var (
	// ErrLaunch means the browser engine is missing or could not start.
	ErrLaunch = errors.New("browser launch failed")
	// ErrAuth means sign-in did not complete.
	ErrAuth = errors.New("portal authentication failed")
	// ErrSessionState means an operation was called in the wrong session state.
	ErrSessionState = errors.New("invalid session state")
)
