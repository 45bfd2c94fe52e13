package notification

import (
	"context"
)

// Service delivers desktop notifications to the tray shell.
type Service interface {
	// Notify queues a notification. It is dropped while the popup is visible.
	Notify(ctx context.Context, t NotificationType, message string)

	// SetUIVisible records whether the popup is on screen.
	SetUIVisible(visible bool)

	UIVisible() bool

	// Subscribe streams queued notifications until ctx is done or cleanup is called.
	Subscribe(ctx context.Context) (<-chan SSEEvent, func())

	Stop()
}
