package notification

import (
	"time"
)

// AppName is the title of every desktop notification.
const AppName = "ozo:extended"

// NotificationType identifies what triggered a notification.
type NotificationType string

const (
	TypeOperationStarted  NotificationType = "operation_started"
	TypeOperationFinished NotificationType = "operation_finished"
	TypeAutoClockIn       NotificationType = "auto_clock_in"
	TypeError             NotificationType = "error"
)

// Notification is one message for the desktop shell to display.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}
