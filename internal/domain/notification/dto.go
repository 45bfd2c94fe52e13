package notification

// VisibilityRequest is sent by the popup when it is shown or hidden.
type VisibilityRequest struct {
	Visible bool `json:"visible"`
}

// SSEEvent is a notification as streamed to subscribers.
type SSEEvent struct {
	Event string       `json:"event"`
	Data  Notification `json:"data"`
}
