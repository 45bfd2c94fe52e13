package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ozo-extended/ozo-agent/internal/domain/notification"
	"github.com/ozo-extended/ozo-agent/internal/pkg/jwt"
	"github.com/ozo-extended/ozo-agent/internal/pkg/sse"
)

const keepaliveInterval = 30 * time.Second

// EventsHandler streams attendance changes and notifications to the UI.
type EventsHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventsHandlerImpl struct {
	hub          *sse.Hub
	notifService notification.Service
	jwtService   jwt.Service
}

func NewEventsHandler(hub *sse.Hub, notifService notification.Service, jwtService jwt.Service) EventsHandler {
	return &eventsHandlerImpl{
		hub:          hub,
		notifService: notifService,
		jwtService:   jwtService,
	}
}

// Stream implements EventsHandler. EventSource cannot send headers, so the
// short-lived SSE token comes in the query string.
func (h *eventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	clientID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	attendanceEvents, cleanupAttendance := h.hub.Subscribe(sse.TopicAttendance)
	defer cleanupAttendance()
	notifications, cleanupNotifications := h.notifService.Subscribe(r.Context())
	defer cleanupNotifications()

	slog.Debug("SSE client connected", "client_id", clientID)
	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"client_id\":%q}\n\n", clientID)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-attendanceEvents:
			if !ok {
				return
			}
			writeEvent(w, event.Event, event.Data)
			flusher.Flush()

		case event, ok := <-notifications:
			if !ok {
				return
			}
			writeEvent(w, event.Event, event.Data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			slog.Debug("SSE client disconnected", "client_id", clientID)
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("SSE payload encoding failed", "event", name, "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
}
