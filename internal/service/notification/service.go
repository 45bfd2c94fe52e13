package notification

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ozo-extended/ozo-agent/internal/domain/notification"
	"github.com/ozo-extended/ozo-agent/internal/pkg/sse"
)

// Config holds notification service configuration
type Config struct {
	QueueSize int // default: 100
}

type service struct {
	hub       *sse.Hub
	config    Config
	uiVisible atomic.Bool

	queue  chan notification.Notification
	wg     sync.WaitGroup
	stopCh chan struct{}
	once   sync.Once
}

// NewNotificationService creates a new notification service with a background publisher
func NewNotificationService(hub *sse.Hub, cfg Config) notification.Service {
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 100
	}

	s := &service{
		hub:    hub,
		config: cfg,
		queue:  make(chan notification.Notification, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.worker()

	slog.Info("Notification service started", "queue_size", cfg.QueueSize)
	return s
}

// worker publishes queued notifications to SSE subscribers
func (s *service) worker() {
	defer s.wg.Done()

	for {
		select {
		case n := <-s.queue:
			s.publish(n)
		case <-s.stopCh:
			for {
				select {
				case n := <-s.queue:
					s.publish(n)
				default:
					return
				}
			}
		}
	}
}

func (s *service) publish(n notification.Notification) {
	s.hub.Publish(sse.TopicNotifications, sse.Event{
		Event: "notification",
		Data:  n,
	})
}

// Notify implements notification.Service.
func (s *service) Notify(ctx context.Context, t notification.NotificationType, message string) {
	if s.uiVisible.Load() {
		slog.Debug("Notification suppressed, popup visible", "type", t, "message", message)
		return
	}

	n := notification.Notification{
		ID:        uuid.New().String(),
		Type:      t,
		Title:     notification.AppName,
		Message:   message,
		CreatedAt: time.Now(),
	}

	select {
	case s.queue <- n:
	case <-ctx.Done():
	default:
		slog.Warn("Notification queue full, dropping", "type", t)
	}
}

// SetUIVisible implements notification.Service.
func (s *service) SetUIVisible(visible bool) {
	s.uiVisible.Store(visible)
}

// UIVisible implements notification.Service.
func (s *service) UIVisible() bool {
	return s.uiVisible.Load()
}

// Subscribe implements notification.Service.
func (s *service) Subscribe(ctx context.Context) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(sse.TopicNotifications)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				if n, ok := event.Data.(notification.Notification); ok {
					select {
					case out <- notification.SSEEvent{Event: event.Event, Data: n}:
					case <-ctx.Done():
						return
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop gracefully stops the notification service
func (s *service) Stop() {
	s.once.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("Notification service stopped")
	})
}
