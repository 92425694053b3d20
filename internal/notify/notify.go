// Package notify collects user-facing outcome notifications raised by
// mutations and makes the recent history available to the console surfaces.
package notify

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parishlib/libris/internal/logging"
)

// Type classifies a notification for presentation.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeInfo    Type = "info"
)

// Notification is one user-facing outcome message.
type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// defaultHistorySize bounds the retained notification history.
const defaultHistorySize = 50

var (
	serviceLogger   *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	serviceLogger, _, err = logging.NewFileLogger("logs/notify.log", "notify", serviceLevelVar)
	if err != nil || serviceLogger == nil {
		serviceLogger = slog.New(slog.NewJSONHandler(io.Discard, nil)).With("service", "notify")
	}
}

// Service is a bounded in-memory notification sink. Thread-safe.
type Service struct {
	mu      sync.Mutex
	history []Notification
	max     int
	subs    map[int]chan Notification
	nextSub int
}

// NewService creates a notification service retaining up to max entries.
// A non-positive max uses the default.
func NewService(max int) *Service {
	if max <= 0 {
		max = defaultHistorySize
	}
	return &Service{
		max:  max,
		subs: make(map[int]chan Notification),
	}
}

// Success records a success notification.
func (s *Service) Success(message string) {
	s.add(TypeSuccess, message)
}

// Error records an error notification.
func (s *Service) Error(message string) {
	s.add(TypeError, message)
}

// Info records an informational notification.
func (s *Service) Info(message string) {
	s.add(TypeInfo, message)
}

func (s *Service) add(typ Type, message string) {
	n := Notification{
		ID:        uuid.NewString(),
		Type:      typ,
		Message:   message,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	s.history = append(s.history, n)
	if len(s.history) > s.max {
		s.history = s.history[len(s.history)-s.max:]
	}
	for _, ch := range s.subs {
		select {
		case ch <- n:
		default:
			// A slow subscriber drops the notification rather than blocking
			// the mutation path.
		}
	}
	s.mu.Unlock()

	serviceLogger.Debug("notification recorded", "type", string(typ), "message", message)
}

// Recent returns up to n notifications, newest first. n <= 0 returns the
// whole retained history.
func (s *Service) Recent(n int) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || n > len(s.history) {
		n = len(s.history)
	}
	out := make([]Notification, n)
	for i := 0; i < n; i++ {
		out[i] = s.history[len(s.history)-1-i]
	}
	return out
}

// Subscribe returns a channel receiving notifications as they are recorded,
// plus an unsubscribe function. Notifications are dropped for subscribers
// that fall behind.
func (s *Service) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, 16)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}
