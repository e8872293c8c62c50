// Package notify carries user-facing notifications (toasts and banners) from
// the client components to whatever front end is showing them.
package notify

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a single toast.
type Notification struct {
	Level   Level
	Message string
	At      time.Time
}

// Notifier receives notifications. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(n Notification)
}

// Error sends an error toast.
func Error(n Notifier, message string) {
	send(n, LevelError, message)
}

// Success sends a success toast.
func Success(n Notifier, message string) {
	send(n, LevelSuccess, message)
}

// Info sends an informational toast.
func Info(n Notifier, message string) {
	send(n, LevelInfo, message)
}

func send(n Notifier, level Level, message string) {
	if n == nil {
		return
	}
	n.Notify(Notification{Level: level, Message: message, At: time.Now()})
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (l *LogNotifier) Notify(n Notification) {
	switch n.Level {
	case LevelError:
		l.logger.Error(n.Message)
	case LevelWarning:
		l.logger.Warn(n.Message)
	default:
		l.logger.Info(n.Message)
	}
}

// Queue buffers notifications until they are drained.
type Queue struct {
	mu    sync.Mutex
	items []Notification
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Notify implements Notifier.
func (q *Queue) Notify(n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
}

// Drain returns and clears the buffered notifications.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Len returns the number of buffered notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}

// Banner is a single dismissible message shown inline, for example above the
// dependency list. Showing a new message replaces the old one.
type Banner struct {
	mu      sync.Mutex
	message string
	visible bool
}

// Show displays message.
func (b *Banner) Show(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.message = message
	b.visible = true
}

// Dismiss hides the banner.
func (b *Banner) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.message = ""
	b.visible = false
}

// Message returns the current message and whether the banner is visible.
func (b *Banner) Message() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.message, b.visible
}
