package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const (
	DefaultTitle = "UKOnnect"
	DefaultBody  = "Anda memiliki notifikasi baru"
)

type Notification struct {
	Title string
	Body  string
}

// Sink receives user-facing output: persistent local notifications and
// short-lived messages.
type Sink interface {
	Notify(ctx context.Context, n Notification)
	Toast(msg string)
}

// LogSink writes everything to a logger. The CLI uses it as its display.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Notify(_ context.Context, n Notification) {
	if n.Title == "" {
		n.Title = DefaultTitle
	}
	if n.Body == "" {
		n.Body = DefaultBody
	}
	s.log.Info(n.Body, zap.String("title", n.Title))
}

func (s *LogSink) Toast(msg string) {
	s.log.Info(msg)
}

// Recorder keeps everything it receives. Safe for concurrent use.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
	toasts        []string
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	r.notifications = append(r.notifications, n)
	r.mu.Unlock()
}

func (r *Recorder) Toast(msg string) {
	r.mu.Lock()
	r.toasts = append(r.toasts, msg)
	r.mu.Unlock()
}

func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

func (r *Recorder) Toasts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.toasts...)
}
