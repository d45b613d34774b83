// Package notify is the fire-and-forget message surface shown to shoppers
// and admins ("Order placed successfully!", "Failed to save product").
package notify

import (
	"sync"

	"go.uber.org/zap"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
)

// Notice is a single user-facing message. Action names an optional follow-up
// the client may offer, such as "View Cart".
type Notice struct {
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Action      string   `json:"action,omitempty"`
}

// Notifier accepts notices. Implementations must not block the caller.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Nop drops every notice.
var Nop Notifier = NotifierFunc(func(Notice) {})

// LogNotifier writes notices to a zap logger.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(n Notice) {
	fields := []zap.Field{
		zap.String("severity", string(n.Severity)),
		zap.String("title", n.Title),
	}
	if n.Description != "" {
		fields = append(fields, zap.String("description", n.Description))
	}
	if n.Severity == Error {
		l.logger.Warn("notice", fields...)
		return
	}
	l.logger.Info("notice", fields...)
}

// Recorder keeps every notice it receives. HTTP handlers use one per request
// to return notices in the response body.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Multi fans a notice out to several notifiers in order.
func Multi(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(n Notice) {
		for _, nt := range notifiers {
			if nt != nil {
				nt.Notify(n)
			}
		}
	})
}
