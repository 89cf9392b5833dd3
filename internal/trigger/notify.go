package trigger

import (
	"context"
	"log/slog"
)

// Notification is the single user-facing message produced by a press.
type Notification struct {
	Title   string
	Message string
	Outcome Outcome
}

// Success reports whether the press succeeded.
func (n Notification) Success() bool {
	return n.Outcome.Status == StatusSucceeded
}

// Notifier receives the notification of each completed press.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// LogNotifier writes notifications to a slog logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs n at info level on success and warn level on failure.
func (l LogNotifier) Notify(ctx context.Context, n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if n.Success() {
		logger.InfoContext(ctx, n.Message, "title", n.Title, "path", n.Outcome.Path)
		return
	}

	attrs := []any{"title", n.Title}
	if n.Outcome.Path != "" {
		attrs = append(attrs, "path", n.Outcome.Path)
	}
	if n.Outcome.Err != nil {
		attrs = append(attrs, "code", n.Outcome.Err.Code)
	}
	logger.WarnContext(ctx, n.Message, attrs...)
}
