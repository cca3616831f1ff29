// Package notify is the user-visible error and status channel. The TUI shows
// notifications as toasts; the CLI prints them to stderr. Every notification
// is also kept in the local history.
package notify

import (
	"context"
	"time"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a single message for the user.
type Notification struct {
	ID        int64
	Level     Level
	Source    string // component that raised it, e.g. "focus" or "calendar"
	Message   string
	CreatedAt time.Time
}

// Store persists notifications to durable storage.
type Store interface {
	Save(ctx context.Context, n Notification) (int64, error)
	List(ctx context.Context, limit int) ([]Notification, error)
	Clear(ctx context.Context) error
}
