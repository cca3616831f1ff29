package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/standup/internal/core/notify"
)

type drainNotificationsMsg struct{}

// NotificationBuffer collects notifications published from service
// goroutines until the update loop drains them.
type NotificationBuffer struct {
	mu            sync.Mutex
	notifications []notify.Notification
	signal        chan struct{}
}

func NewNotificationBuffer() *NotificationBuffer {
	return &NotificationBuffer{signal: make(chan struct{}, 1)}
}

// Push queues n and wakes the waiting command, if any. It never blocks, so
// it is safe as a notify.Bus subscriber.
func (b *NotificationBuffer) Push(n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	b.mu.Lock()
	b.notifications = append(b.notifications, n)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Drain returns the queued notifications and empties the queue.
func (b *NotificationBuffer) Drain() []notify.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.notifications) == 0 {
		return nil
	}
	out := b.notifications
	b.notifications = nil
	return out
}

// WaitForSignal returns a command that resolves once something is queued.
func (b *NotificationBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		<-b.signal
		return drainNotificationsMsg{}
	}
}
