package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Subscriber is a callback invoked when a notification is published.
type Subscriber func(Notification)

// Reporter is the narrow interface services use to surface failures.
type Reporter interface {
	Errorf(source, format string, args ...any)
}

// Bus dispatches notifications to subscribers inline and persists them to a
// Store. It is safe for concurrent use.
type Bus struct {
	store       Store
	subscribers []Subscriber
	mu          sync.Mutex
}

var _ Reporter = (*Bus)(nil)

// NewBus creates a notification bus backed by the given store.
// A nil store dispatches without persisting.
func NewBus(store Store) *Bus {
	return &Bus{store: store}
}

// Subscribe registers a callback that will be invoked on every Publish.
func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Publish persists n and dispatches it to all subscribers.
func (b *Bus) Publish(n Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if b.store != nil {
		id, err := b.store.Save(context.Background(), n)
		if err != nil {
			log.Error().Err(err).Str("message", n.Message).Msg("failed to persist notification")
		} else {
			n.ID = id
		}
	}

	b.mu.Lock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}

// Errorf publishes an error-level notification.
func (b *Bus) Errorf(source, format string, args ...any) {
	b.Publish(Notification{Level: LevelError, Source: source, Message: fmt.Sprintf(format, args...)})
}

// Warnf publishes a warning-level notification.
func (b *Bus) Warnf(source, format string, args ...any) {
	b.Publish(Notification{Level: LevelWarning, Source: source, Message: fmt.Sprintf(format, args...)})
}

// Infof publishes an info-level notification.
func (b *Bus) Infof(source, format string, args ...any) {
	b.Publish(Notification{Level: LevelInfo, Source: source, Message: fmt.Sprintf(format, args...)})
}

// History returns up to limit persisted notifications, newest first.
// A limit <= 0 returns everything. Returns nil without a store.
func (b *Bus) History(ctx context.Context, limit int) ([]Notification, error) {
	if b.store == nil {
		return nil, nil
	}
	return b.store.List(ctx, limit)
}

// Clear deletes all persisted notifications.
func (b *Bus) Clear(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	return b.store.Clear(ctx)
}
