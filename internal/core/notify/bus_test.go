package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu    sync.Mutex
	items []Notification
}

func (m *memStore) Save(_ context.Context, n Notification) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = int64(len(m.items) + 1)
	m.items = append(m.items, n)
	return n.ID, nil
}

func (m *memStore) List(_ context.Context, limit int) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notification, 0, len(m.items))
	for i := len(m.items) - 1; i >= 0; i-- {
		out = append(out, m.items[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	return nil
}

func TestBus_PublishDispatchesWithID(t *testing.T) {
	store := &memStore{}
	bus := NewBus(store)

	var got []Notification
	bus.Subscribe(func(n Notification) { got = append(got, n) })

	bus.Errorf("calendar", "update %q failed", "Ship v2")
	bus.Infof("focus", "refreshed")

	require.Len(t, got, 2)
	assert.Equal(t, LevelError, got[0].Level)
	assert.Equal(t, "calendar", got[0].Source)
	assert.Equal(t, `update "Ship v2" failed`, got[0].Message)
	assert.Equal(t, int64(1), got[0].ID)
	assert.False(t, got[0].CreatedAt.IsZero())
	assert.Equal(t, LevelInfo, got[1].Level)
}

func TestBus_History(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(&memStore{})

	bus.Warnf("focus", "one")
	bus.Warnf("focus", "two")
	bus.Warnf("focus", "three")

	items, err := bus.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "three", items[0].Message)

	require.NoError(t, bus.Clear(ctx))
	items, err = bus.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBus_NilStore(t *testing.T) {
	bus := NewBus(nil)

	called := false
	bus.Subscribe(func(Notification) { called = true })
	bus.Errorf("focus", "boom")

	assert.True(t, called)
	items, err := bus.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, items)
}
