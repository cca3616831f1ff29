// Package optimistic applies a local change before the backend confirms it
// and restores the previous value when confirmation fails.
package optimistic

import (
	"context"
	"fmt"

	"github.com/colonyops/standup/internal/core/notify"
)

// Update describes one optimistic mutation over a value of type T.
type Update[T any] struct {
	// Source and Action label the failure notification, e.g. "focus" and
	// "set status".
	Source string
	Action string

	// Snapshot captures the state Apply is about to change.
	Snapshot func() T
	// Apply makes the change visible locally.
	Apply func()
	// Commit confirms the change with the backend.
	Commit func(ctx context.Context) error
	// Restore puts the snapshot back after a failed Commit.
	Restore func(T)
}

// Run snapshots, applies, then commits. When Commit fails the snapshot is
// restored, the failure is reported, and the wrapped error returned.
// A nil reporter skips the notification.
func Run[T any](ctx context.Context, r notify.Reporter, u Update[T]) error {
	prev := u.Snapshot()
	u.Apply()

	if err := u.Commit(ctx); err != nil {
		u.Restore(prev)
		if r != nil {
			r.Errorf(u.Source, "%s failed: %v", u.Action, err)
		}
		return fmt.Errorf("%s: %w", u.Action, err)
	}

	return nil
}
