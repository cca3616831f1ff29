// Package kv defines the key-value store the dashboard caches backend
// responses in.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned (wrapped) when a key is missing or expired.
var ErrNotFound = errors.New("kv: key not found")

// KV is a persistent key-value store with optional per-key expiry.
// Values are JSON-serializable.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	ListKeys(ctx context.Context) ([]string, error)
}
