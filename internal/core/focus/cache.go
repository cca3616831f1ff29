package focus

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/standup/internal/core/kv"
)

// CachedSource keeps the day's analysis in the local KV store so repeated
// launches on the same day skip the backend. Entries expire at local
// midnight, or earlier when ttl says so.
type CachedSource struct {
	next  Source
	cache *kv.TypedKV[Payload]
	user  string
	ttl   time.Duration
	log   zerolog.Logger
	now   func() time.Time
}

var _ Source = (*CachedSource)(nil)

// NewCachedSource wraps next with a cache scoped to user. A ttl of 0 caches
// until midnight.
func NewCachedSource(next Source, store kv.KV, user string, ttl time.Duration, log zerolog.Logger) *CachedSource {
	return &CachedSource{
		next:  next,
		cache: kv.Scoped[Payload](store, "standup"),
		user:  user,
		ttl:   ttl,
		log:   log.With().Str("component", "standup-cache").Logger(),
		now:   time.Now,
	}
}

// Today returns the cached analysis or asks the wrapped source.
func (c *CachedSource) Today(ctx context.Context) (Payload, bool, error) {
	key := c.key()

	p, err := c.cache.Get(ctx, key)
	if err == nil {
		c.log.Debug().Str("key", key).Msg("cache hit")
		return p, true, nil
	}
	if !errors.Is(err, kv.ErrNotFound) {
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	p, ok, err := c.next.Today(ctx)
	if err != nil || !ok {
		return p, ok, err
	}

	c.store(ctx, key, p)
	return p, true, nil
}

// Analyze runs a fresh analysis and replaces the cached one.
func (c *CachedSource) Analyze(ctx context.Context) (Payload, error) {
	p, err := c.next.Analyze(ctx)
	if err != nil {
		return Payload{}, err
	}

	c.store(ctx, c.key(), p)
	return p, nil
}

// Invalidate drops today's cached analysis.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, c.key())
}

func (c *CachedSource) store(ctx context.Context, key string, p Payload) {
	if err := c.cache.SetUntil(ctx, key, p, c.expiry()); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *CachedSource) key() string {
	return c.user + ":" + c.now().Format(time.DateOnly)
}

func (c *CachedSource) expiry() time.Time {
	now := c.now()
	y, m, d := now.Date()
	midnight := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())

	if c.ttl > 0 {
		if capped := now.Add(c.ttl); capped.Before(midnight) {
			return capped
		}
	}
	return midnight
}
