package standup

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper removes expired cache entries.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Sweep periodically removes expired entries from s.
// It blocks until the context is cancelled.
func Sweep(ctx context.Context, s Sweeper, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepExpired(ctx)
			if err != nil {
				log.Debug().Err(err).Msg("kv sweep failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("removed", n).Msg("kv sweep")
			}
		}
	}
}
