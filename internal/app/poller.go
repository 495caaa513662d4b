package app

import (
	"context"
	"time"

	"github.com/seomate/seomate/internal/logging"
)

const maxBackoff = 5 * time.Minute

// Refresher is the background refresh hook the poller drives.
type Refresher interface {
	RefreshIdle(ctx context.Context) error
}

// StartPoller launches a goroutine that refreshes the session every interval,
// backing off exponentially while refreshes fail. It returns immediately and
// stops when ctx is cancelled. A non-positive interval disables polling.
func StartPoller(ctx context.Context, r Refresher, interval time.Duration, log *logging.Logger) {
	if interval <= 0 {
		return
	}
	if log == nil {
		log = logging.Nop()
	}
	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if err := r.RefreshIdle(ctx); err != nil {
				failures++
				log.Warn("background refresh failed", "failures", failures, "error", err)
			} else {
				failures = 0
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
