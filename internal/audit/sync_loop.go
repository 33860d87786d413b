package audit

import (
	"context"
	"time"

	"github.com/sagehft/sage/internal/logging"
)

// DefaultSyncInterval is the default background sync cadence.
const DefaultSyncInterval = 50 * time.Millisecond

// RunSyncLoop calls Sync on interval until ctx is done, then issues one
// final Sync before returning. This is POE's only background thread;
// the hot-path worker that calls LogOrder/LogSent/etc. never blocks on
// disk itself.
func (l *Logger) RunSyncLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := l.Sync(); err != nil {
				logging.Errorf("audit: final sync failed, err: %+v", err)
			}
			return
		case <-ticker.C:
			if err := l.Sync(); err != nil {
				logging.Errorf("audit: periodic sync failed, err: %+v", err)
			}
		}
	}
}
