package risk

import (
	"context"
	"time"
)

// Monitor is the background loop that watches daily PnL and trips the
// circuit breaker on a loss-limit breach. It runs on its own ticker,
// outside RME's hot evaluate path.
type Monitor struct {
	positions *PositionStore
	breaker   *CircuitBreaker
	lossLimit int64
}

// NewMonitor constructs a background loss monitor.
func NewMonitor(positions *PositionStore, breaker *CircuitBreaker, lossLimit int64) *Monitor {
	return &Monitor{positions: positions, breaker: breaker, lossLimit: lossLimit}
}

// Run polls daily PnL on interval until ctx is done, tripping the
// breaker the first time daily_pnl < -loss_limit.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if int64(m.positions.DailyPnL()) < -m.lossLimit {
				m.breaker.Trip(ReasonDailyLossBreach)
			}
		}
	}
}
