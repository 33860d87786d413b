// Package risk implements SAGE's risk management core (RME): a circuit
// breaker, a per-symbol position store, and a branchless four-predicate
// evaluator applied to every signal before it becomes an order request.
package risk

import "sync/atomic"

// BreakerReason enumerates why the circuit breaker tripped.
type BreakerReason uint8

const (
	ReasonNone BreakerReason = iota
	ReasonHighErrorRate
	ReasonLatencySpike
	ReasonDailyLossBreach
	ReasonManualHalt
)

// CircuitBreaker is a single atomic flag plus reason, settable from any
// worker. IsTripped is a relaxed-load fast path consulted on every
// signal.
type CircuitBreaker struct {
	tripped atomic.Bool
	reason  atomic.Uint32
}

// Trip sets the breaker with the given reason. Idempotent: once
// tripped, later Trip calls still update the reason, but do not need to
// be reset for IsTripped to keep reporting true.
func (b *CircuitBreaker) Trip(reason BreakerReason) {
	b.reason.Store(uint32(reason))
	b.tripped.Store(true)
}

// Reset clears the breaker, typically via manual operator intervention.
func (b *CircuitBreaker) Reset() {
	b.tripped.Store(false)
	b.reason.Store(uint32(ReasonNone))
}

// IsTripped is the hot-path fast check consulted before evaluating any
// signal.
func (b *CircuitBreaker) IsTripped() bool {
	return b.tripped.Load()
}

// Reason returns the current trip reason.
func (b *CircuitBreaker) Reason() BreakerReason {
	return BreakerReason(b.reason.Load())
}
