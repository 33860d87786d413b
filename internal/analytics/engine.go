package analytics

import (
	"github.com/sagehft/sage/internal/fixedpoint"
	"github.com/sagehft/sage/internal/obs"
	"github.com/sagehft/sage/internal/tsc"
)

// MaxSymbols bounds the per-symbol slot array; must be a power of two.
const MaxSymbols = 256

// Engine owns one SymbolState per slot plus the shared latency/metrics
// instrumentation for a single ADE worker. Slots are created once at
// construction and never destroyed; only the owning worker goroutine
// mutates them.
type Engine struct {
	slots      [MaxSymbols]*SymbolState
	cfg        SymbolConfig
	calibrator tsc.Calibrator
	metrics    *obs.Metrics
	latency    EndToEndTracker
}

// NewEngine constructs an engine with every slot pre-allocated using
// cfg, and cal as the processing-latency calibrator.
func NewEngine(cfg SymbolConfig, cal tsc.Calibrator, metrics *obs.Metrics) *Engine {
	e := &Engine{cfg: cfg, calibrator: cal, metrics: metrics}
	for i := range e.slots {
		e.slots[i] = NewSymbolState(cfg)
	}
	return e
}

// slot returns the slot for symbolID, masked into [0, MaxSymbols).
// Upstream ingress validation is the only guard against distinct
// external symbols aliasing into the same slot; Engine itself performs
// no range check.
func (e *Engine) slot(symbolID uint32) *SymbolState {
	return e.slots[symbolID&(MaxSymbols-1)]
}

// Slot exposes a symbol's accumulators for read-only inspection
// (reporting, tests).
func (e *Engine) Slot(symbolID uint32) *SymbolState {
	return e.slot(symbolID)
}

// OnTick processes one market tick for symbolID. tsExternalNs is the
// exchange-supplied timestamp used for the exchange-to-decision
// latency measurement. Exactly one calibrated start/end pair is taken
// per call and fed into the processing histogram — preserving only one
// measurement per tick, not a second recomputed delta.
func (e *Engine) OnTick(symbolID uint32, price, volume fixedpoint.Value, tsExternalNs uint64) Signal {
	start := e.calibrator.Now()

	if tsExternalNs > 0 {
		now := uint64(start)
		if now > tsExternalNs {
			e.latency.ObserveExchangeToDecision(now - tsExternalNs)
		}
	}

	sig := e.slot(symbolID).Observe(price, volume)

	end := e.calibrator.Now()
	e.latency.ObserveProcessing(end - start)

	return sig
}

// ObserveQueueWait records an ADE input-ring enqueue/dequeue delta.
func (e *Engine) ObserveQueueWait(ns int64) {
	e.latency.ObserveQueueWait(ns)
}

// LatencySummary returns the current end-to-end latency summary.
func (e *Engine) LatencySummary() EndToEndSummary {
	return e.latency.Summary()
}

// Metrics returns the engine's shared metrics container.
func (e *Engine) Metrics() *obs.Metrics {
	return e.metrics
}
