package risk

import (
	"time"

	"github.com/sagehft/sage/internal/fixedpoint"
	"github.com/sagehft/sage/internal/obs"
	"github.com/sagehft/sage/internal/tsc"
)

func nsToDuration(ns int64) time.Duration {
	if ns < 0 {
		return 0
	}
	return time.Duration(ns)
}

// DenyReason enumerates why a signal was denied. Values double as the
// index into obs.Metrics' risk-reason counters.
type DenyReason uint8

const (
	DenyReasonNone DenyReason = iota
	DenyReasonCircuitBreaker
	DenyReasonPositionLimit
	DenyReasonOrderSizeLimit
	DenyReasonExposureLimit
	DenyReasonLossLimit
)

// Config holds RME's static limits. OrderValue is a notional (scaled
// confidence times direction, on the same S=1e8 scale as price), not a
// share count, so all four predicates below stay dimensionally
// consistent with PositionLimit/OrderSizeLimit/ExposureLimit.
type Config struct {
	PositionLimit  fixedpoint.Value
	OrderSizeLimit fixedpoint.Value
	ExposureLimit  fixedpoint.Value
	LossLimit      fixedpoint.Value
}

// SignalInput is what RME evaluates per signal.
type SignalInput struct {
	SymbolID   uint32
	Confidence fixedpoint.Value
	Direction  int8 // -1, 0, +1
}

// Decision is RME's output for one signal.
type Decision struct {
	Approved   bool
	Reason     DenyReason
	OrderValue fixedpoint.Value
	NewPos     fixedpoint.Value
}

// Engine evaluates signals against Config, maintains the position
// store, and times every decision.
type Engine struct {
	cfg        Config
	breaker    *CircuitBreaker
	positions  *PositionStore
	calibrator tsc.Calibrator
	metrics    *obs.Metrics
}

// NewEngine constructs an RME evaluator.
func NewEngine(cfg Config, breaker *CircuitBreaker, positions *PositionStore, cal tsc.Calibrator, metrics *obs.Metrics) *Engine {
	return &Engine{cfg: cfg, breaker: breaker, positions: positions, calibrator: cal, metrics: metrics}
}

// Evaluate applies the circuit breaker fast path, then the four
// branchless predicates, approving only if the breaker is clear and all
// four hold. On approval, the position store and total exposure are
// updated; on denial, neither is touched. Every call is timed and
// folded into the risk-eval latency aggregate.
func (e *Engine) Evaluate(in SignalInput) Decision {
	start := e.calibrator.Now()
	d := e.evaluate(in)
	end := e.calibrator.Now()

	if e.metrics != nil {
		e.metrics.ObserveRiskEval(nsToDuration(end - start))
		if !d.Approved {
			e.metrics.IncRiskReason(uint8(d.Reason))
		}
	}
	return d
}

func (e *Engine) evaluate(in SignalInput) Decision {
	if e.breaker != nil && e.breaker.IsTripped() {
		return Decision{Reason: DenyReasonCircuitBreaker}
	}

	orderValue := fixedpoint.Value(int64(in.Confidence) * int64(in.Direction))
	current := e.positions.Position(in.SymbolID)
	newPos := fixedpoint.Add(current, orderValue)
	exposureAfter := fixedpoint.Add(e.positions.TotalExposure(), fixedpoint.Abs(orderValue))
	dailyPnL := e.positions.DailyPnL()

	withinPosition := fixedpoint.Abs(newPos) <= e.cfg.PositionLimit
	withinOrderSize := fixedpoint.Abs(orderValue) <= e.cfg.OrderSizeLimit
	withinExposure := exposureAfter <= e.cfg.ExposureLimit
	withinLoss := dailyPnL > fixedpoint.Neg(e.cfg.LossLimit)

	approved := withinPosition && withinOrderSize && withinExposure && withinLoss

	d := Decision{OrderValue: orderValue, NewPos: newPos}
	switch {
	case approved:
		d.Approved = true
		e.positions.SetPosition(in.SymbolID, newPos)
		e.positions.AddExposure(fixedpoint.Abs(orderValue))
	case !withinPosition:
		d.Reason = DenyReasonPositionLimit
	case !withinOrderSize:
		d.Reason = DenyReasonOrderSizeLimit
	case !withinExposure:
		d.Reason = DenyReasonExposureLimit
	case !withinLoss:
		d.Reason = DenyReasonLossLimit
	}
	return d
}
