package risk

import (
	"testing"

	"github.com/sagehft/sage/internal/fixedpoint"
	"github.com/sagehft/sage/internal/obs"
)

type zeroCalibrator struct{}

func (zeroCalibrator) Now() int64 { return 0 }

func newTestEngine(cfg Config) (*Engine, *PositionStore, *CircuitBreaker) {
	positions := &PositionStore{}
	breaker := &CircuitBreaker{}
	return NewEngine(cfg, breaker, positions, zeroCalibrator{}, nil), positions, breaker
}

// TestRiskRejection implements scenario 5: position limit 1,000,000,
// current position 900,000, signal with confidence*direction=+200,000
// must be rejected, the position store unchanged, reject counter 1.
func TestRiskRejection(t *testing.T) {
	cfg := Config{
		PositionLimit:  fixedpoint.Value(1_000_000),
		OrderSizeLimit: fixedpoint.Value(1_000_000_000),
		ExposureLimit:  fixedpoint.Value(1_000_000_000),
		LossLimit:      fixedpoint.Value(1_000_000_000),
	}
	engine, positions, _ := newTestEngine(cfg)
	engine.metrics = obs.NewMetrics()
	positions.SetPosition(7, fixedpoint.Value(900_000))

	decision := engine.Evaluate(SignalInput{SymbolID: 7, Confidence: fixedpoint.Value(200_000), Direction: 1})

	if decision.Approved {
		t.Fatalf("expected signal to be rejected")
	}
	if decision.Reason != DenyReasonPositionLimit {
		t.Fatalf("reason = %d, want DenyReasonPositionLimit", decision.Reason)
	}
	if got := positions.Position(7); got != fixedpoint.Value(900_000) {
		t.Fatalf("position store mutated after rejection: got %d, want unchanged 900000", got)
	}
	if got := engine.metrics.Snapshot().RiskReasonCounts[uint8(DenyReasonPositionLimit)]; got != 1 {
		t.Fatalf("reject counter = %d, want 1", got)
	}
}

func TestRiskApprovalUpdatesPositionAndExposure(t *testing.T) {
	cfg := Config{
		PositionLimit:  fixedpoint.Value(1_000_000),
		OrderSizeLimit: fixedpoint.Value(1_000_000),
		ExposureLimit:  fixedpoint.Value(1_000_000),
		LossLimit:      fixedpoint.Value(1_000_000),
	}
	engine, positions, _ := newTestEngine(cfg)

	decision := engine.Evaluate(SignalInput{SymbolID: 3, Confidence: fixedpoint.Value(50_000), Direction: 1})
	if !decision.Approved {
		t.Fatalf("expected approval, got deny reason %d", decision.Reason)
	}
	if got := positions.Position(3); got != fixedpoint.Value(50_000) {
		t.Fatalf("position = %d, want 50000", got)
	}
	if got := positions.TotalExposure(); got != fixedpoint.Value(50_000) {
		t.Fatalf("exposure = %d, want 50000", got)
	}
}

func TestTrippedCircuitBreakerDeniesImmediately(t *testing.T) {
	cfg := Config{
		PositionLimit:  fixedpoint.Value(1_000_000),
		OrderSizeLimit: fixedpoint.Value(1_000_000),
		ExposureLimit:  fixedpoint.Value(1_000_000),
		LossLimit:      fixedpoint.Value(1_000_000),
	}
	engine, _, breaker := newTestEngine(cfg)
	breaker.Trip(ReasonManualHalt)

	decision := engine.Evaluate(SignalInput{SymbolID: 1, Confidence: fixedpoint.Value(1), Direction: 1})
	if decision.Approved || decision.Reason != DenyReasonCircuitBreaker {
		t.Fatalf("expected immediate circuit-breaker deny, got %+v", decision)
	}
}

func TestLossLimitBreachDenies(t *testing.T) {
	cfg := Config{
		PositionLimit:  fixedpoint.Value(1_000_000),
		OrderSizeLimit: fixedpoint.Value(1_000_000),
		ExposureLimit:  fixedpoint.Value(1_000_000),
		LossLimit:      fixedpoint.Value(100),
	}
	engine, positions, _ := newTestEngine(cfg)
	positions.SetDailyPnL(fixedpoint.Value(-500))

	decision := engine.Evaluate(SignalInput{SymbolID: 1, Confidence: fixedpoint.Value(1), Direction: 1})
	if decision.Approved || decision.Reason != DenyReasonLossLimit {
		t.Fatalf("expected loss-limit deny, got %+v", decision)
	}
}

func TestCircuitBreakerTripAndReset(t *testing.T) {
	var b CircuitBreaker
	if b.IsTripped() {
		t.Fatalf("fresh breaker should not be tripped")
	}
	b.Trip(ReasonLatencySpike)
	if !b.IsTripped() || b.Reason() != ReasonLatencySpike {
		t.Fatalf("expected tripped with ReasonLatencySpike")
	}
	b.Reset()
	if b.IsTripped() || b.Reason() != ReasonNone {
		t.Fatalf("expected reset breaker")
	}
}
