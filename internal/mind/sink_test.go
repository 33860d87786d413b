package mind

import (
	"testing"

	"github.com/sagehft/sage/internal/envelope"
	"github.com/sagehft/sage/internal/fixedpoint"
	"github.com/sagehft/sage/internal/ring"
)

func TestPassThroughForwardsSignalUnmodified(t *testing.T) {
	out := ring.New(16)
	p := NewPassThrough(out)

	e := envelope.CreateSignal(1, 1, envelope.Signal{
		SymbolID:   7,
		Confidence: fixedpoint.Value(500_000),
		Direction:  envelope.DirectionLong,
		StrategyID: 1,
	})

	if err := p.Submit(e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got envelope.MessageEnvelope
	if !out.TryPop(&got) {
		t.Fatalf("expected a forwarded envelope on the ring")
	}
	sig := got.AsSignal()
	if sig.SymbolID != 7 || sig.Direction != envelope.DirectionLong {
		t.Fatalf("forwarded signal mismatch: %+v", sig)
	}

	forwarded, dropped := p.Counts()
	if forwarded != 1 || dropped != 0 {
		t.Fatalf("counts = (%d, %d), want (1, 0)", forwarded, dropped)
	}
}

func TestPassThroughReportsFullRing(t *testing.T) {
	out := ring.New(16)
	p := NewPassThrough(out)

	e := envelope.CreateSignal(1, 1, envelope.Signal{SymbolID: 1})
	for i := 0; i < out.Capacity(); i++ {
		if err := p.Submit(e); err != nil {
			t.Fatalf("unexpected error filling ring at %d: %v", i, err)
		}
	}
	if err := p.Submit(e); err == nil {
		t.Fatalf("expected error submitting to a full ring")
	}

	_, dropped := p.Counts()
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
}
