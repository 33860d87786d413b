package ingress

import (
	"math"
	"testing"
)

func TestValidateAcceptsPositiveFiniteTick(t *testing.T) {
	var v Validator
	tick, err := v.Validate(7, 100.5, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick.SymbolID != 7 {
		t.Fatalf("symbol id = %d, want 7", tick.SymbolID)
	}
	if snap := v.Snapshot(); snap.Accepted != 1 || snap.Rejected != 0 {
		t.Fatalf("counters = %+v, want accepted=1 rejected=0", snap)
	}
}

func TestValidateRejectsNonPositivePrice(t *testing.T) {
	var v Validator
	if _, err := v.Validate(1, 0, 1); err == nil {
		t.Fatalf("expected rejection for zero price")
	}
	if _, err := v.Validate(1, -5, 1); err == nil {
		t.Fatalf("expected rejection for negative price")
	}
}

func TestValidateRejectsNonFiniteFields(t *testing.T) {
	var v Validator
	if _, err := v.Validate(1, math.Inf(1), 1); err == nil {
		t.Fatalf("expected rejection for +Inf price")
	}
	if _, err := v.Validate(1, 1, math.NaN()); err == nil {
		t.Fatalf("expected rejection for NaN quantity")
	}
}

// TestValidateRejectsSymbolIDEqualToMaxSymbols covers the boundary case
// explicitly: a symbol id equal to MaxSymbols must be rejected, never
// aliased into slot 0 by a masking lookup downstream.
func TestValidateRejectsSymbolIDEqualToMaxSymbols(t *testing.T) {
	var v Validator
	_, err := v.Validate(MaxSymbols, 1, 1)
	if err == nil {
		t.Fatalf("expected rejection for symbol id == MaxSymbols")
	}
	snap := v.Snapshot()
	if snap.Rejected != 1 {
		t.Fatalf("rejected counter = %d, want 1", snap.Rejected)
	}
}

func TestValidateAcceptsHighestInRangeSymbolID(t *testing.T) {
	var v Validator
	if _, err := v.Validate(MaxSymbols-1, 1, 1); err != nil {
		t.Fatalf("unexpected rejection at MaxSymbols-1: %v", err)
	}
}

func TestParseDecodesJSONTick(t *testing.T) {
	var v Validator
	tick, err := v.Parse([]byte(`{"symbol_id":3,"price":101.25,"quantity":4.5}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick.SymbolID != 3 {
		t.Fatalf("symbol id = %d, want 3", tick.SymbolID)
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	var v Validator
	if _, err := v.Parse([]byte(`not json`)); err == nil {
		t.Fatalf("expected decode error")
	}
}
