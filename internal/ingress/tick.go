// Package ingress validates external market-tick input at the process
// boundary before it ever reaches a masked per-symbol lookup. It is the
// only place that knows the raw, unmasked symbol id; everything
// downstream trusts that id < MaxSymbols.
package ingress

import (
	"encoding/json"
	"math"

	"github.com/sagehft/sage/internal/errors"
	"github.com/sagehft/sage/internal/fixedpoint"
)

// MaxSymbols mirrors the bound enforced by the analytics and risk
// per-symbol slot arrays. It is duplicated here rather than imported so
// that ingress has no dependency on either package: it is a pure
// boundary validator.
const MaxSymbols = 256

// rawTick is the wire shape of a market-tick JSON message.
type rawTick struct {
	SymbolID uint32  `json:"symbol_id"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// Tick is a validated market tick, already converted to fixed-point and
// ready for handoff to the analytics engine.
type Tick struct {
	SymbolID uint32
	Price    fixedpoint.Value
	Quantity fixedpoint.Value
}

// Counters tracks ingress outcomes for observability.
type Counters struct {
	Accepted uint64
	Rejected uint64
}

// Validator parses and validates market-tick JSON payloads.
type Validator struct {
	accepted uint64
	rejected uint64
}

// Parse decodes and validates a single market-tick JSON payload.
// Non-finite or non-positive price/quantity, and any symbol id outside
// [0, MaxSymbols), are rejected. A symbol id equal to MaxSymbols is
// rejected, not aliased into slot 0.
func (v *Validator) Parse(raw []byte) (Tick, error) {
	var rt rawTick
	if err := json.Unmarshal(raw, &rt); err != nil {
		v.rejected++
		return Tick{}, errors.Wrap(err, "ingress: decode tick")
	}

	t, err := v.Validate(rt.SymbolID, rt.Price, rt.Quantity)
	if err != nil {
		return Tick{}, err
	}
	return t, nil
}

// Validate checks already-decoded fields and converts them to
// fixed-point, counting the outcome.
func (v *Validator) Validate(symbolID uint32, price, quantity float64) (Tick, error) {
	if !validPositiveFinite(price) || !validPositiveFinite(quantity) {
		v.rejected++
		return Tick{}, errors.ErrInvalidTick
	}
	if symbolID >= MaxSymbols {
		v.rejected++
		return Tick{}, errors.ErrUnknownSymbol
	}

	v.accepted++
	return Tick{
		SymbolID: symbolID,
		Price:    fixedpoint.FromFloat64(price),
		Quantity: fixedpoint.FromFloat64(quantity),
	}, nil
}

func validPositiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Snapshot returns the current accept/reject counters.
func (v *Validator) Snapshot() Counters {
	return Counters{Accepted: v.accepted, Rejected: v.rejected}
}
