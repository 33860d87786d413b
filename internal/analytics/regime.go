package analytics

import "github.com/sagehft/sage/internal/fixedpoint"

// Regime classifies the current volatility state of a symbol.
type Regime uint8

const (
	RegimeNormal Regime = iota
	RegimeHighVol
	RegimeLowVol
	RegimeChange
)

// String implements fmt.Stringer for log lines.
func (r Regime) String() string {
	switch r {
	case RegimeHighVol:
		return "HIGH_VOL"
	case RegimeLowVol:
		return "LOW_VOL"
	case RegimeChange:
		return "REGIME_CHANGE"
	default:
		return "NORMAL"
	}
}

// defaultRegimeThreshold is the default vol-of-vol/normal-vol ratio
// (scaled by fixedpoint.Scale) above which a regime-change event fires.
var defaultRegimeThreshold = fixedpoint.Value(2 * fixedpoint.Scale)

// RegimeDetector consumes a rolling variance each tick and classifies
// the current volatility regime, firing a regime-change event when
// vol-of-vol spikes relative to the smoothed normal volatility.
type RegimeDetector struct {
	normalVol *EMA
	volOfVol  *EMA
	threshold fixedpoint.Value
	prevVol   fixedpoint.Value
	hasPrev   bool
}

// NewRegimeDetector constructs a detector with vol half-life H and
// vol-of-vol half-life 2H.
func NewRegimeDetector(halfLife float64) *RegimeDetector {
	return &RegimeDetector{
		normalVol: NewEMA(halfLife),
		volOfVol:  NewEMA(2 * halfLife),
		threshold: defaultRegimeThreshold,
	}
}

// SetThreshold overrides the default regime-change threshold.
func (d *RegimeDetector) SetThreshold(t fixedpoint.Value) { d.threshold = t }

// Update folds a new variance sample in, returning the classified
// regime for this tick.
func (d *RegimeDetector) Update(variance fixedpoint.Value) Regime {
	vol := fixedpoint.Sqrt(variance)
	normalVol := d.normalVol.Update(vol)

	var volOfVolSample fixedpoint.Value
	if d.hasPrev {
		volOfVolSample = fixedpoint.Abs(fixedpoint.Sub(vol, d.prevVol))
	}
	d.prevVol = vol
	d.hasPrev = true

	volOfVol := d.volOfVol.Update(volOfVolSample)

	fired := false
	if normalVol > 0 {
		bound := fixedpoint.Mul(d.threshold, normalVol)
		fired = volOfVol > bound
	}

	switch {
	case fired:
		return RegimeChange
	case vol > fixedpoint.Value(2*fixedpoint.Scale):
		return RegimeHighVol
	case vol < fixedpoint.Value(fixedpoint.Scale/2):
		return RegimeLowVol
	default:
		return RegimeNormal
	}
}
