package analytics

import "github.com/sagehft/sage/internal/fixedpoint"

// DefaultZMax is the default winsorization bound, 3.0 in fixed-point.
var DefaultZMax = fixedpoint.Value(3 * fixedpoint.Scale)

// Winsorizer caps z-scores at a configured bound, counting how many
// observations were clamped.
type Winsorizer struct {
	zMax     fixedpoint.Value
	outliers uint64
}

// NewWinsorizer constructs a capper with the given bound.
func NewWinsorizer(zMax fixedpoint.Value) *Winsorizer {
	if zMax <= 0 {
		zMax = DefaultZMax
	}
	return &Winsorizer{zMax: zMax}
}

// Cap clamps z to [-zMax, zMax], reporting whether it was an outlier.
// Capping is silent operational behavior, not an error: callers are
// expected to consult the returned bool only for counters/logging.
func (w *Winsorizer) Cap(z fixedpoint.Value) (capped fixedpoint.Value, isOutlier bool) {
	if fixedpoint.Abs(z) <= w.zMax {
		return z, false
	}
	w.outliers++
	return fixedpoint.Value(fixedpoint.Sign(z)) * w.zMax, true
}

// Outliers returns the running count of capped observations.
func (w *Winsorizer) Outliers() uint64 { return w.outliers }
