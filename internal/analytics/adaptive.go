package analytics

import "github.com/sagehft/sage/internal/fixedpoint"

// AdaptiveWindow derives an effective window length from a base window,
// a floor, and the ratio of current to baseline variance. Baseline
// variance is tracked by a slow 99:1 EWMA so the window only adapts to
// sustained volatility shifts, not single-tick noise.
type AdaptiveWindow struct {
	base     int
	min      int
	volScale fixedpoint.Value
	baseline fixedpoint.Value
}

// NewAdaptiveWindow constructs a window adaptor. volScale controls how
// strongly the variance ratio deforms the effective window; One (1.0)
// is a neutral default.
func NewAdaptiveWindow(base, min int, volScale fixedpoint.Value) *AdaptiveWindow {
	if volScale == 0 {
		volScale = fixedpoint.One
	}
	return &AdaptiveWindow{base: base, min: min, volScale: volScale}
}

// Update folds the current variance into the baseline and returns the
// effective window length clamped to [min, base].
func (a *AdaptiveWindow) Update(currentVar fixedpoint.Value) int {
	if a.baseline == 0 {
		a.baseline = currentVar
	} else {
		a.baseline = fixedpoint.Value((99*int64(a.baseline) + int64(currentVar)) / 100)
	}

	if a.baseline <= 0 {
		return a.base
	}

	r := fixedpoint.Div(currentVar, a.baseline)
	term := fixedpoint.Mul(r, a.volScale)
	denom := int64(fixedpoint.One) + int64(term)
	if denom <= 0 {
		return a.base
	}

	effective := int(int64(a.base) * fixedpoint.Scale / denom)
	if effective < a.min {
		return a.min
	}
	if effective > a.base {
		return a.base
	}
	return effective
}
