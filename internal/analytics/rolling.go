// Package analytics implements SAGE's per-symbol analytics core (ADE):
// rolling and exponentially-weighted statistics, volatility-regime
// detection, winsorization, adaptive windowing, latency histograms, and
// mean-reversion signal generation.
package analytics

import "github.com/sagehft/sage/internal/fixedpoint"

// RollingStats maintains running sum and sum-of-squares over the last N
// samples in a circular buffer, N a power of two. Eviction on overflow
// subtracts the departing sample and its square so mean/variance stay
// O(1) per update.
type RollingStats struct {
	window []fixedpoint.Value
	mask   int
	head   int
	count  int

	sum   fixedpoint.Value
	sumSq fixedpoint.Value
}

// NewRollingStats allocates a rolling window of the given power-of-two
// capacity.
func NewRollingStats(capacity int) *RollingStats {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("analytics: rolling window capacity must be a power of two")
	}
	return &RollingStats{
		window: make([]fixedpoint.Value, capacity),
		mask:   capacity - 1,
	}
}

// Update folds a new sample into the window, evicting the oldest sample
// once the window is full.
func (r *RollingStats) Update(x fixedpoint.Value) {
	idx := r.head & r.mask
	if r.count == len(r.window) {
		old := r.window[idx]
		r.sum = fixedpoint.Sub(r.sum, old)
		r.sumSq = fixedpoint.Sub(r.sumSq, fixedpoint.Mul(old, old))
	} else {
		r.count++
	}
	r.window[idx] = x
	r.sum = fixedpoint.Add(r.sum, x)
	r.sumSq = fixedpoint.Add(r.sumSq, fixedpoint.Mul(x, x))
	r.head++
}

// Count returns the number of samples currently held.
func (r *RollingStats) Count() int { return r.count }

// Mean returns sum/count, or zero if no samples have been observed.
func (r *RollingStats) Mean() fixedpoint.Value {
	if r.count == 0 {
		return fixedpoint.Zero
	}
	return fixedpoint.Value(int64(r.sum) / int64(r.count))
}

// Variance returns sum_sq/count - mean^2, floored at zero to absorb
// fixed-point rounding noise that would otherwise produce a tiny
// negative variance.
func (r *RollingStats) Variance() fixedpoint.Value {
	if r.count == 0 {
		return fixedpoint.Zero
	}
	meanSq := fixedpoint.Mul(r.Mean(), r.Mean())
	meanOfSq := fixedpoint.Value(int64(r.sumSq) / int64(r.count))
	v := fixedpoint.Sub(meanOfSq, meanSq)
	if v < 0 {
		return fixedpoint.Zero
	}
	return v
}

// StdDev returns the integer-Newton-Raphson square root of Variance.
func (r *RollingStats) StdDev() fixedpoint.Value {
	return fixedpoint.Sqrt(r.Variance())
}

// ZScore returns (x-mean)/stddev, or zero when stddev is zero (the
// zero-variance numerical guard: a flat window carries no signal).
func (r *RollingStats) ZScore(x fixedpoint.Value) fixedpoint.Value {
	sd := r.StdDev()
	if sd == 0 {
		return fixedpoint.Zero
	}
	return fixedpoint.Div(fixedpoint.Sub(x, r.Mean()), sd)
}
