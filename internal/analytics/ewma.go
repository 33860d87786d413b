package analytics

import (
	"math"

	"github.com/sagehft/sage/internal/fixedpoint"
)

// AlphaScale is the implied scale for EWMA smoothing factors: alpha is
// stored as an integer in [0, AlphaScale].
const AlphaScale int64 = 1e4

// HalfLifeToAlpha converts a half-life (in ticks) to a smoothing factor
// alpha = 1 - exp(-ln(2)/H), scaled by AlphaScale. This is an init-path
// conversion; the float math never runs on a hot path.
func HalfLifeToAlpha(halfLife float64) int64 {
	if halfLife <= 0 {
		return AlphaScale
	}
	alpha := 1 - math.Exp(-math.Ln2/halfLife)
	scaled := int64(alpha * float64(AlphaScale))
	if scaled < 1 {
		scaled = 1
	}
	if scaled > AlphaScale {
		scaled = AlphaScale
	}
	return scaled
}

// EWMAStats tracks an exponentially-weighted mean and variance with a
// fixed smoothing factor. The first observed sample seeds the mean
// directly with zero variance; there is no warm-up blending on sample 1.
type EWMAStats struct {
	alpha  int64
	mean   fixedpoint.Value
	variance fixedpoint.Value
	seeded bool
}

// NewEWMAStats constructs a tracker for the given half-life in ticks.
func NewEWMAStats(halfLife float64) *EWMAStats {
	return &EWMAStats{alpha: HalfLifeToAlpha(halfLife)}
}

// Update folds a new sample in.
func (e *EWMAStats) Update(x fixedpoint.Value) {
	if !e.seeded {
		e.mean = x
		e.variance = fixedpoint.Zero
		e.seeded = true
		return
	}

	prevMean := e.mean
	diff := fixedpoint.Sub(x, prevMean)
	e.mean = fixedpoint.Add(prevMean, fixedpoint.Value(e.alpha*int64(diff)/AlphaScale))

	devSq := fixedpoint.Mul(diff, diff)
	alphaDevSq := fixedpoint.Value(e.alpha * int64(devSq) / AlphaScale)
	blended := fixedpoint.Add(e.variance, alphaDevSq)
	e.variance = fixedpoint.Value((AlphaScale - e.alpha) * int64(blended) / AlphaScale)
}

// Mean returns the current EWMA mean.
func (e *EWMAStats) Mean() fixedpoint.Value { return e.mean }

// Variance returns the current EWMA variance.
func (e *EWMAStats) Variance() fixedpoint.Value { return e.variance }

// StdDev returns the integer square root of Variance.
func (e *EWMAStats) StdDev() fixedpoint.Value { return fixedpoint.Sqrt(e.variance) }

// Seeded reports whether at least one sample has been observed.
func (e *EWMAStats) Seeded() bool { return e.seeded }

// ZScore returns (x-mean)/stddev, or zero when stddev is zero.
func (e *EWMAStats) ZScore(x fixedpoint.Value) fixedpoint.Value {
	sd := e.StdDev()
	if sd == 0 {
		return fixedpoint.Zero
	}
	return fixedpoint.Div(fixedpoint.Sub(x, e.mean), sd)
}

// EMA is a lightweight exponentially-weighted scalar smoother with no
// variance tracking, used by the regime detector for vol and
// vol-of-vol.
type EMA struct {
	alpha  int64
	value  fixedpoint.Value
	seeded bool
}

// NewEMA constructs a scalar smoother for the given half-life in ticks.
func NewEMA(halfLife float64) *EMA {
	return &EMA{alpha: HalfLifeToAlpha(halfLife)}
}

// Update folds a new sample in and returns the updated value.
func (e *EMA) Update(x fixedpoint.Value) fixedpoint.Value {
	if !e.seeded {
		e.value = x
		e.seeded = true
		return e.value
	}
	diff := fixedpoint.Sub(x, e.value)
	e.value = fixedpoint.Add(e.value, fixedpoint.Value(e.alpha*int64(diff)/AlphaScale))
	return e.value
}

// Value returns the current smoothed value.
func (e *EMA) Value() fixedpoint.Value { return e.value }
