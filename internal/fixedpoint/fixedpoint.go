// Package fixedpoint implements SAGE's deterministic 8-decimal fixed-point
// scalar. Every value is a signed int64 scaled by Scale; there is no
// floating-point state anywhere on a hot path.
package fixedpoint

import "math/bits"

// Scale is the implied decimal scale: one unit of Value represents 1/Scale.
const Scale int64 = 1e8

// Value is a fixed-point scalar: the real number v/Scale.
type Value int64

// Zero and One are the additive and multiplicative identities.
const (
	Zero Value = 0
	One  Value = Value(Scale)
)

// MinValue and MaxValue bound the representable range: the full int64
// range of the underlying integer, with no headroom reserved.
const (
	MaxValue Value = Value(1<<63 - 1)
	MinValue Value = Value(-1 << 63)
)

// Add returns a+b. Overflow is the caller's responsibility to bound;
// arithmetic here never silently narrows.
func Add(a, b Value) Value { return a + b }

// Sub returns a-b.
func Sub(a, b Value) Value { return a - b }

// Neg returns -a.
func Neg(a Value) Value { return -a }

// Abs returns the absolute value of a, computed branchlessly via a
// sign-fill mask so the instruction sequence is identical for every input.
func Abs(a Value) Value {
	x := int64(a)
	mask := x >> 63
	return Value((x + mask) ^ mask)
}

// Min returns the smaller of a and b, computed branchlessly.
func Min(a, b Value) Value {
	x, y := int64(a), int64(b)
	diff := x - y
	mask := diff >> 63 // all-ones if x<y, else all-zeros
	return Value(y + (diff & mask))
}

// Max returns the larger of a and b, computed branchlessly.
func Max(a, b Value) Value {
	x, y := int64(a), int64(b)
	diff := x - y
	mask := diff >> 63
	return Value(x - (diff & mask))
}

// Sign returns -1, 0, or +1 according to the sign of a.
func Sign(a Value) int64 {
	x := int64(a)
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}

// Compare returns -1, 0, or +1 as a<b, a==b, a>b, establishing a total
// order over Value.
func Compare(a, b Value) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Mul returns (a*b)/Scale using a 128-bit intermediate product, so
// |a|,|b| up to the full int64 range never lose precision in the
// multiply step itself. Callers remain responsible for bounding operands
// so the final result fits in 63 bits.
func Mul(a, b Value) Value {
	neg := false
	ua, ub := uint64(a), uint64(b)
	if a < 0 {
		neg = !neg
		ua = uint64(-a)
	}
	if b < 0 {
		neg = !neg
		ub = uint64(-b)
	}

	hi, lo := bits.Mul64(ua, ub)
	q, _ := divU128(hi, lo, uint64(Scale))

	if neg {
		return Value(-int64(q))
	}
	return Value(int64(q))
}

// Div returns (a*Scale)/b. Division by zero is not a defined operation;
// the caller must guard against b==0.
func Div(a, b Value) Value {
	neg := false
	ua, ub := uint64(a), uint64(b)
	if a < 0 {
		neg = !neg
		ua = uint64(-a)
	}
	if b < 0 {
		neg = !neg
		ub = uint64(-b)
	}

	hi, lo := bits.Mul64(ua, uint64(Scale))
	q, _ := divU128(hi, lo, ub)

	if neg {
		return Value(-int64(q))
	}
	return Value(int64(q))
}

// divU128 divides the 128-bit unsigned value (hi,lo) by d, returning the
// quotient and remainder. Panics (via bits.Div64) if the quotient would
// overflow 64 bits, which cannot happen for SAGE's Mul/Div call shapes
// since operands are bounded per §4.1's operand contract.
func divU128(hi, lo, d uint64) (q, r uint64) {
	if hi == 0 {
		return lo / d, lo % d
	}
	return bits.Div64(hi, lo, d)
}

// Sqrt computes the fixed-point square root of v via integer
// Newton-Raphson: the initial estimate is v itself (or One when v is
// below One, so that the estimate starts at or above the root), and
// iteration `y = (x + n/x) / 2` continues until the estimate stops
// decreasing. v is
// treated as the variance of a fixed-point quantity (units²/Scale); the
// result is in the original quantity's units. v<=0 returns 0, matching
// the zero-variance numerical guard used throughout the analytics core.
func Sqrt(v Value) Value {
	if v <= 0 {
		return 0
	}
	n := uint64(v) * uint64(Scale)
	x := uint64(v)
	if x < uint64(Scale) {
		x = uint64(Scale)
	}
	for {
		next := (x + n/x) / 2
		if next >= x {
			break
		}
		x = next
	}
	return Value(x)
}

// FromFloat64 truncates toward zero. It is an init-path-only conversion
// (config parsing, test fixtures) and is never called on a hot path.
func FromFloat64(f float64) Value {
	return Value(int64(f * float64(Scale)))
}

// ToFloat64 converts back to a float64. Also init-path/reporting only.
func ToFloat64(v Value) float64 {
	return float64(v) / float64(Scale)
}
