package fixedpoint

import "testing"

func TestAddSubRoundTrip(t *testing.T) {
	a, b := Value(12345), Value(-6789)
	if got := Sub(Add(a, b), b); got != a {
		t.Fatalf("a+b-b = %d, want %d", got, a)
	}
}

func TestMulDivIdentity(t *testing.T) {
	a := Value(987_654_321)
	if got := Div(Mul(a, One), One); got != a {
		t.Fatalf("(a*one)/one = %d, want %d", got, a)
	}
}

func TestAbsNonNegative(t *testing.T) {
	for _, v := range []Value{0, 1, -1, MaxValue, MinValue + 1} {
		if Abs(v) < 0 {
			t.Fatalf("Abs(%d) = %d, want >= 0", v, Abs(v))
		}
	}
}

func TestMinMaxSum(t *testing.T) {
	cases := [][2]Value{{3, 5}, {-3, 5}, {5, 5}, {-7, -2}}
	for _, c := range cases {
		a, b := c[0], c[1]
		if got, want := Min(a, b)+Max(a, b), a+b; got != want {
			t.Fatalf("min(%d,%d)+max(%d,%d) = %d, want %d", a, b, a, b, got, want)
		}
	}
}

func TestMultiplyMillionSquared(t *testing.T) {
	a := FromFloat64(1_000_000.0)
	b := FromFloat64(1_000_000.0)
	got := Mul(a, b)
	want := Value(1_000_000_000_000) * Value(Scale)
	diff := Abs(got - want)
	if int64(diff) > 1_000_000 {
		t.Fatalf("1e6*1e6 = %d, want within 1e6 of %d", got, want)
	}
}

func TestCompareTotalOrder(t *testing.T) {
	if Compare(One, Zero) <= 0 {
		t.Fatalf("expected One > Zero")
	}
	if Compare(Zero, Zero) != 0 {
		t.Fatalf("expected Zero == Zero")
	}
	if Compare(Neg(One), Zero) >= 0 {
		t.Fatalf("expected -One < Zero")
	}
}

func TestSignZero(t *testing.T) {
	if Sign(Zero) != 0 {
		t.Fatalf("Sign(0) = %d, want 0", Sign(Zero))
	}
	if Sign(One) != 1 {
		t.Fatalf("Sign(One) = %d, want 1", Sign(One))
	}
	if Sign(Neg(One)) != -1 {
		t.Fatalf("Sign(-One) = %d, want -1", Sign(Neg(One)))
	}
}

func TestSqrtOfOneIsOne(t *testing.T) {
	if got := Sqrt(One); got != One {
		t.Fatalf("Sqrt(One) = %d, want %d", got, One)
	}
}

func TestSqrtZeroOrNegativeIsZero(t *testing.T) {
	if Sqrt(Zero) != Zero {
		t.Fatalf("Sqrt(0) should be 0")
	}
	if Sqrt(Value(-5)) != Zero {
		t.Fatalf("Sqrt(negative) should be 0")
	}
}

func TestSqrtFour(t *testing.T) {
	four := FromFloat64(4.0)
	two := FromFloat64(2.0)
	got := Sqrt(four)
	if diff := Abs(got - two); int64(diff) > 10 {
		t.Fatalf("Sqrt(4) = %d, want close to %d", got, two)
	}
}

func TestFromFloatTruncatesTowardZero(t *testing.T) {
	pos := FromFloat64(1.999999999)
	if pos != Value(199999999) {
		t.Fatalf("FromFloat64(1.999999999) = %d, want 199999999", pos)
	}
	neg := FromFloat64(-1.999999999)
	if neg != Value(-199999999) {
		t.Fatalf("FromFloat64(-1.999999999) = %d, want -199999999", neg)
	}
}
