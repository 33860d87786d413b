package wire

import (
	"strings"
	"testing"
	"time"

	"github.com/sagehft/sage/internal/fixedpoint"
)

func splitSOH(msg []byte) []string {
	s := strings.TrimSuffix(string(msg), string(soh))
	return strings.Split(s, string(soh))
}

func TestNewOrderSingleFieldOrderAndChecksum(t *testing.T) {
	at := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	msg := NewOrderSingle(12345, 7, SideBuy, fixedpoint.Value(150_00000000), fixedpoint.Value(250_00000000), at)

	fields := splitSOH(msg)
	wantTags := []string{"8", "9", "35", "11", "55", "54", "60", "38", "40", "44", "59", "10"}
	if len(fields) != len(wantTags) {
		t.Fatalf("got %d fields, want %d: %q", len(fields), len(wantTags), fields)
	}
	for i, f := range fields {
		tag := f[:strings.IndexByte(f, '=')]
		if tag != wantTags[i] {
			t.Fatalf("field %d tag = %q, want %q", i, tag, wantTags[i])
		}
	}
	if fields[2] != "35=D" {
		t.Fatalf("msg type = %q, want 35=D", fields[2])
	}
	if fields[3] != "11=12345" {
		t.Fatalf("order id = %q", fields[3])
	}
	if fields[7] != "38=150.00000000" {
		t.Fatalf("qty = %q", fields[7])
	}
	if fields[9] != "44=250.00000000" {
		t.Fatalf("price = %q", fields[9])
	}

	// Recompute checksum over everything up to the 10= field and compare.
	idx := strings.LastIndex(string(msg), "10=")
	var sum uint32
	for _, b := range msg[:idx] {
		sum += uint32(b)
	}
	want := sum % 256
	gotChecksum := fields[len(fields)-1]
	if gotChecksum[3:] != padChecksum(want) {
		t.Fatalf("checksum = %q, want %03d", gotChecksum, want)
	}
}

func padChecksum(v uint32) string {
	s := make([]byte, 0, 3)
	digits := [3]byte{}
	for i := 2; i >= 0; i-- {
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	s = append(s, digits[:]...)
	return string(s)
}

func TestBodyLengthMatchesFieldsBetweenLengthAndChecksum(t *testing.T) {
	at := time.Now()
	msg := NewOrderSingle(1, 1, SideSell, fixedpoint.Value(1_00000000), fixedpoint.Value(1_00000000), at)

	lenFieldStart := strings.Index(string(msg), "9=")
	lenFieldEnd := strings.IndexByte(string(msg[lenFieldStart:]), soh) + lenFieldStart
	bodyStart := lenFieldEnd + 1
	checksumStart := strings.LastIndex(string(msg), "10=")

	gotBody := msg[bodyStart:checksumStart]
	declaredLen := string(msg[lenFieldStart+2 : lenFieldEnd])
	if declaredLen != threeDigits(len(gotBody)) {
		t.Fatalf("declared body length %q does not match actual %d", declaredLen, len(gotBody))
	}
}

func threeDigits(n int) string {
	return padChecksum(uint32(n))
}

func TestOrderCancelRequestIncludesOrigOrderID(t *testing.T) {
	msg := OrderCancelRequest(2, 1, 9, SideBuy, time.Now())
	fields := splitSOH(msg)
	found := false
	for _, f := range fields {
		if f == "41=1" {
			found = true
		}
		if f == "35=F" {
			continue
		}
	}
	if !found {
		t.Fatalf("expected 41=1 (orig order id) field, got %q", fields)
	}
}

func TestFormatDecimalHandlesNegative(t *testing.T) {
	got := formatDecimal(fixedpoint.Value(-150000000))
	if got != "-1.50000000" {
		t.Fatalf("formatDecimal(-1.5) = %q", got)
	}
}
