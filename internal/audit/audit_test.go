package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sagehft/sage/internal/fixedpoint"
)

// TestOpenWritesHeaderOnlyOnFreshFile covers §6's header requirement: a
// new file gets three `#` lines (banner, format, event enumeration)
// before any entry; reopening an existing, non-empty file does not
// repeat them.
func TestOpenWritesHeaderOnlyOnFreshFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.LogOrder(1, 1, 1, fixedpoint.One, fixedpoint.One); err != nil {
		t.Fatalf("log order: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 3 header + 1 entry: %q", len(lines), lines)
	}
	if lines[0] != "# SAGE Audit Log" {
		t.Fatalf("header line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "# Format: TIMESTAMP|EVENT|ORDER_ID|SYMBOL|SIDE|PRICE|QTY") {
		t.Fatalf("header line 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "# Events:") {
		t.Fatalf("header line 2 = %q", lines[2])
	}

	l2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := l2.LogOrder(2, 1, 1, fixedpoint.One, fixedpoint.One); err != nil {
		t.Fatalf("log order: %v", err)
	}
	if err := l2.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n := strings.Count(string(data), "# SAGE Audit Log"); n != 1 {
		t.Fatalf("header repeated %d times, want 1", n)
	}
}

// TestAuditLifecycleScenario implements scenario 6: log ORDER 12345,
// SENT 12345, ACK 12345 with exchange id "EX123", then sync. Reading
// the file back yields the header plus three entry lines in that
// order, each pipe-delimited as TIMESTAMP|EVENT|ORDER_ID|..., all
// UTC-timestamped with a Z suffix.
func TestAuditLifecycleScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	price := fixedpoint.FromFloat64(100.5)
	qty := fixedpoint.FromFloat64(2)
	if err := l.LogOrder(12345, 7, 1, price, qty); err != nil {
		t.Fatalf("log order: %v", err)
	}
	if err := l.LogSent(12345); err != nil {
		t.Fatalf("log sent: %v", err)
	}
	if err := l.LogAck(12345, "EX123"); err != nil {
		t.Fatalf("log ack: %v", err)
	}
	if err := l.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	all := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	lines := all[3:] // skip the 3-line header
	if len(lines) != 3 {
		t.Fatalf("got %d entry lines, want 3: %q", len(lines), lines)
	}

	orderFields := strings.Split(lines[0], "|")
	if len(orderFields) != 7 {
		t.Fatalf("ORDER line has %d fields, want 7 (ts,event,id,symbol,side,price,qty): %q", len(orderFields), lines[0])
	}
	if !strings.HasSuffix(orderFields[0], "Z") {
		t.Fatalf("timestamp field %q missing Z suffix", orderFields[0])
	}
	if orderFields[1] != "ORDER" || orderFields[2] != "12345" || orderFields[3] != "7" || orderFields[4] != "BUY" {
		t.Fatalf("ORDER line mismatch: %q", lines[0])
	}
	if orderFields[5] != "100.50000000" || orderFields[6] != "2.00000000" {
		t.Fatalf("ORDER price/qty mismatch: %q", lines[0])
	}

	sentFields := strings.Split(lines[1], "|")
	if len(sentFields) != 3 || sentFields[1] != "SENT" || sentFields[2] != "12345" {
		t.Fatalf("SENT line mismatch: %q", lines[1])
	}

	ackFields := strings.Split(lines[2], "|")
	if len(ackFields) != 4 || ackFields[1] != "ACK" || ackFields[2] != "12345" || ackFields[3] != "EX123" {
		t.Fatalf("ACK line mismatch: %q", lines[2])
	}
}

// TestLogFillRecordsSymbolPriceAndQuantity covers the FILL schema:
// symbol id, fill price, fill quantity — not an exchange id.
func TestLogFillRecordsSymbolPriceAndQuantity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := l.LogOrder(5, 3, -1, fixedpoint.FromFloat64(10), fixedpoint.FromFloat64(1)); err != nil {
		t.Fatalf("log order: %v", err)
	}
	if err := l.LogSent(5); err != nil {
		t.Fatalf("log sent: %v", err)
	}
	if err := l.LogAck(5, "EX1"); err != nil {
		t.Fatalf("log ack: %v", err)
	}
	if err := l.LogFill(5, 3, fixedpoint.FromFloat64(9.75), fixedpoint.FromFloat64(1)); err != nil {
		t.Fatalf("log fill: %v", err)
	}
	if err := l.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	fillLine := lines[len(lines)-1]
	fields := strings.Split(fillLine, "|")
	if len(fields) != 6 {
		t.Fatalf("FILL line has %d fields, want 6 (ts,event,id,symbol,price,qty): %q", len(fields), fillLine)
	}
	if fields[1] != "FILL" || fields[2] != "5" || fields[3] != "3" || fields[4] != "9.75000000" || fields[5] != "1.00000000" {
		t.Fatalf("FILL line mismatch: %q", fillLine)
	}
}

func TestAuditRejectWithLongReasonStaysWithinCapAndFlushesImmediately(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := l.LogOrder(99, 1, 1, fixedpoint.FromFloat64(1), fixedpoint.FromFloat64(1)); err != nil {
		t.Fatalf("log order: %v", err)
	}
	if err := l.LogSent(99); err != nil {
		t.Fatalf("log sent: %v", err)
	}

	reason := strings.Repeat("x", 200)
	if err := l.LogReject(99, reason); err != nil {
		t.Fatalf("log reject: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	last := lines[len(lines)-1]
	if len(last)+1 > maxLineLen {
		t.Fatalf("line length %d exceeds cap %d", len(last)+1, maxLineLen)
	}
	fields := strings.Split(last, "|")
	if fields[1] != "REJECT" || fields[2] != "99" {
		t.Fatalf("expected REJECT|99|..., got %q", last)
	}
}

func TestLifecycleGuardRejectsOutOfOrderTransitions(t *testing.T) {
	g := NewLifecycleGuard()
	if err := g.Transition(1, StateSent); err == nil {
		t.Fatalf("expected error transitioning straight to SENT without ORDER")
	}
	if err := g.Transition(1, StateOrder); err != nil {
		t.Fatalf("unexpected error on first ORDER: %v", err)
	}
	if err := g.Transition(1, StateOrder); err == nil {
		t.Fatalf("expected error on duplicate ORDER")
	}
	if err := g.Transition(1, StateSent); err != nil {
		t.Fatalf("unexpected error on SENT after ORDER: %v", err)
	}
	if err := g.Transition(1, StateReject); err != nil {
		t.Fatalf("unexpected error on REJECT after SENT: %v", err)
	}
	if err := g.Transition(1, StateAck); err == nil {
		t.Fatalf("expected error transitioning out of a terminal state")
	}
}

func TestCountersTrackEntriesAndSyncs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = l.LogOrder(1, 1, 1, fixedpoint.FromFloat64(1), fixedpoint.FromFloat64(1))
	_ = l.LogSent(1)
	_ = l.Sync()

	snap := l.Snapshot()
	if snap.EntriesLogged != 2 {
		t.Fatalf("entries logged = %d, want 2", snap.EntriesLogged)
	}
	if snap.SyncCount != 1 {
		t.Fatalf("sync count = %d, want 1", snap.SyncCount)
	}
}
