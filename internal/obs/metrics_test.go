package obs

import (
	"testing"
	"time"

	"github.com/sagehft/sage/internal/envelope"
)

func TestObserveEnvelopeCountsByTag(t *testing.T) {
	m := NewMetrics()
	e := envelope.CreateHeartbeat(100, 1, envelope.Heartbeat{Sequence: 1})
	m.ObserveEnvelope(&e, 250)

	snap := m.Snapshot()
	if snap.TagCounts[envelope.TagHeartbeat] != 1 {
		t.Fatalf("expected 1 heartbeat tag count, got %d", snap.TagCounts[envelope.TagHeartbeat])
	}
	if snap.EventLatency.Count != 1 {
		t.Fatalf("expected 1 latency sample, got %d", snap.EventLatency.Count)
	}
	if snap.EventLatency.Avg != 150*time.Nanosecond {
		t.Fatalf("expected 150ns latency, got %s", snap.EventLatency.Avg)
	}
}

func TestIncRiskReasonAndQueueCounters(t *testing.T) {
	m := NewMetrics()
	m.IncRiskReason(3)
	m.IncRiskReason(3)
	m.IncQueueDrop()
	m.IncQueueClosed()

	snap := m.Snapshot()
	if snap.RiskReasonCounts[3] != 2 {
		t.Fatalf("expected risk reason 3 count 2, got %d", snap.RiskReasonCounts[3])
	}
	if snap.QueueDrops != 1 || snap.QueueClosed != 1 {
		t.Fatalf("expected queue drop/closed counts of 1 each, got %d/%d", snap.QueueDrops, snap.QueueClosed)
	}
}

func TestLatencyStatsMinMaxAvg(t *testing.T) {
	var l LatencyStats
	l.Observe(10 * time.Millisecond)
	l.Observe(30 * time.Millisecond)
	l.Observe(20 * time.Millisecond)

	snap := l.Snapshot()
	if snap.Count != 3 {
		t.Fatalf("expected count 3, got %d", snap.Count)
	}
	if snap.Min != 10*time.Millisecond {
		t.Fatalf("expected min 10ms, got %s", snap.Min)
	}
	if snap.Max != 30*time.Millisecond {
		t.Fatalf("expected max 30ms, got %s", snap.Max)
	}
	if snap.Avg != 20*time.Millisecond {
		t.Fatalf("expected avg 20ms, got %s", snap.Avg)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	e := envelope.CreateHeartbeat(0, 0, envelope.Heartbeat{})
	m.ObserveEnvelope(&e, 0)
	m.IncRiskReason(0)
	m.IncQueueDrop()
	m.IncQueueClosed()
	m.ObserveOrderFlow(time.Second)
	m.ObserveRiskEval(time.Second)
	if got := m.Snapshot(); got.QueueDrops != 0 {
		t.Fatalf("nil metrics snapshot should be zero value")
	}
}
