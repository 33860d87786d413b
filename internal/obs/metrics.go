// Package obs collects lightweight, allocation-free counters and
// latency aggregates shared across ADE, RME, and POE. Counters use
// relaxed atomic increments; the recording methods do not allocate
// after construction, while Snapshot builds fresh maps on each call.
package obs

import (
	"sync/atomic"
	"time"

	"github.com/sagehft/sage/internal/envelope"
)

// maxTag and maxRiskReason size the fixed counter arrays; risk reason
// codes are small ints owned by internal/risk, kept here as a plain
// uint8 so obs has no dependency on internal/risk.
const (
	maxTag        = int(envelope.TagHeartbeat)
	maxRiskReason = 7
)

// Metrics collects lightweight counters and latency stats for a single
// component (ADE, RME, or POE).
type Metrics struct {
	tagCounts        [maxTag + 1]uint64
	riskReasonCounts [maxRiskReason + 1]uint64
	queueDrops       uint64
	queueClosed      uint64

	eventLatency     LatencyStats
	orderFlowLatency LatencyStats
	riskEvalLatency  LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	TagCounts        map[envelope.Tag]uint64
	RiskReasonCounts map[uint8]uint64
	QueueDrops       uint64
	QueueClosed      uint64
	EventLatency     LatencySnapshot
	OrderFlowLatency LatencySnapshot
	RiskEvalLatency  LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveEnvelope increments the per-tag counter and, when tsRecv is
// later than the envelope's own receipt timestamp, folds the delta into
// the event latency aggregate.
func (m *Metrics) ObserveEnvelope(e *envelope.MessageEnvelope, tsRecvNs uint64) {
	if m == nil {
		return
	}
	idx := int(e.Tag)
	if idx >= 0 && idx < len(m.tagCounts) {
		atomic.AddUint64(&m.tagCounts[idx], 1)
	}
	if e.TsRecvNs > 0 && tsRecvNs > e.TsRecvNs {
		m.eventLatency.ObserveNanos(int64(tsRecvNs - e.TsRecvNs))
	}
}

// IncRiskReason increments the risk reason counter for a deny-reason
// code owned by internal/risk.
func (m *Metrics) IncRiskReason(reason uint8) {
	if m == nil {
		return
	}
	idx := int(reason)
	if idx >= 0 && idx < len(m.riskReasonCounts) {
		atomic.AddUint64(&m.riskReasonCounts[idx], 1)
	}
}

// IncQueueDrop records a queue drop.
func (m *Metrics) IncQueueDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.queueDrops, 1)
}

// IncQueueClosed records a closed-queue publish attempt.
func (m *Metrics) IncQueueClosed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.queueClosed, 1)
}

// ObserveOrderFlow measures end-to-end order flow latency.
func (m *Metrics) ObserveOrderFlow(d time.Duration) {
	if m == nil {
		return
	}
	m.orderFlowLatency.Observe(d)
}

// ObserveRiskEval measures risk evaluation latency.
func (m *Metrics) ObserveRiskEval(d time.Duration) {
	if m == nil {
		return
	}
	m.riskEvalLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	tagCounts := make(map[envelope.Tag]uint64)
	for i := range m.tagCounts {
		if v := atomic.LoadUint64(&m.tagCounts[i]); v > 0 {
			tagCounts[envelope.Tag(i)] = v
		}
	}
	riskCounts := make(map[uint8]uint64)
	for i := range m.riskReasonCounts {
		if v := atomic.LoadUint64(&m.riskReasonCounts[i]); v > 0 {
			riskCounts[uint8(i)] = v
		}
	}
	return Snapshot{
		TagCounts:        tagCounts,
		RiskReasonCounts: riskCounts,
		QueueDrops:       atomic.LoadUint64(&m.queueDrops),
		QueueClosed:      atomic.LoadUint64(&m.queueClosed),
		EventLatency:     m.eventLatency.Snapshot(),
		OrderFlowLatency: m.orderFlowLatency.Snapshot(),
		RiskEvalLatency:  m.riskEvalLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// ObserveNanos is Observe for a raw nanosecond delta, used by hot paths
// that already hold a calibrated timestamp difference and would rather
// not construct a time.Duration.
func (l *LatencyStats) ObserveNanos(ns int64) {
	if ns < 0 {
		return
	}
	l.Observe(time.Duration(ns))
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
