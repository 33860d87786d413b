package analytics

import "github.com/sagehft/sage/internal/obs"

// EndToEndTracker aggregates three latency measurements per tick:
// exchange-to-decision (external timestamp to now), processing
// (calibrated start/end delta), and queue wait (enqueue/dequeue delta).
// The first uses a full percentile histogram; the other two reuse
// obs.LatencyStats, which is sufficient for mean/min/max reporting.
type EndToEndTracker struct {
	exchangeToDecision LatencyHistogram
	processing         obs.LatencyStats
	queueWait          obs.LatencyStats
}

// ObserveExchangeToDecision records the delta between an external
// exchange timestamp and the current calibrated time.
func (t *EndToEndTracker) ObserveExchangeToDecision(ns uint64) {
	t.exchangeToDecision.Record(ns)
}

// ObserveProcessing records a single start/end calibrated-timestamp
// delta for one tick's processing. Exactly one measurement is taken per
// tick; a second recomputation of the same delta would double-count.
func (t *EndToEndTracker) ObserveProcessing(ns int64) {
	t.processing.ObserveNanos(ns)
}

// ObserveQueueWait records an enqueue/dequeue timestamp delta.
func (t *EndToEndTracker) ObserveQueueWait(ns int64) {
	t.queueWait.ObserveNanos(ns)
}

// EndToEndSummary is a point-in-time view of the tracker.
type EndToEndSummary struct {
	P50, P99, P999 uint64
	ProcessingMean int64
	QueueWaitMean  int64
}

// Summary returns p50/p99/p99.9 of the exchange-to-decision histogram
// and the mean of the other two measurements.
func (t *EndToEndTracker) Summary() EndToEndSummary {
	return EndToEndSummary{
		P50:            t.exchangeToDecision.Percentile(50),
		P99:            t.exchangeToDecision.Percentile(99),
		P999:           t.exchangeToDecision.Percentile(99.9),
		ProcessingMean: int64(t.processing.Snapshot().Avg),
		QueueWaitMean:  int64(t.queueWait.Snapshot().Avg),
	}
}
