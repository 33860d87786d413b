package obs

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/sagehft/sage/internal/logging"
)

// RuntimeStats periodically snapshots runtime.MemStats and logs a
// single-line summary. It is wired into each cmd/* binary on a
// background ticker only; nothing on ADE's tick path, RME's evaluate
// path, or POE's write path touches it.
type RuntimeStats struct {
	buf        [2048]byte
	prev, curr runtime.MemStats
	prevAt     time.Time
	currAt     time.Time
}

// Run snapshots and logs on every tick until ctx is done.
func (r *RuntimeStats) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Snapshot()
			r.Log()
		}
	}
}

// Snapshot reads the current MemStats, rotating the previous reading
// into prev so Log can compute rates.
func (r *RuntimeStats) Snapshot() {
	r.prev, r.curr = r.curr, r.prev
	r.prevAt = r.currAt
	r.currAt = time.Now()

	runtime.ReadMemStats(&r.curr)

	if r.prevAt.IsZero() {
		r.prevAt = r.currAt
	}
}

// Log emits the most recent snapshot as a single log line.
func (r *RuntimeStats) Log() {
	line := r.buf[:0]

	line = append(line, "[TIME] "...)
	line = strconv.AppendInt(line, r.currAt.Unix(), 10)
	line = append(line, "  "...)

	dt := r.currAt.Sub(r.prevAt).Seconds()
	if dt <= 0 {
		dt = 1
	}

	line = append(line, "[HEAP] "...)

	line = append(line, "alc_grow="...)
	b, unit := bytesCarry(r.curr.TotalAlloc - r.prev.TotalAlloc)
	line = strconv.AppendUint(line, b, 10)
	line = append(line, unit...)

	line = append(line, "\t"...)
	line = append(line, "alc="...)
	b, unit = bytesCarry(r.curr.HeapAlloc)
	line = strconv.AppendUint(line, b, 10)
	line = append(line, unit...)

	line = append(line, "\t"...)
	line = append(line, "inuse="...)
	b, unit = bytesCarry(r.curr.HeapInuse)
	line = strconv.AppendUint(line, b, 10)
	line = append(line, unit...)

	line = append(line, "\t"...)
	line = append(line, "object="...)
	line = strconv.AppendUint(line, r.curr.HeapObjects, 10)

	line = append(line, "\t"...)
	line = append(line, "alc_rate="...)
	rate := float64(r.curr.TotalAlloc-r.prev.TotalAlloc) / dt
	rb, runit := bytesCarryFloat(rate)
	line = strconv.AppendFloat(line, rb, 'f', 2, 64)
	line = append(line, runit...)
	line = append(line, "/s"...)

	gcTimes := uint64(r.curr.NumGC - r.prev.NumGC)
	stwMs := float64(r.curr.PauseTotalNs-r.prev.PauseTotalNs) / 1_000_000.0

	line = append(line, "\t"...)
	line = append(line, "[GC] "...)

	line = append(line, "times="...)
	line = strconv.AppendUint(line, gcTimes, 10)

	line = append(line, "\t"...)
	line = append(line, "stw="...)
	line = strconv.AppendFloat(line, stwMs, 'f', 4, 64)
	line = append(line, "ms"...)

	line = append(line, "\t"...)
	line = append(line, "mallocs="...)
	line = strconv.AppendUint(line, r.curr.Mallocs-r.prev.Mallocs, 10)

	line = append(line, "\t"...)
	line = append(line, "frees="...)
	line = strconv.AppendUint(line, r.curr.Frees-r.prev.Frees, 10)

	logging.Info(string(line))
}

const carryThreshold = 1 << 15

func bytesCarry(value uint64) (uint64, string) {
	if value < carryThreshold {
		return value, " B"
	}
	value >>= 10
	if value < carryThreshold {
		return value, " KB"
	}
	value >>= 10
	if value < carryThreshold {
		return value, " MB"
	}
	return value >> 10, " GB"
}

func bytesCarryFloat(value float64) (float64, string) {
	if value < float64(carryThreshold) {
		return value, " B"
	}
	value /= 1024
	if value < float64(carryThreshold) {
		return value, " KB"
	}
	value /= 1024
	if value < float64(carryThreshold) {
		return value, " MB"
	}
	return value / 1024, " GB"
}
