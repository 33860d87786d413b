package audit

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sagehft/sage/internal/fixedpoint"
	"github.com/sagehft/sage/internal/logging"
)

// maxLineLen bounds the formatted line length. A line that would
// overflow this is truncated and the last bytes replaced with a
// [TRUNC] marker.
const maxLineLen = 256

const truncMarker = "[TRUNC]"

// autoFlushEvery is how many buffered writes trigger an automatic
// flush.
const autoFlushEvery = 100

// header is written once, when Open creates a new file.
const header = "# SAGE Audit Log\n" +
	"# Format: TIMESTAMP|EVENT|ORDER_ID|SYMBOL|SIDE|PRICE|QTY\n" +
	"# Events: ORDER (intent), SENT (transmitted), ACK, REJECT, FILL, ERROR\n"

// Logger is POE's single-writer append-only audit log. It is intended
// for exactly one writer goroutine; the mutex exists to serialize that
// writer against the background sync goroutine and the immediate-flush
// reject/error paths, not to support concurrent writer callers.
type Logger struct {
	mu   sync.Mutex
	file *os.File
	w    *bufio.Writer
	guard *LifecycleGuard

	sinceFlush int

	entriesLogged atomic.Uint64
	truncations   atomic.Uint64
	syncCount     atomic.Uint64
}

// Open creates (or appends to) the audit log at path. A freshly created
// file (one that did not exist, or existed empty) gets a three-line `#`
// header before any entry is written.
func Open(path string) (*Logger, error) {
	fresh := true
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		fresh = false
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	l := &Logger{
		file:  f,
		w:     bufio.NewWriter(f),
		guard: NewLifecycleGuard(),
	}
	if fresh {
		if _, err := l.w.WriteString(header); err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := l.w.Flush(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return l, nil
}

func timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000000Z")
}

// writeLine formats a TIMESTAMP|EVENT|ORDER_ID[|field]... line into a
// bounded buffer and appends it, counting toward the auto-flush
// threshold. Each of fields is appended after its own '|' separator.
func (l *Logger) writeLine(orderID uint64, tag string, fields ...string) {
	var buf [maxLineLen]byte
	line := buf[:0]
	line = append(line, timestamp()...)
	line = append(line, '|')
	line = append(line, tag...)
	line = append(line, '|')
	line = appendUint(line, orderID)
	for _, f := range fields {
		line = append(line, '|')
		line = append(line, f...)
	}
	line = append(line, '\n')

	truncated := false
	if len(line) > maxLineLen {
		truncated = true
		cut := maxLineLen - len(truncMarker) - 1
		if cut < 0 {
			cut = 0
		}
		line = append(line[:cut], truncMarker+"\n"...)
	}

	l.mu.Lock()
	l.w.Write(line)
	l.sinceFlush++
	shouldFlush := l.sinceFlush >= autoFlushEvery
	if shouldFlush {
		l.sinceFlush = 0
	}
	l.mu.Unlock()

	l.entriesLogged.Add(1)
	if truncated {
		l.truncations.Add(1)
	}
	if shouldFlush {
		if err := l.Flush(); err != nil {
			logging.Errorf("audit: auto-flush failed, err: %+v", err)
		}
	}
}

func appendUint(b []byte, v uint64) []byte {
	var tmp [20]byte
	i := len(tmp)
	if v == 0 {
		return append(b, '0')
	}
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	return append(b, tmp[i:]...)
}

// LogOrder must be called before transmission. This is the compliance
// checkpoint: if the process crashes after this call, intent is
// recorded. side follows the order's direction sign: positive is BUY,
// zero or negative is SELL.
func (l *Logger) LogOrder(orderID uint64, symbolID uint32, side int8, price, quantity fixedpoint.Value) error {
	if err := l.guard.Transition(orderID, StateOrder); err != nil {
		return err
	}
	l.writeLine(orderID, "ORDER", uitoa(uint64(symbolID)), sideString(side), formatDecimal(price), formatDecimal(quantity))
	return nil
}

// LogSent is called immediately after a successful send syscall.
func (l *Logger) LogSent(orderID uint64) error {
	if err := l.guard.Transition(orderID, StateSent); err != nil {
		return err
	}
	l.writeLine(orderID, "SENT")
	return nil
}

// LogAck is called on an exchange acknowledgment.
func (l *Logger) LogAck(orderID uint64, exchangeID string) error {
	if err := l.guard.Transition(orderID, StateAck); err != nil {
		return err
	}
	l.writeLine(orderID, "ACK", exchangeID)
	return nil
}

// LogFill is called on an exchange fill.
func (l *Logger) LogFill(orderID uint64, symbolID uint32, fillPrice, fillQuantity fixedpoint.Value) error {
	if err := l.guard.Transition(orderID, StateFill); err != nil {
		return err
	}
	l.writeLine(orderID, "FILL", uitoa(uint64(symbolID)), formatDecimal(fillPrice), formatDecimal(fillQuantity))
	return nil
}

// LogReject is called on an exchange rejection. LogReject always
// flushes immediately, unlike the other log_* calls which rely on the
// periodic auto-flush.
func (l *Logger) LogReject(orderID uint64, reason string) error {
	if err := l.guard.Transition(orderID, StateReject); err != nil {
		return err
	}
	l.writeLine(orderID, "REJECT", reason)
	return l.Flush()
}

// LogError is called when the exchange response indicates an error.
// Like LogReject, it always flushes immediately.
func (l *Logger) LogError(orderID uint64, reason string) error {
	if err := l.guard.Transition(orderID, StateError); err != nil {
		return err
	}
	l.writeLine(orderID, "ERROR", reason)
	return l.Flush()
}

func sideString(side int8) string {
	if side > 0 {
		return "BUY"
	}
	return "SELL"
}

// formatDecimal renders a fixed-point value as a fixed 8-decimal string
// without going through floating point, matching the format original
// float-based %.8f logging produced for the same fields.
func formatDecimal(v fixedpoint.Value) string {
	n := int64(v)
	neg := n < 0
	if neg {
		n = -n
	}
	whole := n / fixedpoint.Scale
	frac := n % fixedpoint.Scale
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%08d", sign, whole, frac)
}

// Flush pushes user-space buffers to the kernel. It does not imply disk
// durability.
func (l *Logger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Flush()
}

// Sync forces a kernel-to-disk flush, the only durability contract POE
// offers. Between syncs, recent entries may be lost on power failure;
// that is an explicit trade so the hot-path worker never blocks on
// disk.
func (l *Logger) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.w.Flush(); err != nil {
		return err
	}
	err := l.file.Sync()
	if err == nil {
		l.syncCount.Add(1)
	}
	return err
}

// Close issues a final Sync and closes the underlying file.
func (l *Logger) Close() error {
	if err := l.Sync(); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}

// Counters exposes the logger's observability counters.
type Counters struct {
	EntriesLogged uint64
	Truncations   uint64
	SyncCount     uint64
}

// Snapshot returns the current counters.
func (l *Logger) Snapshot() Counters {
	return Counters{
		EntriesLogged: l.entriesLogged.Load(),
		Truncations:   l.truncations.Load(),
		SyncCount:     l.syncCount.Load(),
	}
}

func uitoa(v uint64) string {
	return string(appendUint(nil, v))
}
