// Package ring implements SAGE's bounded lock-free single-producer/
// single-consumer queue of envelopes.
package ring

import (
	"runtime"
	"sync/atomic"

	"github.com/sagehft/sage/internal/envelope"
)

const cacheLineSize = 64

// cachePad fills out the remainder of a cache line after the fields that
// precede it, so the producer's hot fields and the consumer's hot fields
// never share a cache line.
type cachePad [cacheLineSize - 16]byte

// Ring is a bounded SPSC queue of envelopes. Only one goroutine may call
// the producer methods (TryPush, PushBlocking) and only one goroutine may
// call the consumer methods (TryPop, TryPeek, PopBlocking, TryPopBatch);
// any other usage pattern is undefined.
type Ring struct {
	// Producer-owned: head is the only atomic the producer publishes to;
	// cachedTail is the producer's private snapshot of the consumer's
	// tail, consulted before falling back to an acquire load of tail.
	head       atomic.Uint64
	cachedTail uint64
	_          cachePad

	// Consumer-owned: mirror image of the producer's group.
	tail       atomic.Uint64
	cachedHead uint64
	_          cachePad

	mask uint64
	buf  []envelope.MessageEnvelope
}

// New allocates a ring with the given power-of-two capacity (>= 16).
func New(capacity int) *Ring {
	if capacity < 16 || capacity&(capacity-1) != 0 {
		panic("ring: capacity must be a power of two >= 16")
	}
	return &Ring{
		mask: uint64(capacity - 1),
		buf:  make([]envelope.MessageEnvelope, capacity),
	}
}

// Capacity returns the ring's fixed slot count.
func (r *Ring) Capacity() int { return len(r.buf) }

// TryPush enqueues item without blocking, returning false if the ring is
// full.
func (r *Ring) TryPush(item envelope.MessageEnvelope) bool {
	head := r.head.Load()
	if head-r.cachedTail >= uint64(len(r.buf)) {
		r.cachedTail = r.tail.Load()
		if head-r.cachedTail >= uint64(len(r.buf)) {
			return false
		}
	}

	idx := head & r.mask
	r.prefetchWrite(idx + 1)
	r.buf[idx] = item
	r.head.Store(head + 1)
	return true
}

// TryPop dequeues the oldest element into out, returning false (and
// leaving *out untouched) if the ring is empty.
func (r *Ring) TryPop(out *envelope.MessageEnvelope) bool {
	tail := r.tail.Load()
	if r.cachedHead == tail {
		r.cachedHead = r.head.Load()
		if r.cachedHead == tail {
			return false
		}
	}

	idx := tail & r.mask
	r.prefetchRead(idx + 1)
	*out = r.buf[idx]
	r.tail.Store(tail + 1)
	return true
}

// TryPeek performs a non-destructive read of the oldest element.
func (r *Ring) TryPeek(out *envelope.MessageEnvelope) bool {
	tail := r.tail.Load()
	head := r.head.Load()
	if tail == head {
		return false
	}
	*out = r.buf[tail&r.mask]
	return true
}

// TryPopBatch copies up to max contiguous elements, in insertion order,
// into out (which must have length >= max) and returns the count
// actually copied. Semantically equivalent to max successive TryPop
// calls, but takes a single head snapshot and performs a single tail
// store.
func (r *Ring) TryPopBatch(out []envelope.MessageEnvelope, max int) int {
	if max > len(out) {
		max = len(out)
	}
	tail := r.tail.Load()
	head := r.cachedHead
	if head-tail == 0 {
		head = r.head.Load()
		r.cachedHead = head
	}

	avail := head - tail
	if avail == 0 || max <= 0 {
		return 0
	}
	n := uint64(max)
	if n > avail {
		n = avail
	}

	for i := uint64(0); i < n; i++ {
		out[i] = r.buf[(tail+i)&r.mask]
	}
	r.tail.Store(tail + n)
	return int(n)
}

// PushBlocking spins with a CPU-pause hint until item is enqueued.
func (r *Ring) PushBlocking(item envelope.MessageEnvelope) {
	for !r.TryPush(item) {
		pause()
	}
}

// PopBlocking spins with a CPU-pause hint until an element is dequeued
// into out.
func (r *Ring) PopBlocking(out *envelope.MessageEnvelope) {
	for !r.TryPop(out) {
		pause()
	}
}

// SizeApprox returns a racy snapshot of the current element count.
func (r *Ring) SizeApprox() int {
	return int(r.head.Load() - r.tail.Load())
}

// EmptyApprox returns a racy snapshot of whether the ring is empty.
func (r *Ring) EmptyApprox() bool {
	return r.head.Load() == r.tail.Load()
}

// FullApprox returns a racy snapshot of whether the ring is at capacity.
func (r *Ring) FullApprox() bool {
	return r.head.Load()-r.tail.Load() >= uint64(len(r.buf))
}

// pause yields the processor. Go exposes no portable CPU-pause
// intrinsic without an assembly stub, so runtime.Gosched is used as the
// wake-free spin hint: it never blocks the calling goroutine on a
// channel or lock.
func pause() {
	runtime.Gosched()
}

// prefetchWrite and prefetchRead are documented no-ops: Go has no
// portable prefetch intrinsic. They exist so the call sites mirror the
// reference design's prefetch-before-touch discipline and give a single
// place to wire in an assembly prefetch stub later.
func (r *Ring) prefetchWrite(idx uint64) { _ = idx }
func (r *Ring) prefetchRead(idx uint64)  { _ = idx }
