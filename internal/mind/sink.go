// Package mind stands in for the ML/decision engine that the full
// pipeline would interpose between ADE and RME. Here it is the
// external collaborator the analytics worker forwards every produced
// signal to; the only implementation is a pass-through that hands the
// signal straight to RME's ring, unmodified.
package mind

import (
	"sync/atomic"

	"github.com/sagehft/sage/internal/envelope"
	"github.com/sagehft/sage/internal/errors"
	"github.com/sagehft/sage/internal/ring"
)

// Sink receives signal envelopes produced by the analytics worker.
// A real decision engine would score or filter here; the interface
// exists so ADE never needs to know which.
type Sink interface {
	Submit(e envelope.MessageEnvelope) error
}

// PassThrough forwards every signal envelope it receives directly onto
// a ring without inspecting it, playing the role of a no-op decision
// engine between ADE and RME.
type PassThrough struct {
	out      *ring.Ring
	forwarded atomic.Uint64
	dropped   atomic.Uint64
}

// NewPassThrough wraps the ring that feeds RME.
func NewPassThrough(out *ring.Ring) *PassThrough {
	return &PassThrough{out: out}
}

// Submit pushes e onto the downstream ring without blocking. A full
// ring is reported as an error, not silently dropped by the caller;
// PassThrough itself still counts the drop.
func (p *PassThrough) Submit(e envelope.MessageEnvelope) error {
	if p.out.TryPush(e) {
		p.forwarded.Add(1)
		return nil
	}
	p.dropped.Add(1)
	return errors.ErrRingFull
}

// Counts returns (forwarded, dropped) totals.
func (p *PassThrough) Counts() (forwarded, dropped uint64) {
	return p.forwarded.Load(), p.dropped.Load()
}
