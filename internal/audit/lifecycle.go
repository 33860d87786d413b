// Package audit implements SAGE's append-only order audit log (POE): a
// per-order-id lifecycle guard plus a buffered, single-writer text log
// with an explicit flush/sync durability split.
package audit

import "github.com/sagehft/sage/internal/errors"

// OrderState is a point in an order's lifecycle.
type OrderState uint8

const (
	StateUnknown OrderState = iota
	StateOrder
	StateSent
	StateAck
	StateFill
	StateReject
	StateError
)

func (s OrderState) terminal() bool {
	switch s {
	case StateFill, StateReject, StateError:
		return true
	default:
		return false
	}
}

// LifecycleGuard enforces the ORDER -> SENT -> {ACK, REJECT, ERROR},
// ACK -> FILL transition graph per order id: ORDER appears at most once
// and precedes any SENT; SENT, if present, precedes any ACK/FILL; FILL
// is accepted only after ACK.
//
// This strengthens but does not replace the textual audit trail: the
// log file is still the durable record. The guard exists to catch a
// caller that calls log_ack before log_sent, or logs two ORDER events
// for the same id, before that mistake becomes an unreadable WAL.
type LifecycleGuard struct {
	states map[uint64]OrderState
}

// NewLifecycleGuard constructs an empty guard.
func NewLifecycleGuard() *LifecycleGuard {
	return &LifecycleGuard{states: make(map[uint64]OrderState)}
}

// Transition validates and records a move to next for orderID.
func (g *LifecycleGuard) Transition(orderID uint64, next OrderState) error {
	cur := g.states[orderID]

	switch next {
	case StateOrder:
		if cur != StateUnknown {
			return errors.ErrInvalidTransition
		}
	case StateSent:
		if cur != StateOrder {
			return errors.ErrInvalidTransition
		}
	case StateAck, StateReject, StateError:
		if cur != StateSent {
			return errors.ErrInvalidTransition
		}
	case StateFill:
		if cur != StateAck {
			return errors.ErrInvalidTransition
		}
	default:
		return errors.ErrInvalidTransition
	}

	g.states[orderID] = next
	return nil
}

// State returns the current state of orderID, StateUnknown if never
// seen.
func (g *LifecycleGuard) State(orderID uint64) OrderState {
	return g.states[orderID]
}
