// Package envelope implements SAGE's fixed 64-byte message envelope: a
// single-cache-line, trivially-copyable tagged union carrying one market
// tick, signal, order request, risk alert, or heartbeat.
//
// MessageEnvelope's size is exactly 64 bytes; Go has no construct to pin
// a value type's alignment to 64, so its natural alignment is 8 (the
// widest field, the two uint64 header words). Whether successive
// envelopes in a ring land on separate cache lines is therefore a
// property of the ring's backing array placement, not of the type
// itself; cmd/tools/checksize asserts the size invariant and the type's
// actual (8-byte) alignment, not a 64-byte one Go cannot express.
package envelope

import (
	"encoding/binary"
	"unsafe"

	"github.com/sagehft/sage/internal/fixedpoint"
)

// Tag selects which payload variant an envelope carries.
type Tag uint8

const (
	TagInvalid Tag = iota
	TagMarketTick
	TagSignal
	TagOrderRequest
	TagRiskAlert
	TagHeartbeat
)

const payloadSize = 40

// MessageEnvelope is exactly one cache line (64 bytes), bitwise
// copy-safe, and dispatched on Tag. Reserved header bytes are zeroed by
// every Create* factory.
type MessageEnvelope struct {
	TsRecvNs uint64 // local receipt timestamp, nanoseconds
	Seq      uint64 // monotonic sequence id
	Tag      Tag
	_        [7]byte // reserved, always zero
	Payload  [payloadSize]byte
}

// Size is the compile-time-asserted size of MessageEnvelope.
const Size = 64

func init() {
	if unsafe.Sizeof(MessageEnvelope{}) != Size {
		panic("envelope: MessageEnvelope size invariant violated")
	}
}

// IsValid reports whether e carries a recognized tag.
func (e *MessageEnvelope) IsValid() bool {
	return e.Tag != TagInvalid
}

func newHeader(tag Tag, ts, seq uint64) MessageEnvelope {
	return MessageEnvelope{TsRecvNs: ts, Seq: seq, Tag: tag}
}

// MarketTickFlag enumerates the flag-word bits for MarketTick.
type MarketTickFlag uint16

const (
	FlagBid   MarketTickFlag = 1 << 0
	FlagAsk   MarketTickFlag = 1 << 1
	FlagTrade MarketTickFlag = 1 << 2
)

// MarketTick is the decoded form of the 32-byte MarketTick payload.
type MarketTick struct {
	Price      fixedpoint.Value
	Quantity   fixedpoint.Value
	SymbolID   uint32
	Flags      MarketTickFlag
	ExchangeID uint16
}

// CreateMarketTick builds an envelope carrying a MarketTick payload.
func CreateMarketTick(ts, seq uint64, tick MarketTick) MessageEnvelope {
	e := newHeader(TagMarketTick, ts, seq)
	b := e.Payload[:]
	binary.LittleEndian.PutUint64(b[0:8], uint64(tick.Price))
	binary.LittleEndian.PutUint64(b[8:16], uint64(tick.Quantity))
	binary.LittleEndian.PutUint32(b[16:20], tick.SymbolID)
	binary.LittleEndian.PutUint16(b[20:22], uint16(tick.Flags))
	binary.LittleEndian.PutUint16(b[22:24], tick.ExchangeID)
	return e
}

// AsMarketTick decodes the payload as a MarketTick. The caller must have
// already dispatched on Tag == TagMarketTick.
func (e *MessageEnvelope) AsMarketTick() MarketTick {
	b := e.Payload[:]
	return MarketTick{
		Price:      fixedpoint.Value(binary.LittleEndian.Uint64(b[0:8])),
		Quantity:   fixedpoint.Value(binary.LittleEndian.Uint64(b[8:16])),
		SymbolID:   binary.LittleEndian.Uint32(b[16:20]),
		Flags:      MarketTickFlag(binary.LittleEndian.Uint16(b[20:22])),
		ExchangeID: binary.LittleEndian.Uint16(b[22:24]),
	}
}

// Direction is a signal or order side: -1, 0, or +1.
type Direction int8

const (
	DirectionShort Direction = -1
	DirectionFlat  Direction = 0
	DirectionLong  Direction = 1
)

// Signal is the decoded form of the 24-byte Signal payload.
type Signal struct {
	SymbolID   uint32
	Confidence fixedpoint.Value
	Direction  Direction
	StrategyID uint32
}

// CreateSignal builds an envelope carrying a Signal payload.
func CreateSignal(ts, seq uint64, sig Signal) MessageEnvelope {
	e := newHeader(TagSignal, ts, seq)
	b := e.Payload[:]
	binary.LittleEndian.PutUint32(b[0:4], sig.SymbolID)
	binary.LittleEndian.PutUint64(b[4:12], uint64(sig.Confidence))
	b[12] = byte(sig.Direction)
	binary.LittleEndian.PutUint32(b[13:17], sig.StrategyID)
	return e
}

// AsSignal decodes the payload as a Signal.
func (e *MessageEnvelope) AsSignal() Signal {
	b := e.Payload[:]
	return Signal{
		SymbolID:   binary.LittleEndian.Uint32(b[0:4]),
		Confidence: fixedpoint.Value(binary.LittleEndian.Uint64(b[4:12])),
		Direction:  Direction(int8(b[12])),
		StrategyID: binary.LittleEndian.Uint32(b[13:17]),
	}
}

// OrderType enumerates order types.
type OrderType uint8

const (
	OrderTypeMarket OrderType = iota
	OrderTypeLimit
	OrderTypeIOC
)

// TimeInForce enumerates order time-in-force values.
type TimeInForce uint8

const (
	TimeInForceDay TimeInForce = iota
	TimeInForceGTC
	TimeInForceIOC
	TimeInForceFOK
)

// OrderRequest is the decoded form of the 40-byte OrderRequest payload.
type OrderRequest struct {
	OrderID     uint64
	SymbolID    uint32
	Price       fixedpoint.Value
	Quantity    fixedpoint.Value
	Side        Direction
	Type        OrderType
	TimeInForce TimeInForce
}

// CreateOrderRequest builds an envelope carrying an OrderRequest payload.
func CreateOrderRequest(ts, seq uint64, order OrderRequest) MessageEnvelope {
	e := newHeader(TagOrderRequest, ts, seq)
	b := e.Payload[:]
	binary.LittleEndian.PutUint64(b[0:8], order.OrderID)
	binary.LittleEndian.PutUint32(b[8:12], order.SymbolID)
	binary.LittleEndian.PutUint64(b[12:20], uint64(order.Price))
	binary.LittleEndian.PutUint64(b[20:28], uint64(order.Quantity))
	b[28] = byte(order.Side)
	b[29] = byte(order.Type)
	b[30] = byte(order.TimeInForce)
	return e
}

// AsOrderRequest decodes the payload as an OrderRequest.
func (e *MessageEnvelope) AsOrderRequest() OrderRequest {
	b := e.Payload[:]
	return OrderRequest{
		OrderID:     binary.LittleEndian.Uint64(b[0:8]),
		SymbolID:    binary.LittleEndian.Uint32(b[8:12]),
		Price:       fixedpoint.Value(binary.LittleEndian.Uint64(b[12:20])),
		Quantity:    fixedpoint.Value(binary.LittleEndian.Uint64(b[20:28])),
		Side:        Direction(int8(b[28])),
		Type:        OrderType(b[29]),
		TimeInForce: TimeInForce(b[30]),
	}
}

// AlertLevel enumerates RiskAlert severities.
type AlertLevel uint8

const (
	AlertInfo AlertLevel = iota
	AlertWarn
	AlertCritical
)

// RiskAlert is the decoded form of the 40-byte RiskAlert payload.
type RiskAlert struct {
	WallClockNs uint64
	Exposure    fixedpoint.Value
	DailyPnL    fixedpoint.Value
	Level       AlertLevel
}

// CreateRiskAlert builds an envelope carrying a RiskAlert payload.
func CreateRiskAlert(ts, seq uint64, alert RiskAlert) MessageEnvelope {
	e := newHeader(TagRiskAlert, ts, seq)
	b := e.Payload[:]
	binary.LittleEndian.PutUint64(b[0:8], alert.WallClockNs)
	binary.LittleEndian.PutUint64(b[8:16], uint64(alert.Exposure))
	binary.LittleEndian.PutUint64(b[16:24], uint64(alert.DailyPnL))
	b[24] = byte(alert.Level)
	return e
}

// AsRiskAlert decodes the payload as a RiskAlert.
func (e *MessageEnvelope) AsRiskAlert() RiskAlert {
	b := e.Payload[:]
	return RiskAlert{
		WallClockNs: binary.LittleEndian.Uint64(b[0:8]),
		Exposure:    fixedpoint.Value(binary.LittleEndian.Uint64(b[8:16])),
		DailyPnL:    fixedpoint.Value(binary.LittleEndian.Uint64(b[16:24])),
		Level:       AlertLevel(b[24]),
	}
}

// HeartbeatStatus enumerates component health.
type HeartbeatStatus uint8

const (
	StatusOK HeartbeatStatus = iota
	StatusDegraded
	StatusFailing
)

// Heartbeat is the decoded form of the 16-byte Heartbeat payload.
type Heartbeat struct {
	Sequence    uint64
	ComponentID uint32
	Status      HeartbeatStatus
}

// CreateHeartbeat builds an envelope carrying a Heartbeat payload.
func CreateHeartbeat(ts, seq uint64, hb Heartbeat) MessageEnvelope {
	e := newHeader(TagHeartbeat, ts, seq)
	b := e.Payload[:]
	binary.LittleEndian.PutUint64(b[0:8], hb.Sequence)
	binary.LittleEndian.PutUint32(b[8:12], hb.ComponentID)
	b[12] = byte(hb.Status)
	return e
}

// AsHeartbeat decodes the payload as a Heartbeat.
func (e *MessageEnvelope) AsHeartbeat() Heartbeat {
	b := e.Payload[:]
	return Heartbeat{
		Sequence:    binary.LittleEndian.Uint64(b[0:8]),
		ComponentID: binary.LittleEndian.Uint32(b[8:12]),
		Status:      HeartbeatStatus(b[12]),
	}
}
