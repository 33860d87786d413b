package risk

import (
	"sync/atomic"

	"github.com/sagehft/sage/internal/fixedpoint"
)

// MaxSymbols bounds the position store's fixed array; must match the
// mask width used at ingress validation.
const MaxSymbols = 256

// positionCachePad separates the two shared aggregates, total exposure
// and daily PnL, so they do not sit on the same cache line. Nothing
// pads totalExposure off the last position record.
type positionCachePad [64 - 8]byte

// positionRecord is one symbol's position record. Evaluate's four
// predicates only ever read/write value; the remaining fields are
// carried for the full per-symbol record (average entry price,
// unrealized/realized PnL, last-update timestamp, trade count) and
// updated by the slower execution-report path (fills), not by the
// hot risk-evaluate path.
type positionRecord struct {
	value         atomic.Int64
	avgEntryPrice atomic.Int64
	unrealizedPnL atomic.Int64
	realizedPnL   atomic.Int64
	lastUpdateNs  atomic.Int64
	tradeCount    atomic.Uint64
}

// PositionStore holds one position record per symbol slot, mutated only
// by the RME worker, plus the two cross-worker aggregates (total
// exposure, daily PnL) exposed through atomics so observers see them
// with release/acquire semantics even though only RME ever writes them.
type PositionStore struct {
	positions [MaxSymbols]positionRecord

	totalExposure atomic.Int64
	_             positionCachePad
	dailyPnL      atomic.Int64
}

func (s *PositionStore) slot(symbolID uint32) *positionRecord {
	return &s.positions[symbolID&(MaxSymbols-1)]
}

// Position returns the current position for symbolID, masked into
// [0, MaxSymbols).
func (s *PositionStore) Position(symbolID uint32) fixedpoint.Value {
	return fixedpoint.Value(s.slot(symbolID).value.Load())
}

// SetPosition stores a new position for symbolID.
func (s *PositionStore) SetPosition(symbolID uint32, v fixedpoint.Value) {
	s.slot(symbolID).value.Store(int64(v))
}

// AvgEntryPrice returns the volume-weighted average entry price last
// recorded for symbolID.
func (s *PositionStore) AvgEntryPrice(symbolID uint32) fixedpoint.Value {
	return fixedpoint.Value(s.slot(symbolID).avgEntryPrice.Load())
}

// SetAvgEntryPrice updates the average entry price for symbolID.
func (s *PositionStore) SetAvgEntryPrice(symbolID uint32, v fixedpoint.Value) {
	s.slot(symbolID).avgEntryPrice.Store(int64(v))
}

// UnrealizedPnL returns the mark-to-market PnL last recorded for
// symbolID.
func (s *PositionStore) UnrealizedPnL(symbolID uint32) fixedpoint.Value {
	return fixedpoint.Value(s.slot(symbolID).unrealizedPnL.Load())
}

// SetUnrealizedPnL updates the unrealized PnL for symbolID.
func (s *PositionStore) SetUnrealizedPnL(symbolID uint32, v fixedpoint.Value) {
	s.slot(symbolID).unrealizedPnL.Store(int64(v))
}

// RealizedPnL returns symbolID's realized PnL for the current trading
// day.
func (s *PositionStore) RealizedPnL(symbolID uint32) fixedpoint.Value {
	return fixedpoint.Value(s.slot(symbolID).realizedPnL.Load())
}

// AddRealizedPnL atomically adds delta to symbolID's realized PnL.
func (s *PositionStore) AddRealizedPnL(symbolID uint32, delta fixedpoint.Value) fixedpoint.Value {
	return fixedpoint.Value(s.slot(symbolID).realizedPnL.Add(int64(delta)))
}

// LastUpdateNs returns the nanosecond timestamp of symbolID's last
// recorded trade.
func (s *PositionStore) LastUpdateNs(symbolID uint32) int64 {
	return s.slot(symbolID).lastUpdateNs.Load()
}

// TradeCount returns the number of trades recorded for symbolID.
func (s *PositionStore) TradeCount(symbolID uint32) uint64 {
	return s.slot(symbolID).tradeCount.Load()
}

// RecordTrade updates the execution-report fields for symbolID: average
// entry price, unrealized PnL, last-update timestamp, and trade count.
// It does not touch value; Evaluate's SetPosition call remains the only
// writer of the position itself.
func (s *PositionStore) RecordTrade(symbolID uint32, avgEntryPrice, unrealizedPnL fixedpoint.Value, nowNs int64) {
	slot := s.slot(symbolID)
	slot.avgEntryPrice.Store(int64(avgEntryPrice))
	slot.unrealizedPnL.Store(int64(unrealizedPnL))
	slot.lastUpdateNs.Store(nowNs)
	slot.tradeCount.Add(1)
}

// TotalExposure returns the current aggregate exposure.
func (s *PositionStore) TotalExposure() fixedpoint.Value {
	return fixedpoint.Value(s.totalExposure.Load())
}

// AddExposure atomically adds delta to the aggregate exposure.
func (s *PositionStore) AddExposure(delta fixedpoint.Value) fixedpoint.Value {
	return fixedpoint.Value(s.totalExposure.Add(int64(delta)))
}

// DailyPnL returns the current daily PnL.
func (s *PositionStore) DailyPnL() fixedpoint.Value {
	return fixedpoint.Value(s.dailyPnL.Load())
}

// SetDailyPnL stores the current daily PnL.
func (s *PositionStore) SetDailyPnL(v fixedpoint.Value) {
	s.dailyPnL.Store(int64(v))
}
