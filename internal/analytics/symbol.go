package analytics

import "github.com/sagehft/sage/internal/fixedpoint"

// SymbolState is the per-symbol analytics slot: a rolling-stats
// accumulator, an EWMA of price, an EWMA of volume, and a regime
// detector. Created once at Engine construction, mutated exclusively by
// the ADE worker, never destroyed.
type SymbolState struct {
	Rolling    *RollingStats
	PriceEWMA  *EWMAStats
	VolumeEWMA *EWMAStats
	Regime     *RegimeDetector
	Winsorizer *Winsorizer
	Window     *AdaptiveWindow

	GatedSignals uint64
}

// SymbolConfig tunes the per-symbol accumulators.
type SymbolConfig struct {
	RollingWindow    int
	PriceHalfLife    float64
	VolumeHalfLife   float64
	RegimeHalfLife   float64
	ZMax             fixedpoint.Value
	AdaptiveBase     int
	AdaptiveMin      int
	AdaptiveVolScale fixedpoint.Value
}

// DefaultSymbolConfig returns reasonable defaults for a 256-tick rolling
// window, 50-tick price/regime half-life, and a 3.0 winsorization bound.
func DefaultSymbolConfig() SymbolConfig {
	return SymbolConfig{
		RollingWindow:    256,
		PriceHalfLife:    50,
		VolumeHalfLife:   50,
		RegimeHalfLife:   50,
		ZMax:             DefaultZMax,
		AdaptiveBase:     256,
		AdaptiveMin:       16,
		AdaptiveVolScale: fixedpoint.One,
	}
}

// NewSymbolState constructs a slot from cfg.
func NewSymbolState(cfg SymbolConfig) *SymbolState {
	return &SymbolState{
		Rolling:    NewRollingStats(cfg.RollingWindow),
		PriceEWMA:  NewEWMAStats(cfg.PriceHalfLife),
		VolumeEWMA: NewEWMAStats(cfg.VolumeHalfLife),
		Regime:     NewRegimeDetector(cfg.RegimeHalfLife),
		Winsorizer: NewWinsorizer(cfg.ZMax),
		Window:     NewAdaptiveWindow(cfg.AdaptiveBase, cfg.AdaptiveMin, cfg.AdaptiveVolScale),
	}
}

// Direction mirrors envelope.Direction for signal-generation output
// without importing envelope into the numeric core.
type Direction int8

const (
	DirectionShort Direction = -1
	DirectionFlat  Direction = 0
	DirectionLong  Direction = 1
)

// Signal is the output of one tick's mean-reversion evaluation.
type Signal struct {
	Produced   bool
	Direction  Direction
	Confidence fixedpoint.Value
	ZScore     fixedpoint.Value
	Outlier    bool
	Regime     Regime
}

// signalThreshold is the minimum |z_rolling| required to consider
// producing a signal: S/2.
var signalThreshold = fixedpoint.Value(fixedpoint.Scale / 2)

// Observe feeds one tick's price/volume into the symbol's accumulators
// and returns the mean-reversion signal for this tick, if any.
//
// A signal is produced iff |z_rolling| > S/2 AND the current regime is
// not REGIME_CHANGE. Direction is the sign of -z (reversion); confidence
// is |z|. When the magnitude threshold is met but the regime gate
// blocks emission, GatedSignals increments; this is expected
// operational behavior, not an error.
func (s *SymbolState) Observe(price, volume fixedpoint.Value) Signal {
	s.Rolling.Update(price)
	s.PriceEWMA.Update(price)
	s.VolumeEWMA.Update(volume)

	variance := s.Rolling.Variance()
	regime := s.Regime.Update(variance)
	s.Window.Update(variance)

	zRolling := s.Rolling.ZScore(price)
	zRolling, outlier := s.Winsorizer.Cap(zRolling)

	out := Signal{ZScore: zRolling, Outlier: outlier, Regime: regime}

	if fixedpoint.Abs(zRolling) <= signalThreshold {
		return out
	}

	if regime == RegimeChange {
		s.GatedSignals++
		return out
	}

	out.Produced = true
	out.Confidence = fixedpoint.Abs(zRolling)
	switch {
	case zRolling > 0:
		out.Direction = DirectionShort
	case zRolling < 0:
		out.Direction = DirectionLong
	default:
		out.Direction = DirectionFlat
	}
	return out
}
