// Package ops loads the JSON configuration shared by the three worker
// binaries (ade, rme, poe): the symbol registry, RME's risk limits, ADE's tuning
// constants, and the audit log path. Decimal-string limits are parsed
// with github.com/yanun0323/decimal and converted to fixed-point once,
// at load time, never on a hot path.
package ops

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/yanun0323/decimal"

	"github.com/sagehft/sage/internal/analytics"
	"github.com/sagehft/sage/internal/fixedpoint"
	"github.com/sagehft/sage/internal/risk"
)

// FileConfig mirrors the on-disk JSON layout.
type FileConfig struct {
	Registry  RegistryConfig  `json:"registry"`
	Risk      RiskConfig      `json:"risk"`
	Analytics AnalyticsConfig `json:"analytics"`
	Audit     AuditConfig     `json:"audit"`
}

// RegistryConfig maps human-readable symbol names to the numeric ids
// used by the masked per-symbol lookups throughout the pipeline.
type RegistryConfig struct {
	Symbols []SymbolEntry `json:"symbols"`
}

// SymbolEntry names a single registry slot.
type SymbolEntry struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

// RiskConfig carries RME's limits as decimal strings, parsed into
// fixed-point at load time.
type RiskConfig struct {
	PositionLimit  string `json:"positionLimit"`
	OrderSizeLimit string `json:"orderSizeLimit"`
	ExposureLimit  string `json:"exposureLimit"`
	LossLimit      string `json:"lossLimit"`
}

// AnalyticsConfig carries ADE's per-symbol tuning constants. Zero
// values fall back to analytics.DefaultSymbolConfig.
type AnalyticsConfig struct {
	RollingWindow    int    `json:"rollingWindow"`
	PriceHalfLife    float64 `json:"priceHalfLife"`
	VolumeHalfLife   float64 `json:"volumeHalfLife"`
	RegimeHalfLife   float64 `json:"regimeHalfLife"`
	ZMax             string `json:"zMax"`
	AdaptiveBase     int    `json:"adaptiveBase"`
	AdaptiveMin      int    `json:"adaptiveMin"`
	AdaptiveVolScale string `json:"adaptiveVolScale"`
}

// AuditConfig names the append-only log file and the background sync
// cadence.
type AuditConfig struct {
	Path           string `json:"path"`
	SyncIntervalMs int    `json:"syncIntervalMs"`
}

// Registry maps symbol name to id and back.
type Registry struct {
	byName map[string]uint32
	byID   map[uint32]string
}

// SymbolID looks up a symbol id by name.
func (r *Registry) SymbolID(name string) (uint32, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// SymbolName looks up a symbol name by id.
func (r *Registry) SymbolName(id uint32) (string, bool) {
	name, ok := r.byID[id]
	return name, ok
}

// Loaded is the fully resolved configuration.
type Loaded struct {
	Registry      *Registry
	Risk          risk.Config
	Analytics     analytics.SymbolConfig
	AuditPath     string
	SyncInterval  int
}

// Load reads and resolves the JSON config at path.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}

	registry, err := buildRegistry(cfg.Registry)
	if err != nil {
		return Loaded{}, err
	}
	riskCfg, err := resolveRiskConfig(cfg.Risk)
	if err != nil {
		return Loaded{}, err
	}
	analyticsCfg, err := resolveAnalyticsConfig(cfg.Analytics)
	if err != nil {
		return Loaded{}, err
	}
	if cfg.Audit.Path == "" {
		return Loaded{}, fmt.Errorf("ops: audit.path is required")
	}

	return Loaded{
		Registry:     registry,
		Risk:         riskCfg,
		Analytics:    analyticsCfg,
		AuditPath:    cfg.Audit.Path,
		SyncInterval: cfg.Audit.SyncIntervalMs,
	}, nil
}

func buildRegistry(cfg RegistryConfig) (*Registry, error) {
	reg := &Registry{byName: make(map[string]uint32), byID: make(map[uint32]string)}
	for _, sym := range cfg.Symbols {
		if sym.Name == "" {
			return nil, fmt.Errorf("ops: registry entry with empty name")
		}
		if sym.ID >= 256 {
			return nil, fmt.Errorf("ops: symbol %q id %d out of range", sym.Name, sym.ID)
		}
		if _, exists := reg.byID[sym.ID]; exists {
			return nil, fmt.Errorf("ops: duplicate symbol id %d", sym.ID)
		}
		reg.byName[sym.Name] = sym.ID
		reg.byID[sym.ID] = sym.Name
	}
	return reg, nil
}

func resolveRiskConfig(cfg RiskConfig) (risk.Config, error) {
	position, err := parseDecimal(cfg.PositionLimit, "risk.positionLimit")
	if err != nil {
		return risk.Config{}, err
	}
	orderSize, err := parseDecimal(cfg.OrderSizeLimit, "risk.orderSizeLimit")
	if err != nil {
		return risk.Config{}, err
	}
	exposure, err := parseDecimal(cfg.ExposureLimit, "risk.exposureLimit")
	if err != nil {
		return risk.Config{}, err
	}
	loss, err := parseDecimal(cfg.LossLimit, "risk.lossLimit")
	if err != nil {
		return risk.Config{}, err
	}
	return risk.Config{
		PositionLimit:  position,
		OrderSizeLimit: orderSize,
		ExposureLimit:  exposure,
		LossLimit:      loss,
	}, nil
}

func resolveAnalyticsConfig(cfg AnalyticsConfig) (analytics.SymbolConfig, error) {
	out := analytics.DefaultSymbolConfig()
	if cfg.RollingWindow != 0 {
		out.RollingWindow = cfg.RollingWindow
	}
	if cfg.PriceHalfLife != 0 {
		out.PriceHalfLife = cfg.PriceHalfLife
	}
	if cfg.VolumeHalfLife != 0 {
		out.VolumeHalfLife = cfg.VolumeHalfLife
	}
	if cfg.RegimeHalfLife != 0 {
		out.RegimeHalfLife = cfg.RegimeHalfLife
	}
	if cfg.ZMax != "" {
		v, err := parseDecimal(cfg.ZMax, "analytics.zMax")
		if err != nil {
			return analytics.SymbolConfig{}, err
		}
		out.ZMax = v
	}
	if cfg.AdaptiveBase != 0 {
		out.AdaptiveBase = cfg.AdaptiveBase
	}
	if cfg.AdaptiveMin != 0 {
		out.AdaptiveMin = cfg.AdaptiveMin
	}
	if cfg.AdaptiveVolScale != "" {
		v, err := parseDecimal(cfg.AdaptiveVolScale, "analytics.adaptiveVolScale")
		if err != nil {
			return analytics.SymbolConfig{}, err
		}
		out.AdaptiveVolScale = v
	}
	return out, nil
}

// parseDecimal parses a decimal string into a fixedpoint.Value. Empty
// strings are treated as zero.
func parseDecimal(s, field string) (fixedpoint.Value, error) {
	if s == "" {
		return fixedpoint.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("ops: %s: %w", field, err)
	}
	f, _ := d.Float64()
	return fixedpoint.FromFloat64(f), nil
}
