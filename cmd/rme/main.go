// Command rme runs the risk management engine worker: it drains a ring
// of signal envelopes forwarded by MIND, evaluates each against the
// configured limits, and forwards approved ones as order envelopes for
// POE to transmit. A background monitor watches daily PnL for a
// loss-limit breach independently of the hot evaluate path.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"

	"github.com/sagehft/sage/internal/envelope"
	"github.com/sagehft/sage/internal/obs"
	"github.com/sagehft/sage/internal/ops"
	"github.com/sagehft/sage/internal/ring"
	"github.com/sagehft/sage/internal/risk"
	"github.com/sagehft/sage/internal/shutdown"
	"github.com/sagehft/sage/internal/tsc"
)

const (
	inRingCapacity  = 4096
	outRingCapacity = 4096
	monitorInterval = 1 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Printf("rme: %v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to JSON config")
	flag.Parse()

	stopProfiler, err := maybeStartProfiler("rme")
	if err != nil {
		return err
	}
	defer stopProfiler()

	cfg := risk.Config{}
	if *configPath != "" {
		loaded, err := ops.Load(*configPath)
		if err != nil {
			return fmt.Errorf("rme: config load: %w", err)
		}
		cfg = loaded.Risk
	}

	ctx, stop := shutdown.Context()
	defer stop()

	metrics := obs.NewMetrics()
	calibrator := tsc.MonotonicCalibrator{}
	positions := &risk.PositionStore{}
	breaker := &risk.CircuitBreaker{}
	engine := risk.NewEngine(cfg, breaker, positions, calibrator, metrics)

	monitor := risk.NewMonitor(positions, breaker, int64(cfg.LossLimit))
	go monitor.Run(ctx, monitorInterval)

	var runtimeStats obs.RuntimeStats
	go runtimeStats.Run(ctx, 15*time.Second)

	// in and out are the SPSC rings to ADE and POE respectively. Wiring
	// them to the actual cross-process shared memory segment is a
	// deployment concern outside this package.
	in := ring.New(inRingCapacity)
	out := ring.New(outRingCapacity)

	var e envelope.MessageEnvelope
	var seq uint64
	for ctx.Err() == nil {
		if !in.TryPop(&e) {
			continue
		}
		if e.Tag != envelope.TagSignal {
			continue
		}
		sig := e.AsSignal()

		decision := engine.Evaluate(risk.SignalInput{
			SymbolID:   sig.SymbolID,
			Confidence: sig.Confidence,
			Direction:  int8(sig.Direction),
		})
		if !decision.Approved {
			continue
		}

		seq++
		orderEnv := envelope.CreateOrderRequest(uint64(time.Now().UnixNano()), seq, envelope.OrderRequest{
			OrderID:     seq,
			SymbolID:    sig.SymbolID,
			Quantity:    decision.OrderValue,
			Side:        sig.Direction,
			Type:        envelope.OrderTypeMarket,
			TimeInForce: envelope.TimeInForceIOC,
		})
		if !out.TryPush(orderEnv) {
			metrics.IncQueueDrop()
		}
	}

	log.Printf("rme: shutdown complete")
	return nil
}

func maybeStartProfiler(app string) (func(), error) {
	addr := os.Getenv("SAGE_PYROSCOPE_ADDR")
	if addr == "" {
		return func() {}, nil
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "sage." + app,
		ServerAddress:   addr,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pyroscope start: %w", err)
	}
	return func() { _ = profiler.Stop() }, nil
}
