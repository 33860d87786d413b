// Command ade runs the analytics/decision engine worker: it reads
// newline-delimited market-tick JSON from stdin, validates it at the
// ingress boundary, updates per-symbol analytics state, and forwards
// any produced signal through MIND's pass-through sink onto the ring
// that feeds RME.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"

	"github.com/sagehft/sage/internal/analytics"
	"github.com/sagehft/sage/internal/envelope"
	"github.com/sagehft/sage/internal/ingress"
	"github.com/sagehft/sage/internal/mind"
	"github.com/sagehft/sage/internal/obs"
	"github.com/sagehft/sage/internal/ops"
	"github.com/sagehft/sage/internal/ring"
	"github.com/sagehft/sage/internal/shutdown"
	"github.com/sagehft/sage/internal/tsc"
)

const outRingCapacity = 4096

func main() {
	if err := run(); err != nil {
		log.Printf("ade: %v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to JSON config")
	flag.Parse()

	stopProfiler, err := maybeStartProfiler("ade")
	if err != nil {
		return err
	}
	defer stopProfiler()

	analyticsCfg := analytics.DefaultSymbolConfig()
	if *configPath != "" {
		loaded, err := ops.Load(*configPath)
		if err != nil {
			return fmt.Errorf("ade: config load: %w", err)
		}
		analyticsCfg = loaded.Analytics
	}

	ctx, stop := shutdown.Context()
	defer stop()

	metrics := obs.NewMetrics()
	calibrator := tsc.MonotonicCalibrator{}
	engine := analytics.NewEngine(analyticsCfg, calibrator, metrics)

	out := ring.New(outRingCapacity)
	sink := mind.NewPassThrough(out)

	var runtimeStats obs.RuntimeStats
	go runtimeStats.Run(ctx, 15*time.Second)

	validator := &ingress.Validator{}
	var seq uint64

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
scan:
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			break scan
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		tick, err := validator.Parse(line)
		if err != nil {
			continue
		}

		seq++
		sig := engine.OnTick(tick.SymbolID, tick.Price, tick.Quantity, uint64(time.Now().UnixNano()))
		if !sig.Produced {
			continue
		}

		e := envelope.CreateSignal(uint64(time.Now().UnixNano()), seq, envelope.Signal{
			SymbolID:   tick.SymbolID,
			Confidence: sig.Confidence,
			Direction:  envelope.Direction(sig.Direction),
		})
		if err := sink.Submit(e); err != nil {
			metrics.IncQueueDrop()
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("ade: read tick stream: %w", err)
	}

	snap := validator.Snapshot()
	forwarded, dropped := sink.Counts()
	log.Printf("ade: accepted=%d rejected=%d forwarded=%d dropped=%d",
		snap.Accepted, snap.Rejected, forwarded, dropped)
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
