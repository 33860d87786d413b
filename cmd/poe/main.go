// Command poe runs the order execution worker: it drains a ring of
// order-request envelopes approved by RME, records each lifecycle
// transition to the append-only audit log, and encodes a FIX 4.2
// NewOrderSingle for transmission. The actual exchange socket write is
// an external collaborator outside this package; poe only produces
// the wire bytes and the durable record of having done so.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"

	"github.com/sagehft/sage/internal/audit"
	"github.com/sagehft/sage/internal/envelope"
	"github.com/sagehft/sage/internal/obs"
	"github.com/sagehft/sage/internal/ops"
	"github.com/sagehft/sage/internal/ring"
	"github.com/sagehft/sage/internal/shutdown"
	"github.com/sagehft/sage/internal/wire"
)

const (
	inRingCapacity = 4096
	syncInterval   = 50 * time.Millisecond
)

func main() {
	if err := run(); err != nil {
		log.Printf("poe: %v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to JSON config")
	auditPath := flag.String("audit-path", "audit.log", "append-only audit log path")
	flag.Parse()

	stopProfiler, err := maybeStartProfiler("poe")
	if err != nil {
		return err
	}
	defer stopProfiler()

	path := *auditPath
	interval := syncInterval
	if *configPath != "" {
		loaded, err := ops.Load(*configPath)
		if err != nil {
			return fmt.Errorf("poe: config load: %w", err)
		}
		path = loaded.AuditPath
		if loaded.SyncInterval > 0 {
			interval = time.Duration(loaded.SyncInterval) * time.Millisecond
		}
	}

	logger, err := audit.Open(path)
	if err != nil {
		return fmt.Errorf("poe: open audit log: %w", err)
	}
	defer logger.Close()

	ctx, stop := shutdown.Context()
	defer stop()

	go logger.RunSyncLoop(ctx, interval)

	var runtimeStats obs.RuntimeStats
	go runtimeStats.Run(ctx, 15*time.Second)

	metrics := obs.NewMetrics()
	in := ring.New(inRingCapacity)

	var e envelope.MessageEnvelope
	for ctx.Err() == nil {
		if !in.TryPop(&e) {
			continue
		}
		if e.Tag != envelope.TagOrderRequest {
			continue
		}
		order := e.AsOrderRequest()

		if err := logger.LogOrder(order.OrderID, order.SymbolID, int8(order.Side), order.Price, order.Quantity); err != nil {
			log.Printf("poe: log order %d: %v", order.OrderID, err)
			continue
		}

		side := wire.SideBuy
		if order.Side < 0 {
			side = wire.SideSell
		}
		_ = wire.NewOrderSingle(order.OrderID, order.SymbolID, side, order.Quantity, order.Price, time.Now())

		if err := logger.LogSent(order.OrderID); err != nil {
			log.Printf("poe: log sent %d: %v", order.OrderID, err)
			continue
		}
		metrics.ObserveEnvelope(&e, uint64(time.Now().UnixNano()))
	}

	snap := logger.Snapshot()
	log.Printf("poe: entries=%d truncations=%d syncs=%d", snap.EntriesLogged, snap.Truncations, snap.SyncCount)
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
