// Package shutdown wires process-level signal handling for the three
// worker binaries (ade, rme, poe). It is a thin adapter over SIGINT/SIGTERM and the
// cooperative-cancellation primitives used throughout the pipeline's
// background loops.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanun0323/pkg/sys"
)

// Context returns a context cancelled on SIGINT or SIGTERM, and the
// stop function that releases the underlying signal notification. Each
// worker's main calls this once and threads the context through every
// background loop (RunSyncLoop, RuntimeStats.Run, the monitor loop).
func Context() (context.Context, func()) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Done returns a channel closed on process shutdown, for select loops
// that were written against a plain channel rather than a context.
func Done() <-chan struct{} {
	return sys.Shutdown()
}
