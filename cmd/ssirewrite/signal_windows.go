//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// shutdownSignals stop a run or a watch loop.
// syscall.SIGTERM is not delivered on Windows.
var shutdownSignals = []os.Signal{os.Interrupt}

// notifyContext returns a context that is canceled when an interrupt
// signal is received. Call stop() to release resources.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
