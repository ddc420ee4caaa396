package ssirewrite

import "runtime"

// Worker sizing constants.
const (
	// MinWorkers ensures at least one worker is available.
	MinWorkers = 1

	// MaxWorkers caps automatic sizing. Work is small per file and mostly
	// I/O, so more goroutines than this only add open file descriptors.
	MaxWorkers = 32
)

// ResolveWorkers determines the worker count.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Explicit values are not clamped to MaxWorkers.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers in the CLI.
	n := runtime.GOMAXPROCS(0)
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}
