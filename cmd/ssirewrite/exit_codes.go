package main

import (
	"errors"
	"os"

	"github.com/heasarc/go-ssirewrite"
	"github.com/heasarc/go-ssirewrite/internal/config"
	"github.com/heasarc/go-ssirewrite/internal/watch"
)

// Exit codes for the ssirewrite CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Every file processed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Missing input, permission denied, or skipped files
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ssirewrite.ErrInputNotDir) ||
		errors.Is(err, ErrFilesSkipped) ||
		errors.Is(err, watch.ErrWatch) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidWorkers) ||
		errors.Is(err, config.ErrTooManyPatterns) ||
		errors.Is(err, ssirewrite.ErrInvalidMissionPrefix) ||
		errors.Is(err, ssirewrite.ErrInvalidBaseURL) ||
		errors.Is(err, ssirewrite.ErrInvalidExclude) ||
		errors.Is(err, ssirewrite.ErrOutputIsInput) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
