// Package logging builds the zerolog logger used by the CLI.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Verbosity levels accepted by New.
const (
	VerbosityQuiet = -1
	VerbosityWarn  = 0
	VerbosityInfo  = 1
	VerbosityDebug = 2
)

// Canonical field names shared by library and CLI log events.
const (
	FieldFile        = "file"
	FieldOutput      = "output"
	FieldFragment    = "fragment"
	FieldVirtualPath = "virtual_path"
	FieldDurationMS  = "duration_ms"
	FieldWorkers     = "workers"
	FieldComponent   = "component"
)

// Options configures New.
type Options struct {
	Verbosity int  // -1 = errors, 0 = warnings, 1 = info, 2+ = debug
	JSON      bool // JSON lines instead of console output
	NoColor   bool
}

// New returns a logger writing to w.
// Console output is human-oriented; JSON output is one event per line.
func New(w io.Writer, opts Options) zerolog.Logger {
	out := w
	if !opts.JSON {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor,
		}
	}

	logger := zerolog.New(out).Level(Level(opts.Verbosity)).With().Timestamp().Logger()
	if opts.Verbosity >= VerbosityDebug {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// Level maps a verbosity count to a zerolog level.
func Level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= VerbosityQuiet:
		return zerolog.ErrorLevel
	case verbosity == VerbosityWarn:
		return zerolog.WarnLevel
	case verbosity == VerbosityInfo:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

// Component returns a child logger tagged with a component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str(FieldComponent, name).Logger()
}
