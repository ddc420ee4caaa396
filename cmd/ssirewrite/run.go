package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/heasarc/go-ssirewrite"
	"github.com/heasarc/go-ssirewrite/internal/config"
	"github.com/heasarc/go-ssirewrite/internal/fileutil"
	"github.com/heasarc/go-ssirewrite/internal/hints"
	"github.com/heasarc/go-ssirewrite/internal/logging"
	"github.com/heasarc/go-ssirewrite/internal/watch"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage        = errors.New("invalid usage")
	ErrFilesSkipped = errors.New("some files were skipped")
)

// runRun processes the input tree once, or keeps rebuilding it with --watch.
func runRun(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRunFlags("run", args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	cfg, err := resolveConfig(flags, positional)
	if err != nil {
		return err
	}

	logger := newLogger(flags, env)
	if !fileutil.DirExists(cfg.Fragments.Dir) && !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "warning: fragment directory %s not found%s\n",
			cfg.Fragments.Dir, hints.ForFragmentDir(cfg.Fragments.Dir))
	}

	report, err := processTree(ctx, cfg, logger)
	if err != nil {
		return err
	}
	printResults(report, flags.common.quiet, env)

	if flags.processing.watch {
		return watchTree(ctx, cfg, flags.common.quiet, logger, env)
	}

	if s := report.Summary(); s.Skipped > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFilesSkipped, s.Skipped, len(report.Files))
	}
	return nil
}

// resolveConfig builds the effective configuration.
// Priority: CLI flags > env vars > config file > defaults.
func resolveConfig(flags *runFlags, positional []string) (*config.Config, error) {
	if len(positional) > 1 {
		return nil, fmt.Errorf("%w: expected at most one input directory, got %d", ErrUsage, len(positional))
	}

	envCfg := loadEnvConfig()

	cfg := &config.Config{}
	name := flags.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if len(positional) == 1 {
		cfg.Input.Dir = positional[0]
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags overrides cfg with every flag given on the command line.
func mergeFlags(flags *runFlags, cfg *config.Config) {
	if flags.set["output"] {
		cfg.Output.Dir = flags.paths.output
	}
	if flags.set["fragments"] {
		cfg.Fragments.Dir = flags.paths.fragments
	}

	if flags.set["mission-prefix"] {
		cfg.Rewrite.MissionPrefix = flags.rewrite.missionPrefix
	}
	if flags.set["biblio-base-url"] {
		cfg.Rewrite.BiblioBaseURL = flags.rewrite.biblioBaseURL
	}
	if flags.set["site-base-url"] {
		cfg.Rewrite.SiteBaseURL = flags.rewrite.siteBaseURL
	}

	if flags.set["exclude"] {
		cfg.Exclude = flags.processing.exclude
	}
	if flags.set["workers"] {
		cfg.Workers = flags.processing.workers
	}
	if flags.processing.noCache {
		disabled := false
		cfg.Fragments.Cache = &disabled
	}
}

// newLogger builds the run logger on stderr.
// Default shows per-file progress; -q shows errors only.
func newLogger(flags *runFlags, env *Environment) zerolog.Logger {
	verbosity := logging.VerbosityInfo + flags.common.verbose
	if flags.common.quiet {
		verbosity = logging.VerbosityQuiet
	}
	return logging.New(env.Stderr, logging.Options{
		Verbosity: verbosity,
		JSON:      flags.common.jsonLog,
		NoColor:   !isTerminal(env.Stderr),
	})
}

// isTerminal reports whether w is a terminal that accepts color.
func isTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// processTree runs one pass over the input tree with a fresh pipeline, so
// fragment edits are picked up between watch rebuilds.
func processTree(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*ssirewrite.Report, error) {
	p, err := ssirewrite.NewPipeline(
		ssirewrite.WithRewriteTargets(cfg.Targets()),
		ssirewrite.WithFragmentDir(cfg.Fragments.Dir),
		ssirewrite.WithFragmentCache(cfg.CacheEnabled()),
	)
	if err != nil {
		return nil, err
	}

	tree, err := ssirewrite.NewTreeProcessor(p,
		ssirewrite.WithWorkers(cfg.Workers),
		ssirewrite.WithLogger(logger),
		ssirewrite.WithExclude(cfg.Exclude...),
	)
	if err != nil {
		return nil, err
	}

	report, err := tree.Run(ctx, cfg.Input.Dir, cfg.Output.Dir)
	if err != nil {
		switch {
		case errors.Is(err, ssirewrite.ErrOutputIsInput):
			return nil, fmt.Errorf("%w%s", err, hints.ForOutputInsideInput())
		case errors.Is(err, os.ErrNotExist), errors.Is(err, ssirewrite.ErrInputNotDir):
			return nil, fmt.Errorf("%w%s", err, hints.ForInputDir(cfg.Input.Dir))
		}
		return nil, err
	}
	return report, nil
}

// printResults prints the run summary to stdout and one hint per failure
// kind to stderr. Per-file lines are already logged.
func printResults(report *ssirewrite.Report, quiet bool, env *Environment) {
	s := report.Summary()
	if !quiet {
		fmt.Fprintf(env.Stdout, "%d processed, %d skipped, %d warnings (%v)\n",
			s.Processed, s.Skipped, s.Warnings, report.Duration.Round(time.Millisecond))
	}

	seen := make(map[string]bool)
	for _, f := range report.Failed() {
		var hint string
		switch {
		case errors.Is(f.Err, ssirewrite.ErrInvalidUTF8):
			hint = hints.ForInvalidUTF8()
		case errors.Is(f.Err, ssirewrite.ErrCreateDir), errors.Is(f.Err, ssirewrite.ErrWriteHTML):
			hint = hints.ForOutputDirectory()
		}
		if hint != "" && !seen[hint] {
			seen[hint] = true
			fmt.Fprintf(env.Stderr, "%s: %s%s\n", f.RelPath, errorKind(f.Err), hint)
		}
	}
}

// errorKind returns the sentinel message of a per-file failure.
func errorKind(err error) string {
	for _, sentinel := range []error{
		ssirewrite.ErrInvalidUTF8,
		ssirewrite.ErrCreateDir,
		ssirewrite.ErrWriteHTML,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// watchTree rebuilds the tree whenever the input or fragment directory
// changes, until ctx is cancelled. The output directory is never watched.
func watchTree(ctx context.Context, cfg *config.Config, quiet bool, logger zerolog.Logger, env *Environment) error {
	roots := []string{cfg.Input.Dir}
	if fileutil.DirExists(cfg.Fragments.Dir) {
		roots = append(roots, cfg.Fragments.Dir)
	}

	w := watch.New(roots,
		watch.WithSkipDirs(cfg.Output.Dir),
		watch.WithLogger(logging.Component(logger, "watch")),
	)

	logger.Info().Strs("dirs", roots).Msg("watching for changes (Ctrl+C to stop)")
	err := w.Run(ctx, func(ctx context.Context) {
		report, err := processTree(ctx, cfg, logger)
		if err != nil {
			logger.Error().Err(err).Msg("rebuild failed")
			return
		}
		printResults(report, quiet, env)
	})
	if err != nil {
		return fmt.Errorf("%w%s", err, hints.ForWatch())
	}
	return nil
}
