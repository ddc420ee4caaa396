package main

import (
	"errors"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose int
	jsonLog bool
}

// pathFlags holds directory flags. The input directory is positional.
type pathFlags struct {
	output    string
	fragments string
}

// rewriteFlags holds URL rewrite target flags.
type rewriteFlags struct {
	missionPrefix string
	biblioBaseURL string
	siteBaseURL   string
}

// processingFlags holds tree processing flags.
type processingFlags struct {
	workers int
	exclude []string
	noCache bool
	watch   bool
}

// runFlags holds all flags for the run and config commands.
type runFlags struct {
	common     commonFlags
	paths      pathFlags
	rewrite    rewriteFlags
	processing processingFlags

	// set records which flags were given explicitly, so zero values such as
	// --workers 0 still override the config file.
	set map[string]bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.CountVarP(&f.verbose, "verbose", "v", "debug output")
	fs.BoolVar(&f.jsonLog, "json-log", false, "log JSON lines instead of console output")
}

// addPathFlags adds output and fragment directory flags to a FlagSet.
func addPathFlags(fs *flag.FlagSet, f *pathFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output directory (default \"processed\")")
	fs.StringVarP(&f.fragments, "fragments", "f", "", "include fragment directory (default \"includes\")")
}

// addRewriteFlags adds rewrite target flags to a FlagSet.
func addRewriteFlags(fs *flag.FlagSet, f *rewriteFlags) {
	fs.StringVar(&f.missionPrefix, "mission-prefix", "", "root-relative prefix stripped from mission links")
	fs.StringVar(&f.biblioBaseURL, "biblio-base-url", "", "absolute URL replacing \"biblio/\"")
	fs.StringVar(&f.siteBaseURL, "site-base-url", "", "absolute URL prepended to root-relative links")
}

// addProcessingFlags adds tree processing flags to a FlagSet.
func addProcessingFlags(fs *flag.FlagSet, f *processingFlags) {
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringArrayVar(&f.exclude, "exclude", nil, "skip files matching a glob, e.g. 'drafts/**' (repeatable)")
	fs.BoolVar(&f.noCache, "no-cache", false, "read fragments on every include")
	fs.BoolVar(&f.watch, "watch", false, "rebuild when input or fragments change")
}

// buildRunFlagSet registers every run flag on a new FlagSet bound to f.
// Shared by flag parsing and completion generation.
func buildRunFlagSet(name string, f *runFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	addPathFlags(fs, &f.paths)
	addRewriteFlags(fs, &f.rewrite)
	addProcessingFlags(fs, &f.processing)
	return fs
}

// parseRunFlags parses run command flags and returns positional args.
// Usage goes to usage on a parse error. pflag prints it itself only for
// --help.
func parseRunFlags(name string, args []string, usage io.Writer) (*runFlags, []string, error) {
	f := &runFlags{set: make(map[string]bool)}
	fs := buildRunFlagSet(name, f)
	fs.SetOutput(usage)
	fs.Usage = func() {
		if name == "config" {
			printConfigUsage(usage)
			return
		}
		printRunUsage(usage)
	}

	if err := fs.Parse(args); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fs.Usage()
		}
		return nil, nil, err
	}

	fs.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
	return f, fs.Args(), nil
}
