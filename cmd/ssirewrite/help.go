package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ssirewrite [command] [flags] [input]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Resolve SSI include directives and rewrite URLs in a tree of HTML pages.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run          Process the input tree (default)")
	fmt.Fprintln(w, "  config       Print the effective configuration")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'ssirewrite help <command>' for details on a specific command.")
}

// printRunUsage prints usage for the run command.
func printRunUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ssirewrite run [input] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Copy every .html file under input to the output directory, replacing")
	fmt.Fprintln(w, "<!--#include virtual=\"...\" --> markers with fragment contents and")
	fmt.Fprintln(w, "rewriting mission, bibliography and root-relative links.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Directory of generated pages (default \"static_output\")")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Directories:")
	fmt.Fprintln(w, "  -o, --output <dir>            Output directory (default \"processed\")")
	fmt.Fprintln(w, "  -f, --fragments <dir>         Include fragment directory (default \"includes\")")
	fmt.Fprintln(w, "  -c, --config <name>           Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rewriting:")
	fmt.Fprintln(w, "      --mission-prefix <s>      Prefix stripped from mission links")
	fmt.Fprintln(w, "      --biblio-base-url <url>   Absolute URL replacing \"biblio/\"")
	fmt.Fprintln(w, "      --site-base-url <url>     Absolute URL prepended to root-relative links")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Processing:")
	fmt.Fprintln(w, "  -w, --workers <n>             Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --exclude <glob>          Skip matching files, e.g. 'drafts/**' (repeatable)")
	fmt.Fprintln(w, "      --no-cache                Read fragments on every include")
	fmt.Fprintln(w, "      --watch                   Rebuild when input or fragments change")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                   Only show errors")
	fmt.Fprintln(w, "  -v, --verbose                 Show debug output")
	fmt.Fprintln(w, "      --json-log                Log JSON lines instead of console output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  SSIREWRITE_CONFIG, SSIREWRITE_INPUT_DIR, SSIREWRITE_OUTPUT_DIR,")
	fmt.Fprintln(w, "  SSIREWRITE_FRAGMENTS_DIR, SSIREWRITE_MISSION_PREFIX, SSIREWRITE_BIBLIO_BASE_URL,")
	fmt.Fprintln(w, "  SSIREWRITE_SITE_BASE_URL, SSIREWRITE_EXCLUDE, SSIREWRITE_WORKERS, SSIREWRITE_NO_CACHE")
	fmt.Fprintln(w, "  Priority: flags > environment > config file > defaults.")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ssirewrite config [input] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration run would use, as YAML.")
	fmt.Fprintln(w, "Accepts every run flag.")
}

// runHelp prints help for a specific command and returns the exit code.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "run":
		printRunUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: ssirewrite version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: ssirewrite help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
