package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	undo, _ := maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))

	code := runMain(os.Args, DefaultEnv())
	undo()
	os.Exit(code)
}

// commands lists the subcommand names. Anything else is passed to run.
var commands = map[string]bool{
	"run":        true,
	"config":     true,
	"version":    true,
	"help":       true,
	"completion": true,
}

// runMain dispatches to a command and returns the process exit code.
// With no command, run is assumed, so a bare "ssirewrite" processes the
// default directories.
func runMain(args []string, env *Environment) int {
	warnUnknownEnvVars(env.Stderr)

	cmd, rest := "run", []string{}
	if len(args) > 1 {
		rest = args[1:]
		if commands[args[1]] {
			cmd, rest = args[1], args[2:]
		} else if !strings.HasPrefix(args[1], "-") && !looksLikeDir(args[1]) {
			fmt.Fprintf(env.Stderr, "unknown command: %s (no input directory by that name either; use ./%s for a directory not created yet)\n", args[1], args[1])
			printUsage(env.Stderr)
			return ExitUsage
		}
	}

	var err error
	switch cmd {
	case "run":
		ctx, stop := notifyContext(context.Background())
		err = runRun(ctx, rest, env)
		stop()
	case "config":
		err = runConfig(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "ssirewrite %s\n", Version)
	case "help":
		return runHelp(rest, env)
	case "completion":
		err = runCompletion(rest, env)
	}

	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// looksLikeDir reports whether arg names an input directory rather than a
// mistyped command: it exists, or it contains a path separator.
func looksLikeDir(arg string) bool {
	if strings.ContainsAny(arg, `/\`) {
		return true
	}
	_, err := os.Stat(arg)
	return err == nil
}
