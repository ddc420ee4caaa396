package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/heasarc/go-ssirewrite/internal/yamlutil"
)

// runConfig prints the effective configuration as YAML.
// Accepts the same flags and input argument as run, so a command line can be
// checked before running it.
func runConfig(args []string, env *Environment) error {
	flags, positional, err := parseRunFlags("config", args, env.Stderr)
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

	out, err := yamlutil.Encode(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(out)
	return err
}
