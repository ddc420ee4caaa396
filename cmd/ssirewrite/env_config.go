package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/heasarc/go-ssirewrite/internal/config"
)

// envPrefix starts every recognized environment variable.
const envPrefix = "SSIREWRITE_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath    string   // SSIREWRITE_CONFIG: config file name or path
	InputDir      string   // SSIREWRITE_INPUT_DIR
	OutputDir     string   // SSIREWRITE_OUTPUT_DIR
	FragmentsDir  string   // SSIREWRITE_FRAGMENTS_DIR
	MissionPrefix string   // SSIREWRITE_MISSION_PREFIX
	BiblioBaseURL string   // SSIREWRITE_BIBLIO_BASE_URL
	SiteBaseURL   string   // SSIREWRITE_SITE_BASE_URL
	Exclude       []string // SSIREWRITE_EXCLUDE: comma-separated globs
	Workers       int      // SSIREWRITE_WORKERS: parallel workers
	NoCache       *bool    // SSIREWRITE_NO_CACHE: true disables the fragment cache
}

// knownEnvVars lists valid SSIREWRITE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"SSIREWRITE_CONFIG":          true,
	"SSIREWRITE_INPUT_DIR":       true,
	"SSIREWRITE_OUTPUT_DIR":      true,
	"SSIREWRITE_FRAGMENTS_DIR":   true,
	"SSIREWRITE_MISSION_PREFIX":  true,
	"SSIREWRITE_BIBLIO_BASE_URL": true,
	"SSIREWRITE_SITE_BASE_URL":   true,
	"SSIREWRITE_EXCLUDE":         true,
	"SSIREWRITE_WORKERS":         true,
	"SSIREWRITE_NO_CACHE":        true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparseable numbers and booleans are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:    os.Getenv("SSIREWRITE_CONFIG"),
		InputDir:      os.Getenv("SSIREWRITE_INPUT_DIR"),
		OutputDir:     os.Getenv("SSIREWRITE_OUTPUT_DIR"),
		FragmentsDir:  os.Getenv("SSIREWRITE_FRAGMENTS_DIR"),
		MissionPrefix: os.Getenv("SSIREWRITE_MISSION_PREFIX"),
		BiblioBaseURL: os.Getenv("SSIREWRITE_BIBLIO_BASE_URL"),
		SiteBaseURL:   os.Getenv("SSIREWRITE_SITE_BASE_URL"),
	}

	if exclude := os.Getenv("SSIREWRITE_EXCLUDE"); exclude != "" {
		for _, p := range strings.Split(exclude, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Exclude = append(cfg.Exclude, p)
			}
		}
	}

	if workers := os.Getenv("SSIREWRITE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	if noCache := os.Getenv("SSIREWRITE_NO_CACHE"); noCache != "" {
		if b, err := strconv.ParseBool(noCache); err == nil {
			cfg.NoCache = &b
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized SSIREWRITE_* variables.
// Helps catch typos like SSIREWRITE_OUTPUT instead of SSIREWRITE_OUTPUT_DIR.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config file values with set environment variables.
// CLI flags are applied afterwards by mergeFlags, giving:
// CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.InputDir != "" {
		cfg.Input.Dir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.FragmentsDir != "" {
		cfg.Fragments.Dir = env.FragmentsDir
	}

	if env.MissionPrefix != "" {
		cfg.Rewrite.MissionPrefix = env.MissionPrefix
	}
	if env.BiblioBaseURL != "" {
		cfg.Rewrite.BiblioBaseURL = env.BiblioBaseURL
	}
	if env.SiteBaseURL != "" {
		cfg.Rewrite.SiteBaseURL = env.SiteBaseURL
	}

	if len(env.Exclude) > 0 {
		cfg.Exclude = env.Exclude
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.NoCache != nil {
		enabled := !*env.NoCache
		cfg.Fragments.Cache = &enabled
	}
}
