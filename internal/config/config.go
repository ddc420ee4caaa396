package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/heasarc/go-ssirewrite"
	"github.com/heasarc/go-ssirewrite/internal/fileutil"
	"github.com/heasarc/go-ssirewrite/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidWorkers  = errors.New("invalid worker count")
	ErrTooManyPatterns = errors.New("too many exclude patterns")
)

// Default locations, relative to the working directory.
const (
	DefaultInputDir    = "static_output"
	DefaultOutputDir   = "processed"
	DefaultFragmentDir = "includes"
)

// Field limits.
const (
	MaxPathLength      = 4096 // PATH_MAX on Linux
	MaxURLLength       = 2048 // Browser limit
	MaxPrefixLength    = 512
	MaxPatternLength   = 256
	MaxExcludePatterns = 100
	MaxWorkers         = 256 // explicit counts above this are a typo
)

// configDirName is the directory under os.UserConfigDir searched for
// named configs.
const configDirName = "ssirewrite"

// Config holds all settings for a processing run.
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Fragments FragmentsConfig `yaml:"fragments"`
	Rewrite   RewriteConfig   `yaml:"rewrite"`
	Exclude   []string        `yaml:"exclude"`
	Workers   int             `yaml:"workers"` // 0 = automatic
}

// InputConfig defines where generated pages are read from.
type InputConfig struct {
	Dir string `yaml:"dir"`
}

// OutputConfig defines where processed pages are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// FragmentsConfig defines include fragment lookup.
type FragmentsConfig struct {
	Dir   string `yaml:"dir"`
	Cache *bool  `yaml:"cache"` // nil = enabled
}

// RewriteConfig defines URL rewrite targets. Empty fields take the
// production defaults.
type RewriteConfig struct {
	MissionPrefix string `yaml:"missionPrefix"`
	BiblioBaseURL string `yaml:"biblioBaseURL"`
	SiteBaseURL   string `yaml:"siteBaseURL"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field with its default.
func (c *Config) ApplyDefaults() {
	if c.Input.Dir == "" {
		c.Input.Dir = DefaultInputDir
	}
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if c.Fragments.Dir == "" {
		c.Fragments.Dir = DefaultFragmentDir
	}
	if c.Fragments.Cache == nil {
		enabled := true
		c.Fragments.Cache = &enabled
	}
	if c.Rewrite.MissionPrefix == "" {
		c.Rewrite.MissionPrefix = ssirewrite.DefaultMissionPrefix
	}
	if c.Rewrite.BiblioBaseURL == "" {
		c.Rewrite.BiblioBaseURL = ssirewrite.DefaultBiblioBaseURL
	}
	if c.Rewrite.SiteBaseURL == "" {
		c.Rewrite.SiteBaseURL = ssirewrite.DefaultSiteBaseURL
	}
}

// CacheEnabled reports whether fragment caching is on.
func (c *Config) CacheEnabled() bool {
	return c.Fragments.Cache == nil || *c.Fragments.Cache
}

// Targets returns the rewrite targets, with defaults for unset fields.
func (c *Config) Targets() ssirewrite.RewriteTargets {
	t := ssirewrite.DefaultRewriteTargets()
	if c.Rewrite.MissionPrefix != "" {
		t.MissionPrefix = c.Rewrite.MissionPrefix
	}
	if c.Rewrite.BiblioBaseURL != "" {
		t.BiblioBaseURL = c.Rewrite.BiblioBaseURL
	}
	if c.Rewrite.SiteBaseURL != "" {
		t.SiteBaseURL = c.Rewrite.SiteBaseURL
	}
	return t
}

// Validate checks field lengths, rewrite targets, exclude patterns and the
// worker count. Called automatically by LoadConfig, but available for
// callers that build or merge a Config themselves.
func (c *Config) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"input.dir", c.Input.Dir},
		{"output.dir", c.Output.Dir},
		{"fragments.dir", c.Fragments.Dir},
	} {
		if err := validateFieldLength(f.name, f.value, MaxPathLength); err != nil {
			return err
		}
	}

	if err := validateFieldLength("rewrite.missionPrefix", c.Rewrite.MissionPrefix, MaxPrefixLength); err != nil {
		return err
	}
	if err := validateFieldLength("rewrite.biblioBaseURL", c.Rewrite.BiblioBaseURL, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("rewrite.siteBaseURL", c.Rewrite.SiteBaseURL, MaxURLLength); err != nil {
		return err
	}
	if err := c.Targets().Validate(); err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}

	if len(c.Exclude) > MaxExcludePatterns {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManyPatterns, len(c.Exclude), MaxExcludePatterns)
	}
	for i, p := range c.Exclude {
		if err := validateFieldLength(fmt.Sprintf("exclude[%d]", i), p, MaxPatternLength); err != nil {
			return err
		}
	}
	if err := ssirewrite.ValidateExcludePatterns(c.Exclude); err != nil {
		return fmt.Errorf("exclude: %w", err)
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidWorkers, MaxWorkers, c.Workers)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Unset fields take their defaults. Returns error if the file is not found
// (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.Decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SearchPaths lists, in lookup order, the files tried for a config name:
// <name>.yaml and <name>.yml in the working directory, then in
// <user config dir>/ssirewrite/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, configDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
