package ssirewrite

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/heasarc/go-ssirewrite/internal/pipeline"
)

// Default rewrite targets for the canonical deployment host.
const (
	DefaultMissionPrefix = "/docs/heasarc/missions/"
	DefaultBiblioBaseURL = "https://heasarc.gsfc.nasa.gov/docs/heasarc/missions/biblio/"
	DefaultSiteBaseURL   = "https://heasarc.gsfc.nasa.gov"
)

// RewriteTargets configures the URL rewrite rules.
type RewriteTargets struct {
	MissionPrefix string // root-relative prefix stripped from mission-internal links
	BiblioBaseURL string // absolute URL that replaces "biblio/"
	SiteBaseURL   string // absolute URL prepended to remaining root-relative links
}

// DefaultRewriteTargets returns the production targets.
func DefaultRewriteTargets() RewriteTargets {
	return RewriteTargets{
		MissionPrefix: DefaultMissionPrefix,
		BiblioBaseURL: DefaultBiblioBaseURL,
		SiteBaseURL:   DefaultSiteBaseURL,
	}
}

// Validate checks that the targets are usable.
// MissionPrefix must be root-relative; both URLs must be absolute http(s) URLs.
func (t RewriteTargets) Validate() error {
	if !strings.HasPrefix(t.MissionPrefix, "/") || strings.HasPrefix(t.MissionPrefix, "//") {
		return fmt.Errorf("%w: %q (must start with a single /)", ErrInvalidMissionPrefix, t.MissionPrefix)
	}
	if strings.ContainsAny(t.MissionPrefix, `"'`) {
		return fmt.Errorf("%w: %q (must not contain quotes)", ErrInvalidMissionPrefix, t.MissionPrefix)
	}
	if err := validateBaseURL("biblio base URL", t.BiblioBaseURL); err != nil {
		return err
	}
	return validateBaseURL("site base URL", t.SiteBaseURL)
}

// validateBaseURL accepts absolute http and https URLs with a host.
func validateBaseURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrInvalidBaseURL, field, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %s %q (scheme must be http or https)", ErrInvalidBaseURL, field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %s %q (missing host)", ErrInvalidBaseURL, field, raw)
	}
	return nil
}

// normalize converts validated targets to the rule set's form:
// the biblio base always ends with "/", the site base never does.
func (t RewriteTargets) normalize() pipeline.Targets {
	biblio := t.BiblioBaseURL
	if !strings.HasSuffix(biblio, "/") {
		biblio += "/"
	}
	return pipeline.Targets{
		MissionPrefix: t.MissionPrefix,
		BiblioBaseURL: biblio,
		SiteBaseURL:   strings.TrimRight(t.SiteBaseURL, "/"),
	}
}

// Warning reports an include marker that resolved to nothing.
type Warning = pipeline.Warning

// Document is one HTML file's text and its slash-separated path relative
// to the input directory.
type Document struct {
	RelPath string
	HTML    string
}

// Result holds the output of processing one document.
type Result struct {
	HTML     string
	Warnings []Warning
}

// Job is one discovered file and its mirrored destination.
type Job struct {
	RelPath    string // slash-separated, relative to the input directory
	InputPath  string
	OutputPath string
}

// FileResult holds the outcome of processing a single file.
type FileResult struct {
	Job
	Warnings []Warning
	Err      error
	Duration time.Duration
}

// Summary counts the outcome of a tree run.
type Summary struct {
	Processed int
	Skipped   int
	Warnings  int
}

// Report is the outcome of a tree run. Files are sorted by RelPath.
type Report struct {
	Files    []FileResult
	Duration time.Duration
}

// Summary tallies processed files, skipped files and include warnings.
func (r *Report) Summary() Summary {
	var s Summary
	for _, f := range r.Files {
		s.Warnings += len(f.Warnings)
		if f.Err != nil {
			s.Skipped++
		} else {
			s.Processed++
		}
	}
	return s
}

// Failed returns the results of skipped files.
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}
