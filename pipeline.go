package ssirewrite

import (
	"io/fs"
	"os"

	"github.com/heasarc/go-ssirewrite/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.IncludeResolver = (*pipeline.FSIncludeResolver)(nil)
	_ pipeline.URLRewriter     = (*pipeline.RuleRewriter)(nil)
)

// Pipeline composes include resolution and URL rewriting for one document.
// Create with NewPipeline. A Pipeline is safe for concurrent use.
type Pipeline struct {
	cfg      pipelineConfig
	resolver pipeline.IncludeResolver
	rewriter pipeline.URLRewriter
}

// pipelineConfig holds options collected before construction.
type pipelineConfig struct {
	targets     RewriteTargets
	fragmentFS  fs.FS
	fragmentDir string
	cache       bool
}

// Option configures a Pipeline.
type Option func(*pipelineConfig)

// WithRewriteTargets sets the mission prefix and base URLs.
func WithRewriteTargets(t RewriteTargets) Option {
	return func(c *pipelineConfig) {
		c.targets = t
	}
}

// WithFragmentDir reads include fragments from dir.
func WithFragmentDir(dir string) Option {
	return func(c *pipelineConfig) {
		c.fragmentDir = dir
		c.fragmentFS = nil
	}
}

// WithFragmentFS reads include fragments from fsys. Takes precedence over
// an earlier WithFragmentDir.
func WithFragmentFS(fsys fs.FS) Option {
	return func(c *pipelineConfig) {
		c.fragmentFS = fsys
		c.fragmentDir = ""
	}
}

// WithFragmentCache reads each fragment at most once for the pipeline's
// lifetime. Only safe when fragments do not change while the pipeline is used.
func WithFragmentCache(enabled bool) Option {
	return func(c *pipelineConfig) {
		c.cache = enabled
	}
}

// NewPipeline creates a Pipeline. Without options it uses
// DefaultRewriteTargets and no fragment directory, so every include marker
// is removed with a warning.
// Returns an error wrapping ErrInvalidMissionPrefix or ErrInvalidBaseURL
// if the targets are invalid.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	cfg := pipelineConfig{targets: DefaultRewriteTargets()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.targets.Validate(); err != nil {
		return nil, err
	}

	fragments := cfg.fragmentFS
	if fragments == nil && cfg.fragmentDir != "" {
		fragments = os.DirFS(cfg.fragmentDir)
	}

	return &Pipeline{
		cfg:      cfg,
		resolver: pipeline.NewFSIncludeResolver(fragments, cfg.cache),
		rewriter: pipeline.NewRuleRewriter(cfg.targets.normalize()),
	}, nil
}

// Targets returns the rewrite targets the pipeline was built with.
func (p *Pipeline) Targets() RewriteTargets {
	return p.cfg.targets
}

// Process resolves include markers, then rewrites URLs. Fragment content is
// spliced in before rewriting so its links are rewritten too.
// Missing fragments are reported in Result.Warnings, not as errors.
// Returns an error wrapping ErrReadFragment if a fragment exists but
// cannot be read.
func (p *Pipeline) Process(htmlContent string) (*Result, error) {
	resolved, warnings, err := p.resolver.ResolveIncludes(htmlContent)
	if err != nil {
		return nil, err
	}
	return &Result{
		HTML:     p.rewriter.RewriteURLs(resolved),
		Warnings: warnings,
	}, nil
}

// ProcessDocument is Process for a Document.
func (p *Pipeline) ProcessDocument(doc Document) (*Result, error) {
	return p.Process(doc.HTML)
}

// Rewrite applies only the URL rewrite rules.
func (p *Pipeline) Rewrite(htmlContent string) string {
	return p.rewriter.RewriteURLs(htmlContent)
}
