package ssirewrite

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/heasarc/go-ssirewrite/internal/fileutil"
	"github.com/heasarc/go-ssirewrite/internal/logging"
	"github.com/heasarc/go-ssirewrite/internal/pipeline"
)

// TreeProcessor runs a Pipeline over every .html file of an input tree and
// writes the results to a mirrored output tree.
type TreeProcessor struct {
	pipeline *Pipeline
	workers  int
	exclude  []string
	logger   zerolog.Logger
}

// TreeOption configures a TreeProcessor.
type TreeOption func(*TreeProcessor)

// WithWorkers sets the number of files processed concurrently.
// Zero or negative means automatic sizing (see ResolveWorkers).
func WithWorkers(n int) TreeOption {
	return func(t *TreeProcessor) {
		t.workers = n
	}
}

// WithLogger sets the logger for progress, warnings and failures.
// The default discards everything.
func WithLogger(logger zerolog.Logger) TreeOption {
	return func(t *TreeProcessor) {
		t.logger = logger
	}
}

// WithExclude skips files whose relative path matches any doublestar pattern.
func WithExclude(patterns ...string) TreeOption {
	return func(t *TreeProcessor) {
		t.exclude = append(t.exclude, patterns...)
	}
}

// NewTreeProcessor creates a TreeProcessor around p.
// Returns an error if an exclude pattern is malformed.
func NewTreeProcessor(p *Pipeline, opts ...TreeOption) (*TreeProcessor, error) {
	t := &TreeProcessor{
		pipeline: p,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := ValidateExcludePatterns(t.exclude); err != nil {
		return nil, err
	}
	t.workers = ResolveWorkers(t.workers)
	return t, nil
}

// Run processes every .html file under inputDir into outputDir.
//
// The returned error is non-nil only when the run cannot start (input
// directory missing or not a directory, output equal to input). Per-file
// failures are recorded in the Report and do not stop other files; files
// already written stay on disk. Cancelling ctx skips files not yet started.
func (t *TreeProcessor) Run(ctx context.Context, inputDir, outputDir string) (*Report, error) {
	start := time.Now()

	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInputNotDir, inputDir)
	}
	if samePath(inputDir, outputDir) {
		return nil, fmt.Errorf("%w: %s", ErrOutputIsInput, outputDir)
	}

	opts := DiscoverOptions{Exclude: t.exclude}
	if rel, ok := nestedDir(inputDir, outputDir); ok {
		opts.SkipDirs = append(opts.SkipDirs, rel)
	}

	t.logger.Debug().
		Str("input", inputDir).
		Str(logging.FieldOutput, outputDir).
		Int(logging.FieldWorkers, t.workers).
		Msg("starting run")

	files := t.processJobs(ctx, Discover(os.DirFS(inputDir), inputDir, outputDir, opts))
	return &Report{Files: files, Duration: time.Since(start)}, nil
}

// processJobs feeds discovered jobs to a bounded set of workers and collects
// their results sorted by relative path.
func (t *TreeProcessor) processJobs(ctx context.Context, jobs iter.Seq2[Job, error]) []FileResult {
	queue := make(chan Job, t.workers)
	results := make(chan FileResult, t.workers)

	var wg sync.WaitGroup
	for range t.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				if err := ctx.Err(); err != nil {
					results <- FileResult{Job: job, Err: err}
					continue
				}
				results <- t.processFile(job)
			}
		}()
	}

	go func() {
		for job, err := range jobs {
			if err != nil {
				results <- FileResult{Job: job, Err: err}
				continue
			}
			queue <- job
		}
		close(queue)
		wg.Wait()
		close(results)
	}()

	var files []FileResult
	for r := range results {
		t.logResult(r)
		files = append(files, r)
	}

	slices.SortFunc(files, func(a, b FileResult) int {
		return cmp.Compare(a.RelPath, b.RelPath)
	})
	return files
}

// processFile reads, transforms and writes a single file.
func (t *TreeProcessor) processFile(job Job) FileResult {
	start := time.Now()
	result := FileResult{Job: job}
	fail := func(err error) FileResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	data, err := os.ReadFile(job.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrReadHTML, err))
	}

	text, err := pipeline.DecodeText(data)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrReadHTML, err))
	}

	processed, err := t.pipeline.ProcessDocument(Document{RelPath: job.RelPath, HTML: text})
	if err != nil {
		return fail(err)
	}
	result.Warnings = processed.Warnings

	if err := fileutil.EnsureDir(filepath.Dir(job.OutputPath)); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrCreateDir, err))
	}

	if err := fileutil.WriteFileAtomic(job.OutputPath, processed.HTML); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrWriteHTML, err))
	}

	result.Duration = time.Since(start)
	return result
}

// logResult reports one file: warnings per include occurrence, then either
// the failure or the progress line.
func (t *TreeProcessor) logResult(r FileResult) {
	for _, w := range r.Warnings {
		t.logger.Warn().
			Str(logging.FieldFile, r.RelPath).
			Str(logging.FieldVirtualPath, w.VirtualPath).
			Str(logging.FieldFragment, w.FragmentName).
			Msg(w.Reason)
	}

	if r.Err != nil {
		t.logger.Error().Err(r.Err).Str(logging.FieldFile, r.RelPath).Msg("skipped")
		return
	}

	t.logger.Info().
		Str(logging.FieldFile, r.RelPath).
		Str(logging.FieldOutput, r.OutputPath).
		Float64(logging.FieldDurationMS, float64(r.Duration.Microseconds())/1000).
		Msg("processed")
}

// samePath reports whether a and b name the same directory path.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// Run processes inputDir into outputDir with default rewrite targets,
// fragments read from fragmentDir, and automatic worker sizing.
func Run(ctx context.Context, inputDir, outputDir, fragmentDir string) (*Report, error) {
	p, err := NewPipeline(WithFragmentDir(fragmentDir), WithFragmentCache(true))
	if err != nil {
		return nil, err
	}
	t, err := NewTreeProcessor(p)
	if err != nil {
		return nil, err
	}
	return t.Run(ctx, inputDir, outputDir)
}
