package ssirewrite

import (
	"fmt"
	"io/fs"
	"iter"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// HTMLExtension is the file suffix selected by discovery. Matching is
// case-sensitive.
const HTMLExtension = ".html"

// DiscoverOptions narrows discovery.
type DiscoverOptions struct {
	// Exclude holds doublestar patterns matched against slash-separated
	// relative paths, e.g. "drafts/**" or "**/_*.html".
	Exclude []string

	// SkipDirs lists slash-separated relative directories that are not
	// descended into.
	SkipDirs []string
}

// Discover lazily walks fsys and yields one Job per regular file whose name
// ends in ".html". InputPath is filepath.Join(inputDir, rel) and OutputPath
// is OutputPath(outputDir, rel).
//
// Unreadable directories are yielded as errors and the walk continues. The
// sequence is finite and can be ranged over again to walk the tree again.
func Discover(fsys fs.FS, inputDir, outputDir string, opts DiscoverOptions) iter.Seq2[Job, error] {
	skip := make(map[string]bool, len(opts.SkipDirs))
	for _, dir := range opts.SkipDirs {
		skip[path.Clean(dir)] = true
	}

	return func(yield func(Job, error) bool) {
		_ = fs.WalkDir(fsys, ".", func(rel string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield(Job{RelPath: rel}, fmt.Errorf("scanning %s: %w", rel, err)) {
					return fs.SkipAll
				}
				// A failed directory read has already yielded what it could.
				return nil
			}

			if d.IsDir() {
				if rel != "." && skip[rel] {
					return fs.SkipDir
				}
				return nil
			}

			if !strings.HasSuffix(d.Name(), HTMLExtension) {
				return nil
			}
			if t := d.Type(); !t.IsRegular() && t&fs.ModeSymlink == 0 {
				return nil
			}
			if isExcluded(rel, opts.Exclude) {
				return nil
			}

			job := Job{
				RelPath:    rel,
				InputPath:  filepath.Join(inputDir, filepath.FromSlash(rel)),
				OutputPath: OutputPath(outputDir, rel),
			}
			if !yield(job, nil) {
				return fs.SkipAll
			}
			return nil
		})
	}
}

// OutputPath maps a slash-separated relative path to its destination under
// outputDir, preserving the directory hierarchy.
func OutputPath(outputDir, relPath string) string {
	return filepath.Join(outputDir, filepath.FromSlash(relPath))
}

// ValidateExcludePatterns reports the first malformed doublestar pattern.
func ValidateExcludePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: %q", ErrInvalidExclude, p)
		}
	}
	return nil
}

// isExcluded reports whether rel matches any pattern.
// Malformed patterns never match; validate them up front.
func isExcluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// nestedDir returns dir relative to root in slash form when dir lies strictly
// inside root, e.g. an output directory placed under the input directory.
func nestedDir(root, dir string) (string, bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
