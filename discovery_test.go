package ssirewrite

// Notes:
// - Discovery runs against fstest.MapFS; no disk access is needed to check
//   path mapping, filtering or restartability.
// - Symlinked .html files are accepted by type but their targets are not
//   checked here; os-level behavior is covered by the tree tests.

import (
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"
)

var testTree = fstest.MapFS{
	"index.html":              {Data: []byte("root")},
	"swift/index.html":        {Data: []byte("swift")},
	"swift/docs/guide.html":   {Data: []byte("guide")},
	"swift/docs/guide.htm":    {Data: []byte("htm")},
	"swift/logo.png":          {Data: []byte("png")},
	"upper/PAGE.HTML":         {Data: []byte("upper")},
	"drafts/wip.html":         {Data: []byte("draft")},
	"partials/_nav.html":      {Data: []byte("partial")},
	"folder.html/inside.html": {Data: []byte("inside")},
	"pipe.html":               {Mode: fs.ModeNamedPipe},
	"processed/old.html":      {Data: []byte("old output")},
}

func collectJobs(t *testing.T, fsys fs.FS, opts DiscoverOptions) []Job {
	t.Helper()

	var jobs []Job
	for job, err := range Discover(fsys, "in", "out", opts) {
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		jobs = append(jobs, job)
	}
	return jobs
}

func relPaths(jobs []Job) []string {
	paths := make([]string, len(jobs))
	for i, j := range jobs {
		paths[i] = j.RelPath
	}
	return paths
}

// ---------------------------------------------------------------------------
// TestDiscover - Selection and path mapping
// ---------------------------------------------------------------------------

func TestDiscover(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts DiscoverOptions
		want []string
	}{
		{
			name: "all html files",
			want: []string{
				"drafts/wip.html",
				"folder.html/inside.html",
				"index.html",
				"partials/_nav.html",
				"processed/old.html",
				"swift/docs/guide.html",
				"swift/index.html",
			},
		},
		{
			name: "exclude directory glob",
			opts: DiscoverOptions{Exclude: []string{"drafts/**"}},
			want: []string{
				"folder.html/inside.html",
				"index.html",
				"partials/_nav.html",
				"processed/old.html",
				"swift/docs/guide.html",
				"swift/index.html",
			},
		},
		{
			name: "exclude by basename anywhere",
			opts: DiscoverOptions{Exclude: []string{"**/_*.html", "**/guide.html"}},
			want: []string{
				"drafts/wip.html",
				"folder.html/inside.html",
				"index.html",
				"processed/old.html",
				"swift/index.html",
			},
		},
		{
			name: "skip dirs",
			opts: DiscoverOptions{SkipDirs: []string{"processed", "swift/docs/"}},
			want: []string{
				"drafts/wip.html",
				"folder.html/inside.html",
				"index.html",
				"partials/_nav.html",
				"swift/index.html",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := relPaths(collectJobs(t, testTree, tt.opts))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Discover() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscover_PathMapping(t *testing.T) {
	t.Parallel()

	jobs := collectJobs(t, fstest.MapFS{"a/b/c.html": {Data: []byte("x")}}, DiscoverOptions{})
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}

	want := Job{
		RelPath:    "a/b/c.html",
		InputPath:  filepath.Join("in", "a", "b", "c.html"),
		OutputPath: filepath.Join("out", "a", "b", "c.html"),
	}
	if jobs[0] != want {
		t.Errorf("job = %+v, want %+v", jobs[0], want)
	}
}

func TestDiscover_Restartable(t *testing.T) {
	t.Parallel()

	seq := Discover(testTree, "in", "out", DiscoverOptions{})

	var first, second []string
	for job, err := range seq {
		if err != nil {
			t.Fatal(err)
		}
		first = append(first, job.RelPath)
	}
	for job, err := range seq {
		if err != nil {
			t.Fatal(err)
		}
		second = append(second, job.RelPath)
	}

	if len(first) == 0 || !slices.Equal(first, second) {
		t.Errorf("second walk = %v, want %v", second, first)
	}
}

func TestDiscover_EarlyStop(t *testing.T) {
	t.Parallel()

	count := 0
	for range Discover(testTree, "in", "out", DiscoverOptions{}) {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

// failingDirFS fails ReadDir for one directory.
type failingDirFS struct {
	fstest.MapFS
	bad string
}

var errDenied = errors.New("permission denied")

func (f failingDirFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name == f.bad {
		return nil, errDenied
	}
	return f.MapFS.ReadDir(name)
}

func TestDiscover_ScanErrorContinues(t *testing.T) {
	t.Parallel()

	fsys := failingDirFS{
		MapFS: fstest.MapFS{
			"a.html":        {Data: []byte("a")},
			"locked/b.html": {Data: []byte("b")},
			"z/c.html":      {Data: []byte("c")},
		},
		bad: "locked",
	}

	var got []string
	var scanErrs []error
	for job, err := range Discover(fsys, "in", "out", DiscoverOptions{}) {
		if err != nil {
			scanErrs = append(scanErrs, err)
			continue
		}
		got = append(got, job.RelPath)
	}

	if want := []string{"a.html", "z/c.html"}; !slices.Equal(got, want) {
		t.Errorf("jobs = %v, want %v", got, want)
	}
	if len(scanErrs) != 1 || !errors.Is(scanErrs[0], errDenied) {
		t.Errorf("scan errors = %v, want one wrapping errDenied", scanErrs)
	}
}

// ---------------------------------------------------------------------------
// TestOutputPath / TestNestedDir - Path helpers
// ---------------------------------------------------------------------------

func TestOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		outputDir string
		rel       string
		want      string
	}{
		{"processed", "index.html", filepath.Join("processed", "index.html")},
		{"processed", "a/b/c.html", filepath.Join("processed", "a", "b", "c.html")},
		{"/srv/out/", "x.html", filepath.Join("/srv/out", "x.html")},
	}

	for _, tt := range tests {
		if got := OutputPath(tt.outputDir, tt.rel); got != tt.want {
			t.Errorf("OutputPath(%q, %q) = %q, want %q", tt.outputDir, tt.rel, got, tt.want)
		}
	}
}

func TestNestedDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		root    string
		dir     string
		wantRel string
		wantOK  bool
	}{
		{"child", "site", filepath.Join("site", "processed"), "processed", true},
		{"grandchild", "site", filepath.Join("site", "a", "b"), "a/b", true},
		{"sibling", "site", "processed", "", false},
		{"same", "site", "site", "", false},
		{"parent", filepath.Join("site", "in"), "site", "", false},
		{"dot-dot prefixed name", "site", filepath.Join("site", "..x"), "..x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rel, ok := nestedDir(tt.root, tt.dir)
			if rel != tt.wantRel || ok != tt.wantOK {
				t.Errorf("nestedDir(%q, %q) = (%q, %v), want (%q, %v)",
					tt.root, tt.dir, rel, ok, tt.wantRel, tt.wantOK)
			}
		})
	}
}

func TestValidateExcludePatterns(t *testing.T) {
	t.Parallel()

	if err := ValidateExcludePatterns([]string{"drafts/**", "**/*.tmp.html", "{a,b}/*.html"}); err != nil {
		t.Errorf("valid patterns rejected: %v", err)
	}
	if err := ValidateExcludePatterns([]string{"ok/**", "bad/[a-"}); !errors.Is(err, ErrInvalidExclude) {
		t.Errorf("error = %v, want ErrInvalidExclude", err)
	}
	if err := ValidateExcludePatterns(nil); err != nil {
		t.Errorf("nil patterns: %v", err)
	}
}
