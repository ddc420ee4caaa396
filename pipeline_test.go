package ssirewrite

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
)

var testFragments = fstest.MapFS{
	"header.html": {Data: []byte(`<header><a href="/index.html">Home</a></header>`)},
	"nav.html":    {Data: []byte(`<nav><a href="/docs/heasarc/missions/swift/">Swift</a> <a href="biblio/refs.html">Refs</a></nav>`)},
	"footer.html": {Data: []byte("<footer>\r\n(c)\r\n</footer>")},
}

func newTestPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()

	p, err := NewPipeline(append([]Option{WithFragmentFS(testFragments)}, opts...)...)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	return p
}

// ---------------------------------------------------------------------------
// TestNewPipeline - Construction and validation
// ---------------------------------------------------------------------------

func TestNewPipeline(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		p, err := NewPipeline()
		if err != nil {
			t.Fatalf("NewPipeline() error = %v", err)
		}
		if got := p.Targets(); got != DefaultRewriteTargets() {
			t.Errorf("Targets() = %+v, want defaults", got)
		}
	})

	t.Run("invalid targets", func(t *testing.T) {
		t.Parallel()

		targets := DefaultRewriteTargets()
		targets.SiteBaseURL = "not a url"
		_, err := NewPipeline(WithRewriteTargets(targets))
		if !errors.Is(err, ErrInvalidBaseURL) {
			t.Errorf("NewPipeline() error = %v, want ErrInvalidBaseURL", err)
		}
	})

	t.Run("fragment dir", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "banner.html", "<div>banner</div>")

		p, err := NewPipeline(WithFragmentDir(dir))
		if err != nil {
			t.Fatalf("NewPipeline() error = %v", err)
		}
		res, err := p.Process(`<!--#include virtual="/ssi/banner.html"-->`)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if res.HTML != "<div>banner</div>" {
			t.Errorf("HTML = %q, want fragment content", res.HTML)
		}
	})

	t.Run("later fragment option wins", func(t *testing.T) {
		t.Parallel()

		p, err := NewPipeline(WithFragmentDir(t.TempDir()), WithFragmentFS(testFragments))
		if err != nil {
			t.Fatalf("NewPipeline() error = %v", err)
		}
		res, err := p.Process(`<!--#include virtual="footer.html"-->`)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if len(res.Warnings) != 0 {
			t.Errorf("unexpected warnings: %v", res.Warnings)
		}
	})
}

// ---------------------------------------------------------------------------
// TestPipeline_Process - Include resolution followed by rewriting
// ---------------------------------------------------------------------------

func TestPipeline_Process(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		want         string
		wantWarnings int
	}{
		{
			name:  "fragment links are rewritten",
			input: `<body><!--#include virtual="/includes/header.html"--></body>`,
			want:  `<body><header><a href="https://heasarc.gsfc.nasa.gov/index.html">Home</a></header></body>`,
		},
		{
			name:  "every rule applies to fragment content",
			input: `<!--#include virtual="nav.html"-->`,
			want: `<nav><a href="swift/">Swift</a> ` +
				`<a href="https://heasarc.gsfc.nasa.gov/docs/heasarc/missions/biblio/refs.html">Refs</a></nav>`,
		},
		{
			name:  "fragment line endings normalized",
			input: `<!--#include virtual="footer.html"-->`,
			want:  "<footer>\n(c)\n</footer>",
		},
		{
			name:         "missing fragment removed with warning",
			input:        `<p>a</p><!--#include virtual="/x/missing.html"--><a href="/about">`,
			want:         `<p>a</p><a href="https://heasarc.gsfc.nasa.gov/about">`,
			wantWarnings: 1,
		},
		{
			name:         "each occurrence warns",
			input:        `<!--#include virtual="gone.html"--><!--#include virtual="gone.html"-->`,
			want:         ``,
			wantWarnings: 2,
		},
		{
			name:  "no markers and no urls",
			input: `<p>plain prose with a / slash</p>`,
			want:  `<p>plain prose with a / slash</p>`,
		},
	}

	p := newTestPipeline(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := p.Process(tt.input)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if res.HTML != tt.want {
				t.Errorf("HTML = %q, want %q", res.HTML, tt.want)
			}
			if len(res.Warnings) != tt.wantWarnings {
				t.Errorf("got %d warnings, want %d: %v", len(res.Warnings), tt.wantWarnings, res.Warnings)
			}
		})
	}
}

func TestPipeline_ProcessWithoutMarkersEqualsRewrite(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)
	docs := []string{
		`<a href="/docs/heasarc/missions/swift/index.html">`,
		`<img src="biblio/foo.bib"><a href='/about'>`,
		`<a href="//cdn.example.org/x.js"><a href="mailto:help@example.org">`,
		``,
	}

	for _, doc := range docs {
		res, err := p.Process(doc)
		if err != nil {
			t.Fatalf("Process(%q) error = %v", doc, err)
		}
		if want := p.Rewrite(doc); res.HTML != want {
			t.Errorf("Process(%q) = %q, Rewrite = %q", doc, res.HTML, want)
		}
	}
}

func TestPipeline_ProcessDocument(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)
	res, err := p.ProcessDocument(Document{RelPath: "a/b.html", HTML: `<a href="/x">`})
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}
	if res.HTML != `<a href="https://heasarc.gsfc.nasa.gov/x">` {
		t.Errorf("HTML = %q", res.HTML)
	}
}

func TestPipeline_CustomTargets(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, WithRewriteTargets(RewriteTargets{
		MissionPrefix: "/missions/",
		BiblioBaseURL: "https://staging.example.org/biblio",
		SiteBaseURL:   "https://staging.example.org/",
	}))

	got := p.Rewrite(`<a href="/missions/xmm/"><a href="biblio/a.bib"><a href="/help">`)
	want := `<a href="xmm/">` +
		`<a href="https://staging.example.org/biblio/a.bib">` +
		`<a href="https://staging.example.org/help">`
	if got != want {
		t.Errorf("Rewrite() = %q, want %q", got, want)
	}
}

func TestPipeline_FragmentReadError(t *testing.T) {
	t.Parallel()

	p, err := NewPipeline(WithFragmentFS(fstest.MapFS{
		"dir.html": {Mode: fs.ModeDir},
	}))
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}

	_, err = p.Process(`<!--#include virtual="dir.html"-->`)
	if !errors.Is(err, ErrReadFragment) {
		t.Errorf("Process() error = %v, want ErrReadFragment", err)
	}
}

func TestPipeline_NoFragmentSource(t *testing.T) {
	t.Parallel()

	p, err := NewPipeline()
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}

	res, err := p.Process(`x<!--#include virtual="header.html"-->y`)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.HTML != "xy" {
		t.Errorf("HTML = %q, want marker removed", res.HTML)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0].String(), "header.html") {
		t.Errorf("Warnings = %v, want one for header.html", res.Warnings)
	}
}
