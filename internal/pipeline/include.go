package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

// Sentinel errors for include resolution.
var (
	ErrReadFragment = errors.New("failed to read include fragment")
	ErrInvalidUTF8  = errors.New("content is not valid UTF-8")
)

// Warning reasons.
const (
	ReasonNotFound    = "include file not found"
	ReasonInvalidName = "include path has no usable file name"
	ReasonNoFragments = "no fragment directory configured"
)

// includePattern matches <!--#include virtual="PATH"-->.
// The path is non-empty and cannot contain a double quote.
var includePattern = regexp.MustCompile(`<!--#include virtual="([^"]+?)"-->`)

// crlfOrCR matches Windows and classic Mac line endings.
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// Warning reports an include marker that was replaced by nothing.
type Warning struct {
	VirtualPath  string // path as written in the marker
	FragmentName string // basename looked up in the fragment directory
	Reason       string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Reason, w.VirtualPath)
}

// IncludeResolver defines the contract for include resolution.
type IncludeResolver interface {
	ResolveIncludes(htmlContent string) (string, []Warning, error)
}

// FSIncludeResolver resolves include markers against a flat fragment
// directory exposed as an fs.FS.
type FSIncludeResolver struct {
	fsys  fs.FS
	cache *fragmentCache
}

// NewFSIncludeResolver creates a resolver reading fragments from fsys.
// A nil fsys resolves every marker to a warning.
// With cache enabled, each fragment is read at most once per resolver.
func NewFSIncludeResolver(fsys fs.FS, cache bool) *FSIncludeResolver {
	r := &FSIncludeResolver{fsys: fsys}
	if cache {
		r.cache = &fragmentCache{entries: make(map[string]string)}
	}
	return r
}

// ResolveIncludes replaces every include marker with the content of the
// fragment named by the basename of its virtual path.
//
// A missing fragment yields a Warning and an empty substitution. Any other
// read failure aborts resolution of this document with ErrReadFragment.
// Spliced content is not scanned again, so fragments cannot include fragments.
func (r *FSIncludeResolver) ResolveIncludes(htmlContent string) (string, []Warning, error) {
	matches := includePattern.FindAllStringSubmatchIndex(htmlContent, -1)
	if len(matches) == 0 {
		return htmlContent, nil, nil
	}

	var (
		b        strings.Builder
		warnings []Warning
		last     int
	)
	b.Grow(len(htmlContent))

	for _, m := range matches {
		virtualPath := htmlContent[m[2]:m[3]]

		content, warning, err := r.fragment(virtualPath)
		if err != nil {
			return "", warnings, err
		}
		if warning != nil {
			warnings = append(warnings, *warning)
		}

		b.WriteString(htmlContent[last:m[0]])
		b.WriteString(content)
		last = m[1]
	}
	b.WriteString(htmlContent[last:])

	return b.String(), warnings, nil
}

// fragment returns the content for one marker, or a warning when the marker
// resolves to nothing.
func (r *FSIncludeResolver) fragment(virtualPath string) (string, *Warning, error) {
	name := FragmentName(virtualPath)
	warn := func(reason string) (string, *Warning, error) {
		return "", &Warning{VirtualPath: virtualPath, FragmentName: name, Reason: reason}, nil
	}

	if name == "" || name == "." || name == ".." || !fs.ValidPath(name) {
		return warn(ReasonInvalidName)
	}
	if r.fsys == nil {
		return warn(ReasonNoFragments)
	}

	if content, ok := r.cache.get(name); ok {
		return content, nil, nil
	}

	data, err := fs.ReadFile(r.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return warn(ReasonNotFound)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", ErrReadFragment, name, err)
	}

	content, err := DecodeText(data)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", ErrReadFragment, name, err)
	}

	r.cache.put(name, content)
	return content, nil, nil
}

// FragmentName returns the lookup name for a virtual path: everything after
// its last slash. Directory components are ignored.
func FragmentName(virtualPath string) string {
	return virtualPath[strings.LastIndexByte(virtualPath, '/')+1:]
}

// DecodeText converts file bytes to document text.
// Input must be UTF-8; line endings are normalized to "\n".
func DecodeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return NormalizeLineEndings(string(data)), nil
}

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	if !strings.ContainsRune(content, '\r') {
		return content
	}
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// fragmentCache memoizes fragment content. Methods are nil-safe so a
// disabled cache needs no branches at call sites.
type fragmentCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func (c *fragmentCache) get(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	content, ok := c.entries[name]
	return content, ok
}

func (c *fragmentCache) put(name, content string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = content
}
