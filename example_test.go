package ssirewrite_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing/fstest"

	"github.com/heasarc/go-ssirewrite"
)

// Example demonstrates processing a single document in memory.
func Example() {
	p, err := ssirewrite.NewPipeline(ssirewrite.WithFragmentFS(fstest.MapFS{
		"nav.html": {Data: []byte(`<nav><a href="/index.html">Home</a></nav>`)},
	}))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	result, err := p.Process(`<!--#include virtual="/includes/nav.html"-->` +
		`<a href="/docs/heasarc/missions/swift/">Swift</a>`)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(result.HTML)
	// Output: <nav><a href="https://heasarc.gsfc.nasa.gov/index.html">Home</a></nav><a href="swift/">Swift</a>
}

// ExamplePipeline_Rewrite shows the three rewrite rules.
func ExamplePipeline_Rewrite() {
	p, err := ssirewrite.NewPipeline()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(p.Rewrite(`<a href="/docs/heasarc/missions/swift/index.html">`))
	fmt.Println(p.Rewrite(`<img src="biblio/foo.bib">`))
	fmt.Println(p.Rewrite(`<a href="/about">`))
	fmt.Println(p.Rewrite(`<script src="//cdn.example.org/x.js">`))
	// Output:
	// <a href="swift/index.html">
	// <img src="https://heasarc.gsfc.nasa.gov/docs/heasarc/missions/biblio/foo.bib">
	// <a href="https://heasarc.gsfc.nasa.gov/about">
	// <script src="//cdn.example.org/x.js">
}

// ExamplePipeline_Process_missingFragment shows that a missing fragment is
// a warning, not an error.
func ExamplePipeline_Process_missingFragment() {
	p, err := ssirewrite.NewPipeline(ssirewrite.WithFragmentFS(fstest.MapFS{}))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	result, err := p.Process(`<p>a</p><!--#include virtual="/x/missing.html"-->`)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Printf("%q\n", result.HTML)
	for _, w := range result.Warnings {
		fmt.Println(w)
	}
	// Output:
	// "<p>a</p>"
	// include file not found: /x/missing.html
}

// ExampleDiscover demonstrates listing the jobs of a tree without touching disk.
func ExampleDiscover() {
	site := fstest.MapFS{
		"index.html":       {Data: []byte("")},
		"swift/index.html": {Data: []byte("")},
		"swift/logo.png":   {Data: []byte("")},
		"drafts/wip.html":  {Data: []byte("")},
	}

	opts := ssirewrite.DiscoverOptions{Exclude: []string{"drafts/**"}}
	for job, err := range ssirewrite.Discover(site, "site", "out", opts) {
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println(job.RelPath, "->", filepath.ToSlash(job.OutputPath))
	}
	// Output:
	// index.html -> out/index.html
	// swift/index.html -> out/swift/index.html
}

// ExampleTreeProcessor demonstrates processing a directory tree.
func ExampleTreeProcessor() {
	root, err := os.MkdirTemp("", "ssirewrite-example")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer os.RemoveAll(root)

	input := filepath.Join(root, "static_output")
	if err := os.MkdirAll(filepath.Join(input, "a", "b"), 0o755); err != nil {
		fmt.Println("error:", err)
		return
	}
	page := []byte(`<a href="/about">About</a>`)
	if err := os.WriteFile(filepath.Join(input, "a", "b", "c.html"), page, 0o644); err != nil {
		fmt.Println("error:", err)
		return
	}

	p, err := ssirewrite.NewPipeline()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	tree, err := ssirewrite.NewTreeProcessor(p, ssirewrite.WithWorkers(2))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	output := filepath.Join(root, "processed")
	report, err := tree.Run(context.Background(), input, output)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	data, err := os.ReadFile(filepath.Join(output, "a", "b", "c.html"))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(string(data))
	fmt.Printf("%+v\n", report.Summary())
	// Output:
	// <a href="https://heasarc.gsfc.nasa.gov/about">About</a>
	// {Processed:1 Skipped:0 Warnings:0}
}
