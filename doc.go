// Package ssirewrite post-processes a tree of generated HTML pages for
// deployment: it splices server-side include fragments into each page, then
// rewrites root-relative links into their published form.
//
// # Quick Start
//
// Process a whole tree with default targets:
//
//	report, err := ssirewrite.Run(ctx, "static_output", "processed", "includes")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s := report.Summary()
//	fmt.Printf("%d processed, %d skipped\n", s.Processed, s.Skipped)
//
// # Document Pipeline
//
// Each page goes through two text stages, always in this order:
//
//  1. Include resolution: every <!--#include virtual="PATH"--> marker is
//     replaced by the fragment named by PATH's last element. A missing
//     fragment removes the marker and produces a Warning.
//  2. URL rewriting: three rules run over the whole text in sequence.
//     Quoted values starting with the mission prefix lose that prefix,
//     values starting with "biblio/" are moved to the bibliography base URL,
//     and any other value starting with a single "/" gets the site base URL.
//
// Fragment content is spliced in before rewriting, so links inside fragments
// are rewritten too. Fragments are not scanned for further markers.
//
// Only values directly after a quote character are touched. Protocol-relative
// ("//cdn...") and absolute ("https://...", "mailto:...") values pass through.
// Rewriting is idempotent: processing an already processed page changes
// nothing.
//
// # Configuration
//
// Use functional options to customize the pipeline:
//
//	p, err := ssirewrite.NewPipeline(
//	    ssirewrite.WithFragmentDir("includes"),
//	    ssirewrite.WithFragmentCache(true),
//	    ssirewrite.WithRewriteTargets(ssirewrite.RewriteTargets{
//	        MissionPrefix: "/docs/heasarc/missions/",
//	        BiblioBaseURL: "https://staging.example.org/biblio/",
//	        SiteBaseURL:   "https://staging.example.org",
//	    }),
//	)
//
// A Pipeline is safe for concurrent use and never touches the output tree.
//
// # Tree Processing
//
// TreeProcessor discovers every ".html" file under the input directory,
// processes files on a bounded set of workers and mirrors them into the
// output directory:
//
//	tree, err := ssirewrite.NewTreeProcessor(p,
//	    ssirewrite.WithWorkers(8),
//	    ssirewrite.WithExclude("drafts/**"),
//	    ssirewrite.WithLogger(logger),
//	)
//	report, err := tree.Run(ctx, "static_output", "processed")
//
// A file that cannot be read, decoded or written is recorded in the Report
// and skipped; the rest of the tree is still processed. Files are written
// atomically. Discover exposes the discovery step on its own as a lazy,
// restartable sequence over any fs.FS.
package ssirewrite
