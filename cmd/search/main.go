// Command search runs a one-shot query against a documentation manifest:
//
//	search -manifest configs/docs.yaml authentication tokens
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/nimbusdocs/docsearch/internal/content"
	"github.com/nimbusdocs/docsearch/internal/index"
	"github.com/nimbusdocs/docsearch/internal/searcher/engine"
	"github.com/nimbusdocs/docsearch/internal/searcher/highlight"
	"github.com/nimbusdocs/docsearch/pkg/logger"
)

func main() {
	manifestPath := flag.String("manifest", "configs/docs.yaml", "path to the docs manifest")
	limit := flag.Int("limit", engine.DefaultLimit, "maximum results to print")
	noColor := flag.Bool("no-color", false, "disable colored output")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: search [flags] <query terms>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	query := strings.Join(flag.Args(), " ")
	if *noColor {
		color.NoColor = true
	}
	logger.Setup("error", "text")

	source := content.NewManifestSource(*manifestPath)
	entries, err := source.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading manifest: %v\n", err)
		os.Exit(1)
	}
	idx, err := index.Build(entries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building index: %v\n", err)
		os.Exit(1)
	}

	results := engine.Search(idx, query, *limit)
	if len(results) == 0 {
		fmt.Printf("no results for %q across %d entries\n", query, idx.Len())
		return
	}

	title := color.New(color.FgCyan, color.Bold)
	score := color.New(color.FgYellow)
	path := color.New(color.FgHiBlack)

	fmt.Printf("%d result(s) for %q:\n\n", len(results), query)
	for i, r := range results {
		title.Printf("%2d. %s", i+1, r.Entry.Title)
		score.Printf("  (%.0f)\n", r.Score)
		path.Printf("    %s\n", r.Entry.Path)
		fmt.Printf("    %s\n\n", highlight.Excerpt(r.Entry.Content, query, 70))
	}
}
