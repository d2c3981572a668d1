// Package benchmark contains Go benchmarks for the index builder, the
// normalizer, and the query path, measuring throughput and allocation
// behaviour.
package benchmark

import (
	"fmt"
	"testing"

	"github.com/nimbusdocs/docsearch/internal/docs"
	"github.com/nimbusdocs/docsearch/internal/index"
	"github.com/nimbusdocs/docsearch/internal/index/normalize"
	"github.com/nimbusdocs/docsearch/internal/searcher/engine"
	"github.com/nimbusdocs/docsearch/internal/searcher/highlight"
)

func corpus(n int) []docs.SearchEntry {
	entries := make([]docs.SearchEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, docs.SearchEntry{
			ID:       fmt.Sprintf("doc-%d", i),
			Title:    fmt.Sprintf("Documentation Page %d", i),
			Content:  "search index with weighted fields ranking entries across title keyword and content tiers for the documentation portal",
			Path:     fmt.Sprintf("/docs/page-%d", i),
			Keywords: []string{"docs", "reference", fmt.Sprintf("topic-%d", i%50)},
		})
	}
	return entries
}

// BenchmarkBuild measures full index construction over a 10 000 entry corpus.
func BenchmarkBuild(b *testing.B) {
	entries := corpus(10000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := index.Build(entries); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSearch measures single-term query latency over 10 000 entries.
func BenchmarkSearch(b *testing.B) {
	idx, err := index.Build(corpus(10000))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		results := engine.Search(idx, "documentation", 10)
		_ = results
	}
}

// BenchmarkSearchParallel measures concurrent read throughput against one
// immutable index.
func BenchmarkSearchParallel(b *testing.B) {
	idx, err := index.Build(corpus(10000))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			results := engine.Search(idx, "weighted ranking", 10)
			_ = results
		}
	})
}

// BenchmarkTokenize measures normalizer throughput on a typical content
// paragraph.
func BenchmarkTokenize(b *testing.B) {
	text := "The search index splits every title, keyword, and content field into lowercase tokens, stripping punctuation so Queries match regardless of spelling style."
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tokens := normalize.Tokenize(text)
		_ = tokens
	}
}

// BenchmarkHighlight measures marker insertion on a medium snippet.
func BenchmarkHighlight(b *testing.B) {
	text := "search index with weighted fields ranking entries across title keyword and content tiers"
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out := highlight.Highlight(text, "weighted ranking")
		_ = out
	}
}
