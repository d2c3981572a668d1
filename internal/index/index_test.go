package index

import (
	"errors"
	"testing"

	"github.com/nimbusdocs/docsearch/internal/docs"
	apperrors "github.com/nimbusdocs/docsearch/pkg/errors"
)

func sampleEntries() []docs.SearchEntry {
	return []docs.SearchEntry{
		{
			ID:       "1",
			Title:    "Authentication Guide",
			Content:  "Learn how to authenticate with the API using tokens.",
			Path:     "/docs/auth",
			Category: "guides",
			Keywords: []string{"auth", "token", "security"},
		},
		{
			ID:       "2",
			Title:    "REST API",
			Content:  "Complete reference for the REST API endpoints.",
			Path:     "/docs/rest",
			Category: "reference",
			Keywords: []string{"api", "rest", "endpoints"},
		},
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	idx, err := Build(nil)
	if err != nil {
		t.Fatalf("Build(nil) returned error: %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("empty corpus: Len() = %d, want 0", idx.Len())
	}
	if idx.TokenCount() != 0 {
		t.Errorf("empty corpus: TokenCount() = %d, want 0", idx.TokenCount())
	}
}

func TestBuildCoverage(t *testing.T) {
	entries := sampleEntries()
	idx, err := Build(entries)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	for _, e := range entries {
		if _, ok := idx.Entry(e.ID); !ok {
			t.Errorf("entry %q missing from built index", e.ID)
		}
	}
}

// Every ID in any posting must exist in the entry table.
func TestBuildSoundness(t *testing.T) {
	idx, err := Build(sampleEntries())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	for token, postings := range idx.inverted {
		for entryID := range postings {
			if _, ok := idx.entries[entryID]; !ok {
				t.Errorf("token %q references unknown entry %q", token, entryID)
			}
		}
	}
}

func TestBuildSetSemantics(t *testing.T) {
	idx, err := Build([]docs.SearchEntry{{
		ID:      "1",
		Title:   "API API API",
		Content: "api api api api",
	}})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	postings := idx.Lookup("api")
	if len(postings) != 1 {
		t.Fatalf("Lookup(api) returned %d postings, want 1", len(postings))
	}
	fields := postings[0].Fields
	if !fields.Has(FieldTitle) || !fields.Has(FieldContent) {
		t.Errorf("posting fields = %b, want title and content set", fields)
	}
}

func TestBuildKeywordWholeUnit(t *testing.T) {
	idx, err := Build([]docs.SearchEntry{{
		ID:       "1",
		Title:    "Quickstart",
		Keywords: []string{"Getting Started"},
	}})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if got := idx.Lookup("getting started"); len(got) != 1 {
		t.Errorf("multi-word keyword not indexed as a phrase: %v", got)
	}
	// The keyword path registers the phrase only; its component words are
	// not indexed individually.
	if got := idx.Lookup("getting"); len(got) != 0 {
		t.Errorf("keyword was sub-tokenized: Lookup(getting) = %v", got)
	}
}

func TestBuildRejectsDuplicateID(t *testing.T) {
	entries := []docs.SearchEntry{
		{ID: "dup", Title: "First"},
		{ID: "dup", Title: "Second"},
	}
	_, err := Build(entries)
	if err == nil {
		t.Fatal("Build accepted duplicate IDs")
	}
	if !errors.Is(err, apperrors.ErrDuplicateEntry) {
		t.Errorf("error = %v, want ErrDuplicateEntry", err)
	}
}

func TestBuildRejectsMalformedEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry docs.SearchEntry
	}{
		{"missing id", docs.SearchEntry{Title: "No ID"}},
		{"missing title", docs.SearchEntry{ID: "no-title"}},
		{"blank id", docs.SearchEntry{ID: "   ", Title: "Blank"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build([]docs.SearchEntry{tt.entry}); err == nil {
				t.Error("Build accepted a malformed entry")
			}
		})
	}
}

func TestLookupUnknownToken(t *testing.T) {
	idx, err := Build(sampleEntries())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if got := idx.Lookup("xyznonexistent"); got != nil {
		t.Errorf("Lookup of unknown token = %v, want nil", got)
	}
}

func TestLookupOrderedByRank(t *testing.T) {
	entries := []docs.SearchEntry{
		{ID: "c", Title: "shared term"},
		{ID: "a", Title: "shared term"},
		{ID: "b", Title: "shared term"},
	}
	idx, err := Build(entries)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	postings := idx.Lookup("shared")
	want := []string{"c", "a", "b"}
	for i, p := range postings {
		if p.EntryID != want[i] {
			t.Fatalf("posting order = %v, want input order %v", postings, want)
		}
	}
}
