// Package index builds an immutable in-memory inverted index over
// documentation entries. Title and content are tokenized word by word;
// keywords are normalized as whole units so a multi-word keyword indexes as
// a single phrase token. Rebuilding on a content change means constructing a
// fresh SearchIndex, never mutating an existing one.
package index

import (
	"fmt"
	"sort"

	"github.com/nimbusdocs/docsearch/internal/docs"
	"github.com/nimbusdocs/docsearch/internal/docs/validator"
	"github.com/nimbusdocs/docsearch/internal/index/normalize"
	apperrors "github.com/nimbusdocs/docsearch/pkg/errors"
)

// SearchIndex is the built artifact: an entry lookup table plus an inverted
// index from normalized token to the entries containing it. All maps are
// unexported; after Build returns, nothing mutates them.
type SearchIndex struct {
	entries  map[string]docs.SearchEntry
	inverted map[string]map[string]FieldSet
	rank     map[string]int
}

// Build constructs a SearchIndex from entries. Every entry is validated
// before indexing, and duplicate IDs are rejected rather than overwritten so
// a bad content export cannot silently drop documentation pages. An empty
// entry list yields a valid, empty index.
func Build(entries []docs.SearchEntry) (*SearchIndex, error) {
	idx := &SearchIndex{
		entries:  make(map[string]docs.SearchEntry, len(entries)),
		inverted: make(map[string]map[string]FieldSet),
		rank:     make(map[string]int, len(entries)),
	}
	for i, entry := range entries {
		if err := validator.ValidateEntry(&entry); err != nil {
			return nil, fmt.Errorf("entry %d (%q): %w", i, entry.ID, err)
		}
		if _, exists := idx.entries[entry.ID]; exists {
			return nil, fmt.Errorf("entry %d: %w: %s", i, apperrors.ErrDuplicateEntry, entry.ID)
		}
		idx.entries[entry.ID] = entry
		idx.rank[entry.ID] = i

		for _, token := range normalize.Tokenize(entry.Title) {
			idx.register(token, entry.ID, FieldTitle)
		}
		for _, token := range normalize.Tokenize(entry.Content) {
			idx.register(token, entry.ID, FieldContent)
		}
		for _, keyword := range entry.Keywords {
			idx.register(normalize.Normalize(keyword), entry.ID, FieldKeywords)
		}
	}
	return idx, nil
}

func (idx *SearchIndex) register(token, entryID string, field FieldSet) {
	if token == "" {
		return
	}
	postings, ok := idx.inverted[token]
	if !ok {
		postings = make(map[string]FieldSet)
		idx.inverted[token] = postings
	}
	postings[entryID] |= field
}

// Lookup returns the postings for a normalized token, ordered by the entries'
// original input position. An unknown token yields nil.
func (idx *SearchIndex) Lookup(token string) []Posting {
	postings, ok := idx.inverted[token]
	if !ok {
		return nil
	}
	result := make([]Posting, 0, len(postings))
	for entryID, fields := range postings {
		result = append(result, Posting{EntryID: entryID, Fields: fields})
	}
	sort.Slice(result, func(i, j int) bool {
		return idx.rank[result[i].EntryID] < idx.rank[result[j].EntryID]
	})
	return result
}

// Entry returns the entry for id, if present.
func (idx *SearchIndex) Entry(id string) (docs.SearchEntry, bool) {
	entry, ok := idx.entries[id]
	return entry, ok
}

// Rank returns the entry's position in the input list, used as a
// deterministic tie-break when scores are equal. Unknown IDs sort last.
func (idx *SearchIndex) Rank(id string) int {
	if pos, ok := idx.rank[id]; ok {
		return pos
	}
	return len(idx.rank)
}

// Len returns the number of indexed entries.
func (idx *SearchIndex) Len() int {
	return len(idx.entries)
}

// TokenCount returns the number of distinct tokens in the inverted index.
func (idx *SearchIndex) TokenCount() int {
	return len(idx.inverted)
}
