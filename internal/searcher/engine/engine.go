// Package engine scores and ranks documentation entries against free-text
// queries using the inverted index.
package engine

import (
	"sort"

	"github.com/nimbusdocs/docsearch/internal/docs"
	"github.com/nimbusdocs/docsearch/internal/index"
	"github.com/nimbusdocs/docsearch/internal/index/normalize"
)

// DefaultLimit caps result lists when the caller does not supply a limit.
const DefaultLimit = 10

// Relative field weights. The strict title > keyword > content ordering is
// the invariant worth protecting here: an entry whose title contains a query
// term must rank at or above an otherwise-equal entry whose match is
// content-only.
const (
	weightTitle   = 3.0
	weightKeyword = 2.0
	weightContent = 1.0
)

// Result pairs a matched entry with its accumulated score. Results are
// ephemeral, produced per query and never retained.
type Result struct {
	Entry docs.SearchEntry `json:"entry"`
	Score float64          `json:"score"`
}

// Search looks up query terms in the index, scores candidate entries with
// the field-weight table, and returns at most limit results in descending
// score order. A blank query, an empty index, or a query matching nothing
// all yield an empty result list, never an error. Equal scores break ties
// by original entry-list position.
func Search(idx *index.SearchIndex, query string, limit int) []Result {
	if limit <= 0 {
		limit = DefaultLimit
	}
	results := Matches(idx, query)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Matches returns every entry matching the query in descending-score order,
// without a result cap. Search is Matches truncated to a limit.
func Matches(idx *index.SearchIndex, query string) []Result {
	if idx == nil {
		return nil
	}
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil
	}

	scores := make(map[string]float64)
	for _, term := range terms {
		for _, posting := range idx.Lookup(term) {
			scores[posting.EntryID] += fieldWeight(posting.Fields)
		}
	}
	if len(scores) == 0 {
		return nil
	}

	results := make([]Result, 0, len(scores))
	for id, score := range scores {
		entry, ok := idx.Entry(id)
		if !ok {
			continue
		}
		results = append(results, Result{Entry: entry, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return idx.Rank(results[i].Entry.ID) < idx.Rank(results[j].Entry.ID)
	})
	return results
}

// queryTerms tokenizes and normalizes the query the same way the builder
// normalizes entry fields. The whole normalized query is appended as one
// phrase term so multi-word keywords remain reachable.
func queryTerms(query string) []string {
	tokens := normalize.Tokenize(query)
	terms := make([]string, 0, len(tokens)+1)
	seen := make(map[string]struct{}, len(tokens)+1)
	for _, token := range tokens {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		terms = append(terms, token)
	}
	if phrase := normalize.Normalize(query); phrase != "" {
		if _, dup := seen[phrase]; !dup {
			terms = append(terms, phrase)
		}
	}
	return terms
}

// fieldWeight returns the weight of the best field tier the term matched in.
func fieldWeight(fields index.FieldSet) float64 {
	switch {
	case fields.Has(index.FieldTitle):
		return weightTitle
	case fields.Has(index.FieldKeywords):
		return weightKeyword
	default:
		return weightContent
	}
}
