// Package docs defines the documentation entry model shared by the content
// sources, the search index, and the HTTP layer.
package docs

// SearchEntry is a single indexable documentation unit. Path and Category are
// carried through for navigation and display; the index never scores them.
type SearchEntry struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Content  string   `json:"content" yaml:"content"`
	Path     string   `json:"path" yaml:"path"`
	Category string   `json:"category" yaml:"category"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords"`
}
