package content

import (
	"context"
	"fmt"
	"os"

	"github.com/nimbusdocs/docsearch/internal/docs"
	"gopkg.in/yaml.v3"
)

// ManifestSource reads entries from a static YAML manifest:
//
//	entries:
//	  - id: auth-guide
//	    title: Authentication Guide
//	    content: ...
//	    path: /docs/auth
//	    category: guides
//	    keywords: [auth, token]
type ManifestSource struct {
	path string
}

// NewManifestSource creates a Source backed by the YAML file at path.
func NewManifestSource(path string) *ManifestSource {
	return &ManifestSource{path: path}
}

func (s *ManifestSource) Name() string {
	return "manifest"
}

// Load reads and parses the manifest. Entries are returned in file order.
func (s *ManifestSource) Load(ctx context.Context) ([]docs.SearchEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", s.path, err)
	}
	var m struct {
		Entries []docs.SearchEntry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", s.path, err)
	}
	return m.Entries, nil
}
