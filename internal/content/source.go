// Package content loads documentation entries from an external content
// source: the CMS Postgres database in production or a static YAML manifest
// in development. The search subsystem never fetches content itself; it
// indexes whatever list a Source produces.
package content

import (
	"context"

	"github.com/nimbusdocs/docsearch/internal/docs"
)

// Source supplies the full, ordered documentation entry list. The order is
// significant: it defines the tie-break rank for equal search scores, so a
// Source must return entries in a stable order across loads.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]docs.SearchEntry, error)
}
