package content

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/nimbusdocs/docsearch/internal/docs"
	"github.com/nimbusdocs/docsearch/pkg/postgres"
	"github.com/nimbusdocs/docsearch/pkg/resilience"
)

// Entries are ordered by the editorial sort position the CMS maintains, so
// rebuilds see a stable order and search tie-breaks stay deterministic.
const selectEntries = `
SELECT id, title, content, path, category, keywords
FROM doc_entries
WHERE published = true
ORDER BY position, id`

// PostgresSource loads entries from the CMS database. Loads go through a
// circuit breaker and retry with backoff: rebuilds run periodically, and a
// CMS outage should surface as a failed rebuild, not a hammered database.
type PostgresSource struct {
	client  *postgres.Client
	breaker *resilience.CircuitBreaker
	timeout time.Duration
	logger  *slog.Logger
}

// NewPostgresSource creates a Source backed by the CMS doc_entries table.
func NewPostgresSource(client *postgres.Client, loadTimeout time.Duration) *PostgresSource {
	return &PostgresSource{
		client:  client,
		breaker: resilience.NewCircuitBreaker("cms-postgres", resilience.CircuitBreakerConfig{}),
		timeout: loadTimeout,
		logger:  slog.Default().With("component", "content-postgres"),
	}
}

func (s *PostgresSource) Name() string {
	return "postgres"
}

// Load fetches the full published entry list.
func (s *PostgresSource) Load(ctx context.Context) ([]docs.SearchEntry, error) {
	var entries []docs.SearchEntry
	err := s.breaker.Execute(func() error {
		return resilience.Retry(ctx, "load-doc-entries", resilience.RetryConfig{}, func() error {
			return resilience.WithTimeout(ctx, s.timeout, "load-doc-entries", func(ctx context.Context) error {
				loaded, err := s.query(ctx)
				if err != nil {
					return err
				}
				entries = loaded
				return nil
			})
		})
	})
	if err != nil {
		return nil, fmt.Errorf("loading entries from postgres: %w", err)
	}
	s.logger.Debug("entries loaded", "count", len(entries))
	return entries, nil
}

func (s *PostgresSource) query(ctx context.Context) ([]docs.SearchEntry, error) {
	rows, err := s.client.DB.QueryContext(ctx, selectEntries)
	if err != nil {
		return nil, fmt.Errorf("querying doc_entries: %w", err)
	}
	defer rows.Close()

	var entries []docs.SearchEntry
	for rows.Next() {
		var e docs.SearchEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.Content, &e.Path, &e.Category, pq.Array(&e.Keywords)); err != nil {
			return nil, fmt.Errorf("scanning doc entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating doc entries: %w", err)
	}
	return entries, nil
}
