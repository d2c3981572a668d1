// Package searcher owns the live search index and answers queries against
// it. The index is immutable: Rebuild constructs a fresh one from the
// content source and swaps a single atomic pointer, so concurrent searches
// never observe a partially built index.
package searcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nimbusdocs/docsearch/internal/content"
	"github.com/nimbusdocs/docsearch/internal/index"
	"github.com/nimbusdocs/docsearch/internal/searcher/engine"
	"github.com/nimbusdocs/docsearch/internal/searcher/highlight"
	"github.com/nimbusdocs/docsearch/pkg/config"
	"github.com/nimbusdocs/docsearch/pkg/kafka"
	"github.com/nimbusdocs/docsearch/pkg/metrics"
)

// ScoredEntry is one search hit prepared for display: the title and content
// snippet carry emphasis markers around matched terms.
type ScoredEntry struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Path     string  `json:"path"`
	Category string  `json:"category,omitempty"`
	Score    float64 `json:"score"`
	Snippet  string  `json:"snippet,omitempty"`
}

// SearchResponse is the answer to one query.
type SearchResponse struct {
	Query     string        `json:"query"`
	TotalHits int           `json:"total_hits"`
	Results   []ScoredEntry `json:"results"`
}

// Invalidator drops cached query responses after a rebuild.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// IndexCompleteEvent is published after each successful rebuild.
type IndexCompleteEvent struct {
	Source     string    `json:"source"`
	Entries    int       `json:"entries"`
	Tokens     int       `json:"tokens"`
	DurationMs int64     `json:"duration_ms"`
	BuiltAt    time.Time `json:"built_at"`
}

// Service loads content, maintains the current index, and executes queries.
// The cache, producer, and metrics dependencies may all be nil.
type Service struct {
	source   content.Source
	idx      atomic.Pointer[index.SearchIndex]
	cache    Invalidator
	producer *kafka.Producer
	metrics  *metrics.Metrics
	cfg      config.SearchConfig
	logger   *slog.Logger
}

// New creates a Service. The index is empty until the first Rebuild.
func New(source content.Source, cfg config.SearchConfig, cache Invalidator, producer *kafka.Producer, m *metrics.Metrics) *Service {
	return &Service{
		source:   source,
		cache:    cache,
		producer: producer,
		metrics:  m,
		cfg:      cfg,
		logger:   slog.Default().With("component", "searcher"),
	}
}

// Rebuild loads the full entry list from the content source, builds a fresh
// index, and swaps it in wholesale. On failure the previous index stays
// live.
func (s *Service) Rebuild(ctx context.Context) error {
	start := time.Now()
	entries, err := s.source.Load(ctx)
	if err != nil {
		s.recordRebuild("load_failed", 0)
		return fmt.Errorf("loading content from %s: %w", s.source.Name(), err)
	}
	idx, err := index.Build(entries)
	if err != nil {
		s.recordRebuild("build_failed", 0)
		return fmt.Errorf("building index: %w", err)
	}
	s.idx.Store(idx)
	duration := time.Since(start)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Error("cache invalidation after rebuild failed", "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.EntriesIndexed.Set(float64(idx.Len()))
		s.metrics.IndexTokens.Set(float64(idx.TokenCount()))
	}
	s.recordRebuild("success", duration)
	if s.producer != nil {
		event := IndexCompleteEvent{
			Source:     s.source.Name(),
			Entries:    idx.Len(),
			Tokens:     idx.TokenCount(),
			DurationMs: duration.Milliseconds(),
			BuiltAt:    time.Now().UTC(),
		}
		if err := s.producer.Publish(ctx, kafka.Event{Key: "index-complete", Value: event}); err != nil {
			s.logger.Error("failed to publish index-complete event", "error", err)
		}
	}
	s.logger.Info("index rebuilt",
		"source", s.source.Name(),
		"entries", idx.Len(),
		"tokens", idx.TokenCount(),
		"duration_ms", duration.Milliseconds(),
	)
	return nil
}

// StartRefreshing rebuilds on the given interval until ctx is cancelled.
// Failed rebuilds are logged and retried on the next tick; the previous
// index keeps serving in the meantime.
func (s *Service) StartRefreshing(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Rebuild(ctx); err != nil {
				s.logger.Error("scheduled rebuild failed", "error", err)
			}
		}
	}
}

// Index returns the current index, or nil before the first rebuild.
func (s *Service) Index() *index.SearchIndex {
	return s.idx.Load()
}

// Ready reports whether an index has been built.
func (s *Service) Ready() bool {
	return s.idx.Load() != nil
}

// Search executes a query against the current index and prepares the hits
// for display. Degenerate inputs (blank query, no index, no matches) yield
// an empty result list.
func (s *Service) Search(ctx context.Context, query string, limit int) *SearchResponse {
	resp := &SearchResponse{Query: query, Results: []ScoredEntry{}}
	idx := s.idx.Load()
	if idx == nil {
		return resp
	}
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	all := engine.Matches(idx, query)
	resp.TotalHits = len(all)
	hits := all
	if len(hits) > limit {
		hits = hits[:limit]
	}
	for _, hit := range hits {
		resp.Results = append(resp.Results, ScoredEntry{
			ID:       hit.Entry.ID,
			Title:    highlight.Highlight(hit.Entry.Title, query),
			Path:     hit.Entry.Path,
			Category: hit.Entry.Category,
			Score:    hit.Score,
			Snippet:  highlight.Excerpt(hit.Entry.Content, query, s.cfg.ExcerptRadius),
		})
	}
	return resp
}

func (s *Service) recordRebuild(status string, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.IndexRebuildsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		s.metrics.IndexRebuildDuration.Observe(duration.Seconds())
	}
}
