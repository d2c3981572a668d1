package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nimbusdocs/docsearch/internal/analytics"
	"github.com/nimbusdocs/docsearch/internal/index"
	"github.com/nimbusdocs/docsearch/internal/searcher"
	"github.com/nimbusdocs/docsearch/internal/searcher/cache"
	"github.com/nimbusdocs/docsearch/pkg/logger"
	"github.com/nimbusdocs/docsearch/pkg/metrics"
	"github.com/nimbusdocs/docsearch/pkg/middleware"
)

// SearchService is the slice of the searcher the HTTP layer needs.
type SearchService interface {
	Search(ctx context.Context, query string, limit int) *searcher.SearchResponse
	Index() *index.SearchIndex
}

type Handler struct {
	service      SearchService
	cache        *cache.QueryCache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

func New(service SearchService, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics, defaultLimit, maxResults int) *Handler {
	return &Handler{
		service:      service,
		cache:        queryCache,
		collector:    collector,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Search answers GET /api/v1/search?q=&limit=. A blank query is a normal
// empty state, not an error; only a malformed limit produces a 400.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	if strings.TrimSpace(query) == "" {
		h.countQuery("empty_query")
		h.writeJSON(w, http.StatusOK, &searcher.SearchResponse{
			Query:   query,
			Results: []searcher.ScoredEntry{},
		})
		return
	}

	var resp *searcher.SearchResponse
	cacheHit := false
	if h.cache != nil {
		resp, cacheHit = h.cache.GetOrCompute(ctx, query, limit, func() *searcher.SearchResponse {
			return h.service.Search(ctx, query, limit)
		})
	} else {
		resp = h.service.Search(ctx, query, limit)
	}

	latency := time.Since(start)
	h.recordSearch(resp, cacheHit, latency)
	log.Info("search completed",
		"query", query,
		"total_hits", resp.TotalHits,
		"returned", len(resp.Results),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	if h.collector != nil {
		eventType := analytics.EventCacheMiss
		if cacheHit {
			eventType = analytics.EventCacheHit
		}
		h.collector.Track(analytics.SearchEvent{
			Type:      eventType,
			Query:     query,
			TotalHits: resp.TotalHits,
			Returned:  len(resp.Results),
			LatencyMs: latency.Milliseconds(),
			CacheHit:  cacheHit,
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Entry answers GET /api/v1/entries/{id} with the raw entry.
func (h *Handler) Entry(w http.ResponseWriter, r *http.Request) {
	idx := h.service.Index()
	if idx == nil {
		h.writeError(w, http.StatusServiceUnavailable, "index not built yet")
		return
	}
	id := r.PathValue("id")
	entry, ok := idx.Entry(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("no entry with id %q", id))
		return
	}
	h.writeJSON(w, http.StatusOK, entry)
}

// IndexStats answers GET /api/v1/index/stats.
func (h *Handler) IndexStats(w http.ResponseWriter, r *http.Request) {
	idx := h.service.Index()
	if idx == nil {
		h.writeJSON(w, http.StatusOK, map[string]any{"built": false})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"built":   true,
		"entries": idx.Len(),
		"tokens":  idx.TokenCount(),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) recordSearch(resp *searcher.SearchResponse, cacheHit bool, latency time.Duration) {
	if h.metrics == nil {
		return
	}
	if resp.TotalHits == 0 {
		h.metrics.SearchQueriesTotal.WithLabelValues("zero_result").Inc()
	} else {
		h.metrics.SearchQueriesTotal.WithLabelValues("results").Inc()
	}
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else if h.cache != nil {
		h.metrics.CacheMissesTotal.Inc()
	}
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	h.metrics.SearchResultsCount.Observe(float64(len(resp.Results)))
}

func (h *Handler) countQuery(resultType string) {
	if h.metrics == nil {
		return
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
