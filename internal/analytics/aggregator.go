package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/nimbusdocs/docsearch/pkg/kafka"
)

const (
	maxLatencySamples = 4096
	maxTrackedQueries = 1000
	topQueryCount     = 10
)

// QueryCount pairs a query string with how often it was seen.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// AggregatedStats is the snapshot served by the analytics endpoint.
type AggregatedStats struct {
	TotalSearches     int64        `json:"total_searches"`
	CacheHits         int64        `json:"cache_hits"`
	CacheMisses       int64        `json:"cache_misses"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      int64        `json:"p50_latency_ms"`
	P95LatencyMs      int64        `json:"p95_latency_ms"`
	P99LatencyMs      int64        `json:"p99_latency_ms"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
}

// Aggregator folds search events into running statistics. It is fed either
// directly via Record or from the Kafka analytics topic via HandleEvent.
type Aggregator struct {
	mu           sync.Mutex
	started      time.Time
	totalCount   int64
	cacheHits    int64
	cacheMisses  int64
	zeroResults  int64
	latencySum   int64
	latencies    []int64
	queryCounts  map[string]int64
	zeroQueries  map[string]int64
	logger       *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		started:     time.Now(),
		latencies:   make([]int64, 0, maxLatencySamples),
		queryCounts: make(map[string]int64),
		zeroQueries: make(map[string]int64),
		logger:      slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent returns a Kafka message handler that feeds the aggregator.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[SearchEvent](value)
		if err != nil {
			agg.logger.Warn("skipping malformed analytics event", "error", err)
			return nil
		}
		agg.Record(event)
		return nil
	}
}

// Record folds one event into the running statistics.
func (a *Aggregator) Record(event SearchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalCount++
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	a.latencySum += event.LatencyMs
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[int(a.totalCount)%maxLatencySamples] = event.LatencyMs
	}
	if len(a.queryCounts) < maxTrackedQueries || a.queryCounts[event.Query] > 0 {
		a.queryCounts[event.Query]++
	}
	if event.TotalHits == 0 && event.Query != "" {
		a.zeroResults++
		if len(a.zeroQueries) < maxTrackedQueries || a.zeroQueries[event.Query] > 0 {
			a.zeroQueries[event.Query]++
		}
	}
}

// Stats returns a snapshot of the aggregated statistics.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := AggregatedStats{
		TotalSearches:     a.totalCount,
		CacheHits:         a.cacheHits,
		CacheMisses:       a.cacheMisses,
		ZeroResultCount:   a.zeroResults,
		TopQueries:        topN(a.queryCounts, topQueryCount),
		ZeroResultQueries: topN(a.zeroQueries, topQueryCount),
	}
	if a.totalCount > 0 {
		stats.AvgLatencyMs = float64(a.latencySum) / float64(a.totalCount)
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		stats.P50LatencyMs = percentile(sorted, 0.50)
		stats.P95LatencyMs = percentile(sorted, 0.95)
		stats.P99LatencyMs = percentile(sorted, 0.99)
	}
	if elapsed := time.Since(a.started).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(a.totalCount) / elapsed
	}
	return stats
}

func topN(counts map[string]int64, n int) []QueryCount {
	all := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		all = append(all, QueryCount{Query: query, Count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Query < all[j].Query
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}
