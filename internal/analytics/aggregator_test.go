package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func event(query string, hits int, latencyMs int64, cacheHit bool) SearchEvent {
	return SearchEvent{
		Type:      EventSearch,
		Query:     query,
		TotalHits: hits,
		Returned:  hits,
		LatencyMs: latencyMs,
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
	}
}

func TestAggregatorRecord(t *testing.T) {
	agg := NewAggregator()
	agg.Record(event("auth", 2, 10, false))
	agg.Record(event("auth", 2, 4, true))
	agg.Record(event("missing topic", 0, 6, false))

	stats := agg.Stats()
	if stats.TotalSearches != 3 {
		t.Errorf("TotalSearches = %d, want 3", stats.TotalSearches)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("cache hits/misses = %d/%d, want 1/2", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}
	wantAvg := float64(10+4+6) / 3
	if stats.AvgLatencyMs != wantAvg {
		t.Errorf("AvgLatencyMs = %v, want %v", stats.AvgLatencyMs, wantAvg)
	}
}

func TestAggregatorTopQueries(t *testing.T) {
	agg := NewAggregator()
	for i := 0; i < 5; i++ {
		agg.Record(event("auth", 1, 1, false))
	}
	for i := 0; i < 3; i++ {
		agg.Record(event("webhooks", 1, 1, false))
	}
	agg.Record(event("billing", 1, 1, false))

	stats := agg.Stats()
	if len(stats.TopQueries) != 3 {
		t.Fatalf("got %d top queries, want 3", len(stats.TopQueries))
	}
	if stats.TopQueries[0].Query != "auth" || stats.TopQueries[0].Count != 5 {
		t.Errorf("top query = %+v, want auth x5", stats.TopQueries[0])
	}
	if stats.TopQueries[1].Query != "webhooks" {
		t.Errorf("second query = %+v, want webhooks", stats.TopQueries[1])
	}
}

func TestAggregatorZeroResultQueries(t *testing.T) {
	agg := NewAggregator()
	agg.Record(event("zyxxyz", 0, 1, false))
	agg.Record(event("zyxxyz", 0, 1, false))
	agg.Record(event("", 0, 1, false))

	stats := agg.Stats()
	if len(stats.ZeroResultQueries) != 1 {
		t.Fatalf("got %d zero-result queries, want 1 (blank queries excluded)", len(stats.ZeroResultQueries))
	}
	if stats.ZeroResultQueries[0].Query != "zyxxyz" || stats.ZeroResultQueries[0].Count != 2 {
		t.Errorf("zero-result query = %+v", stats.ZeroResultQueries[0])
	}
}

func TestAggregatorPercentiles(t *testing.T) {
	agg := NewAggregator()
	for i := int64(1); i <= 100; i++ {
		agg.Record(event("q", 1, i, false))
	}
	stats := agg.Stats()
	if stats.P50LatencyMs < 45 || stats.P50LatencyMs > 55 {
		t.Errorf("P50 = %d, want near 50", stats.P50LatencyMs)
	}
	if stats.P95LatencyMs < 90 || stats.P95LatencyMs > 100 {
		t.Errorf("P95 = %d, want near 95", stats.P95LatencyMs)
	}
	if stats.P99LatencyMs < stats.P95LatencyMs {
		t.Errorf("P99 %d below P95 %d", stats.P99LatencyMs, stats.P95LatencyMs)
	}
}

func TestHandleEventDecodesAndRecords(t *testing.T) {
	agg := NewAggregator()
	h := HandleEvent(agg)

	payload, err := json.Marshal(event("kafka query", 3, 7, false))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := h(context.Background(), []byte("k"), payload); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if stats := agg.Stats(); stats.TotalSearches != 1 {
		t.Errorf("TotalSearches = %d, want 1", stats.TotalSearches)
	}
}

func TestHandleEventSkipsMalformed(t *testing.T) {
	agg := NewAggregator()
	h := HandleEvent(agg)
	if err := h(context.Background(), nil, []byte("{not json")); err != nil {
		t.Errorf("malformed event returned error %v, want nil (skip and continue)", err)
	}
	if stats := agg.Stats(); stats.TotalSearches != 0 {
		t.Errorf("malformed event was recorded")
	}
}

func TestPercentileEmpty(t *testing.T) {
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile(nil) = %d, want 0", got)
	}
}
