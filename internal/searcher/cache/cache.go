// Package cache provides a Redis-backed cache of search responses. Cached
// responses live until the TTL expires or the index is rebuilt, whichever
// comes first; rebuilds invalidate the whole keyspace because every cached
// response may be stale.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/nimbusdocs/docsearch/internal/index/normalize"
	"github.com/nimbusdocs/docsearch/internal/searcher"
	"github.com/nimbusdocs/docsearch/pkg/config"
	pkgredis "github.com/nimbusdocs/docsearch/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "docsearch:q:"

type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, query string, limit int) (*searcher.SearchResponse, bool) {
	key := c.buildKey(query, limit)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var resp searcher.SearchResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", query, "key", key)
	return &resp, true
}

func (c *QueryCache) Set(ctx context.Context, query string, limit int, resp *searcher.SearchResponse) {
	key := c.buildKey(query, limit)
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL.Std()); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached response for (query, limit) or computes
// and stores it. Concurrent identical queries are collapsed into a single
// computation. The second return reports whether the response was a cache
// hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	limit int,
	computeFn func() *searcher.SearchResponse,
) (*searcher.SearchResponse, bool) {
	if resp, ok := c.Get(ctx, query, limit); ok {
		return resp, true
	}
	key := c.buildKey(query, limit)
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		if resp, ok := c.Get(ctx, query, limit); ok {
			return resp, nil
		}
		resp := computeFn()
		c.Set(ctx, query, limit, resp)
		return resp, nil
	})
	return val.(*searcher.SearchResponse), false
}

// Invalidate drops every cached search response.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("query cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey hashes the normalized query so equivalent spellings share one
// cache slot. The whole normalized query is included alongside the sorted
// terms because term order matters for phrase-keyword matches.
func (c *QueryCache) buildKey(query string, limit int) string {
	terms := normalize.Tokenize(query)
	sort.Strings(terms)
	raw := fmt.Sprintf("%s|%s|limit=%d", normalize.Normalize(query), strings.Join(terms, ","), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
