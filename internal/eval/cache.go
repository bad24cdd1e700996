package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache is a Redis-backed store of scoring-oracle results.
//
// Keys are "{fen}_{lines}"; the value is a JSON object mapping depth to the
// result obtained at that depth. A lookup is satisfied by the lowest cached
// depth at or above the requested one, so a deep analysis keeps serving
// shallower requests. Cache failures degrade to misses, never to errors.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewCache wraps an already-connected Redis client.
func NewCache(rdb *redis.Client, log zerolog.Logger) *Cache {
	return &Cache{
		rdb: rdb,
		ttl: 7 * 24 * time.Hour,
		log: log,
	}
}

func cacheKey(fen string, lines int) string {
	return fmt.Sprintf("%s_%d", fen, lines)
}

// pickDepth returns the lowest available depth >= want.
func pickDepth(available []int, want int) (int, bool) {
	best := -1
	for _, d := range available {
		if d >= want && (best == -1 || d < best) {
			best = d
		}
	}
	return best, best != -1
}

// Get returns a cached result with sufficient depth, if any.
func (c *Cache) Get(ctx context.Context, fen string, depth, lines int) (*Result, bool) {
	data, err := c.rdb.Get(ctx, cacheKey(fen, lines)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("cache get failed")
		return nil, false
	}

	var byDepth map[string]*Result
	if err := json.Unmarshal([]byte(data), &byDepth); err != nil {
		c.log.Warn().Err(err).Msg("cache entry corrupt")
		return nil, false
	}

	depths := make([]int, 0, len(byDepth))
	for k := range byDepth {
		if d, err := strconv.Atoi(k); err == nil {
			depths = append(depths, d)
		}
	}
	best, ok := pickDepth(depths, depth)
	if !ok {
		return nil, false
	}
	return byDepth[strconv.Itoa(best)], true
}

// Put records a result under its depth, preserving results cached at other
// depths for the same position.
func (c *Cache) Put(ctx context.Context, fen string, depth, lines int, res *Result) {
	key := cacheKey(fen, lines)

	byDepth := map[string]*Result{}
	if data, err := c.rdb.Get(ctx, key).Result(); err == nil {
		_ = json.Unmarshal([]byte(data), &byDepth)
	}
	byDepth[strconv.Itoa(depth)] = res

	data, err := json.Marshal(byDepth)
	if err != nil {
		c.log.Warn().Err(err).Msg("cache marshal failed")
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache put failed")
	}
}

// Clear drops every cached analysis.
func (c *Cache) Clear(ctx context.Context) error {
	return c.rdb.FlushDB(ctx).Err()
}

// Stats reports cache health for the ops endpoint.
func (c *Cache) Stats(ctx context.Context) (map[string]any, error) {
	size, err := c.rdb.DBSize(ctx).Result()
	if err != nil {
		return nil, err
	}
	stats := map[string]any{
		"connected":  true,
		"total_keys": size,
	}

	info, err := c.rdb.Info(ctx, "stats", "memory").Result()
	if err != nil {
		return stats, nil
	}
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		for _, field := range []string{"used_memory_human", "keyspace_hits", "keyspace_misses"} {
			if v, ok := strings.CutPrefix(line, field+":"); ok {
				stats[field] = v
			}
		}
	}
	return stats, nil
}
