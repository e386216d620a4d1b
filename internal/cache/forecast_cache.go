package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/modaflow/retail-insights/internal/models"
)

// forecastCacheEntry wraps a cached snapshot with its cache metadata.
type forecastCacheEntry struct {
	Snapshot models.ForecastSnapshot `json:"snapshot"`
	CachedAt time.Time               `json:"cached_at"`
}

// ForecastCacheStats tracks cache performance counters.
type ForecastCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

// RedisForecastCache holds recent forecast snapshots so the dashboard's
// polling interval does not recompute an identical forecast every cycle.
// The full snapshot (result plus normalized history) is cached, so a hit
// serves the same payload as a fresh computation. The engine itself is
// deterministic; the cache only saves work, staleness is bounded by the
// TTL.
type RedisForecastCache struct {
	redis  *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	stats  ForecastCacheStats
	prefix string
}

// NewRedisForecastCache creates a Redis-backed forecast cache.
func NewRedisForecastCache(redisClient *redis.Client, ttl time.Duration) *RedisForecastCache {
	return &RedisForecastCache{
		redis:  redisClient,
		ttl:    ttl,
		prefix: "forecast_cache:",
	}
}

func (c *RedisForecastCache) key(metric models.Metric, horizonDays int) string {
	return fmt.Sprintf("%s%s:%d", c.prefix, metric, horizonDays)
}

// Get retrieves a cached snapshot for the metric and horizon.
func (c *RedisForecastCache) Get(ctx context.Context, metric models.Metric, horizonDays int) (*models.ForecastSnapshot, bool) {
	data, err := c.redis.Get(ctx, c.key(metric, horizonDays)).Result()
	if err == redis.Nil {
		c.miss()
		return nil, false
	}
	if err != nil {
		log.Printf("Redis error getting forecast for %s/%d: %v", metric, horizonDays, err)
		c.miss()
		return nil, false
	}

	var entry forecastCacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		log.Printf("Error deserializing cached forecast for %s/%d: %v", metric, horizonDays, err)
		c.miss()
		return nil, false
	}

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()

	return &entry.Snapshot, true
}

// Set stores a forecast snapshot under the metric and horizon key.
func (c *RedisForecastCache) Set(ctx context.Context, metric models.Metric, horizonDays int, snapshot *models.ForecastSnapshot) {
	entry := forecastCacheEntry{
		Snapshot: *snapshot,
		CachedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Printf("Error serializing forecast for %s/%d: %v", metric, horizonDays, err)
		return
	}

	if err := c.redis.Set(ctx, c.key(metric, horizonDays), data, c.ttl).Err(); err != nil {
		log.Printf("Redis error setting forecast for %s/%d: %v", metric, horizonDays, err)
		return
	}

	c.mu.Lock()
	c.stats.Sets++
	c.mu.Unlock()
}

// Clear removes all cached forecasts.
func (c *RedisForecastCache) Clear(ctx context.Context) error {
	var keys []string
	iter := c.redis.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("error clearing cache: %w", err)
	}
	return nil
}

// GetStats returns current cache statistics.
func (c *RedisForecastCache) GetStats() ForecastCacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func (c *RedisForecastCache) miss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}
