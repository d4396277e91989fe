package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// TTLs per payload kind. Product pages churn with writes elsewhere in the
// platform, facet statistics move much slower, so pages expire sooner.
// Entries are never actively invalidated; staleness is bounded by the TTL.
const (
	PageTTL  = 2 * time.Minute
	FacetTTL = 30 * time.Minute
)

type entry struct {
	payload    []byte
	insertedAt time.Time
	ttl        time.Duration
}

// Cache memoizes computed catalog payloads as JSON. The in-process map is
// always on; Redis is an optional second tier shared across replicas and is
// skipped entirely when no client is configured.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	redis  *redis.Client
	logger *logrus.Entry

	now func() time.Time
}

func New(redisClient *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		redis:   redisClient,
		logger:  logger.WithField("component", "cache"),
		now:     time.Now,
	}
}

// GetOrComputeJSON returns the cached payload for key unmarshalled into dest,
// computing and storing it on a miss. Compute errors are returned as-is and
// nothing is cached for them; a failed result must not mask later successes.
func (c *Cache) GetOrComputeJSON(ctx context.Context, key string, dest interface{}, ttl time.Duration, compute func() (interface{}, error)) error {
	if payload, ok := c.lookup(ctx, key, ttl); ok {
		if err := json.Unmarshal(payload, dest); err == nil {
			return nil
		}
		c.logger.WithField("key", key).Warn("Discarding undecodable cache entry")
		c.delete(key)
	}

	value, err := compute()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store(ctx, key, payload, ttl)
	return json.Unmarshal(payload, dest)
}

func (c *Cache) lookup(ctx context.Context, key string, ttl time.Duration) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		if c.now().Sub(e.insertedAt) < e.ttl {
			return e.payload, true
		}
		c.delete(key)
	}

	if c.redis == nil {
		return nil, false
	}
	payload, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).Debug("Redis lookup failed")
		}
		return nil, false
	}

	// Warm the local tier so later hits skip the round-trip until the local
	// entry expires again.
	c.mu.Lock()
	c.entries[key] = entry{payload: payload, insertedAt: c.now(), ttl: ttl}
	c.mu.Unlock()

	return payload, true
}

func (c *Cache) store(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{payload: payload, insertedAt: c.now(), ttl: ttl}
	c.mu.Unlock()

	if c.redis != nil {
		if err := c.redis.Set(ctx, key, payload, ttl).Err(); err != nil {
			c.logger.WithError(err).Debug("Redis store failed")
		}
	}
}

func (c *Cache) delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
