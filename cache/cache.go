// Package cache implements the thin KV cache with TTL over a
// Memcached/Redis-compatible store, plus the distributed per-(space,block)
// lock the ingestion pipeline uses to serialize writers. The cache is
// advisory: every caller must keep working correctly with it unreachable.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geo-kg/indexer/kgerr"
)

// Cache is a small KV cache with TTL, JSON serialization, and counters.
type Cache struct {
	client *redis.Client
}

// New builds a Cache from one or more Memcached/Redis-compatible server
// addresses (config.Config.Cache.Servers). Only the first address is used;
// a single logical Redis/Valkey endpoint is assumed.
func New(servers []string) (*Cache, error) {
	if len(servers) == 0 {
		return nil, fmt.Errorf("cache: no servers configured")
	}
	client := redis.NewClient(&redis.Options{Addr: servers[0]})
	return &Cache{client: client}, nil
}

// NewWithClient wraps an already-constructed client, primarily so tests can
// point the cache at a miniredis instance.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get deserializes the value stored at key into dest. A missing key
// returns NotFound; a present but malformed value returns
// SerializationError, never NotFound, so callers can distinguish "cache
// miss" from "cache corrupted".
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return kgerr.NotFoundErr("cache key %q", key)
	}
	if err != nil {
		return kgerr.StoreErr(err, "cache get %q", key)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return kgerr.SerializationErr(err, "cache value %q", key)
	}
	return nil
}

// Set stores value at key, serialized as JSON, with an optional ttl (zero
// means no expiry).
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return kgerr.SerializationErr(err, "cache value %q", key)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return kgerr.StoreErr(err, "cache set %q", key)
	}
	return nil
}

// Delete removes key, reporting whether it was present.
func (c *Cache) Delete(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Del(ctx, key).Result()
	if err != nil {
		return false, kgerr.StoreErr(err, "cache delete %q", key)
	}
	return n > 0, nil
}

// Flush removes every key in the cache.
func (c *Cache) Flush(ctx context.Context) error {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		return kgerr.StoreErr(err, "cache flush")
	}
	return nil
}

// Increment atomically adds n to the counter at key (creating it at n if
// absent) and returns the new value.
func (c *Cache) Increment(ctx context.Context, key string, n int64) (int64, error) {
	v, err := c.client.IncrBy(ctx, key, n).Result()
	if err != nil {
		return 0, kgerr.StoreErr(err, "cache increment %q", key)
	}
	return v, nil
}

// Decrement atomically subtracts n from the counter at key.
func (c *Cache) Decrement(ctx context.Context, key string, n int64) (int64, error) {
	v, err := c.client.DecrBy(ctx, key, n).Result()
	if err != nil {
		return 0, kgerr.StoreErr(err, "cache decrement %q", key)
	}
	return v, nil
}

// Lock key, derived from (spaceID, blockNumber), serializes ingestion
// writers per the shared-resource policy: graph-store writers only need to
// serialize per (space, block), never globally.
func LockKey(spaceID string, blockNumber uint64) string {
	return fmt.Sprintf("lock:ingest:%s:%d", spaceID, blockNumber)
}

// AcquireLock attempts to take the named lock for ttl using SETNX
// semantics, returning false (no error) if another writer already holds it.
func (c *Cache) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, kgerr.StoreErr(err, "cache acquire lock %q", key)
	}
	return ok, nil
}

// ReleaseLock drops a previously acquired lock.
func (c *Cache) ReleaseLock(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return kgerr.StoreErr(err, "cache release lock %q", key)
	}
	return nil
}

// Close releases the underlying client connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
