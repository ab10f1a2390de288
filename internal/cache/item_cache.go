// Package cache is a best-effort Redis read-through cache for barcode lookups.
// Redis failures are logged and treated as misses; a nil *ItemCache or a
// nil client disables caching entirely.
//
// Entries are versioned by the item's last operation id. Invalidation leaves
// a tombstone carrying the committed version, and a write only lands when it
// is at least as new as what the key holds, so a scan that read the row
// before a concurrent operation cannot put the old count back.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"diplomsklad/internal/metrics"
	"diplomsklad/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	barcodeKeyPrefix = "item:barcode:"
	// DefaultTTL bounds staleness should an invalidation be lost.
	DefaultTTL = time.Hour

	fieldVersion = "v"
	fieldItem    = "item"

	invalidateTimeout = 2 * time.Second
)

// KEYS[1] key; ARGV[1] version, ARGV[2] item json, ARGV[3] ttl ms
var setScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'v')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
  return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'item', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// KEYS[1] key; ARGV[1] version, ARGV[2] ttl ms
var invalidateScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'v')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
  return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], 'v', ARGV[1])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

type ItemCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewItemCache(rdb *redis.Client, ttl time.Duration) *ItemCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ItemCache{rdb: rdb, ttl: ttl}
}

// BarcodeKey is the Redis key holding the cached item for barcode.
func BarcodeKey(barcode string) string { return barcodeKeyPrefix + barcode }

// Version orders cached states of one item. Operations on an item are
// serialized by its row lock, so operation ids grow with every change.
func Version(it *model.Item) uint {
	if it.LastOperationID == nil {
		return 0
	}
	return *it.LastOperationID
}

func (c *ItemCache) enabled() bool { return c != nil && c.rdb != nil }

// Get returns the cached item, or false on miss, tombstone or error.
func (c *ItemCache) Get(ctx context.Context, barcode string) (*model.Item, bool) {
	if !c.enabled() {
		return nil, false
	}
	b, err := c.rdb.HGet(ctx, BarcodeKey(barcode), fieldItem).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("barcode", barcode).Msg("item cache: get failed")
			metrics.BarcodeCache.WithLabelValues("error").Inc()
		} else {
			metrics.BarcodeCache.WithLabelValues("miss").Inc()
		}
		return nil, false
	}
	var it model.Item
	if err := json.Unmarshal(b, &it); err != nil {
		metrics.BarcodeCache.WithLabelValues("error").Inc()
		return nil, false
	}
	metrics.BarcodeCache.WithLabelValues("hit").Inc()
	return &it, true
}

// Set stores it under its barcode unless the key already holds a newer
// version.
func (c *ItemCache) Set(ctx context.Context, it *model.Item) {
	if !c.enabled() {
		return
	}
	b, err := json.Marshal(it)
	if err != nil {
		return
	}
	stored, err := setScript.Run(ctx, c.rdb, []string{BarcodeKey(it.Barcode)},
		strconv.FormatUint(uint64(Version(it)), 10), b, c.ttl.Milliseconds()).Int()
	if err != nil {
		log.Warn().Err(err).Str("barcode", it.Barcode).Msg("item cache: set failed")
		return
	}
	if stored == 0 {
		metrics.BarcodeCache.WithLabelValues("stale_write").Inc()
	}
}

// Invalidate replaces the entry for it with a tombstone at its version. It
// runs on a context detached from the caller's cancellation, because it is
// called after commit and a lost delete would serve a stale count.
func (c *ItemCache) Invalidate(ctx context.Context, it *model.Item) {
	if !c.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()
	err := invalidateScript.Run(ctx, c.rdb, []string{BarcodeKey(it.Barcode)},
		strconv.FormatUint(uint64(Version(it)), 10), c.ttl.Milliseconds()).Err()
	if err != nil {
		log.Warn().Err(err).Str("barcode", it.Barcode).Msg("item cache: invalidate failed")
	}
}
