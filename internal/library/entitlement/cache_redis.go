// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entitlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/taibuivan/comicpass/internal/platform/constants"
	"github.com/taibuivan/comicpass/internal/platform/ctxutil"
)

// Loader reads an entitlement from the source of truth.
type Loader func(ctx context.Context) (*Entitlement, error)

// Cache fronts entitlement reads on the reader path.
type Cache interface {
	Fetch(ctx context.Context, userID, comicID string, load Loader) (*Entitlement, error)
	Invalidate(ctx context.Context, userID, comicID string) error
}

// nullPayload marks a cached "no entitlement" result.
const nullPayload = "null"

// generationZero is the generation of a key that was never invalidated.
const generationZero = "0"

// # Scripts

// fillScript writes KEYS[1] only while KEYS[2] still holds the generation the
// load started under (ARGV[1]).
var fillScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// invalidateScript bumps the generation and drops the value atomically.
var invalidateScript = redis.NewScript(`
redis.call('INCR', KEYS[2])
redis.call('PEXPIRE', KEYS[2], ARGV[1])
redis.call('DEL', KEYS[1])
return 1
`)

// RedisCache implements [Cache] with JSON values under entitlement:<user>:<comic>.
//
// Concurrent misses for the same key share one load. Redis failures degrade to
// a direct load; they never fail the read.
//
// Every key has a generation counter that [RedisCache.Invalidate] bumps. A fill
// whose load began before an invalidation is discarded, so a read racing a
// purchase cannot pin the pre-purchase value for a whole TTL.
type RedisCache struct {
	client      *redis.Client
	ttl         time.Duration
	loadTimeout time.Duration
	group       singleflight.Group
	logger      *slog.Logger
}

// NewRedisCache creates a Redis-backed entitlement cache.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = constants.DefaultEntitlementCacheTTL
	}
	return &RedisCache{
		client:      client,
		ttl:         ttl,
		loadTimeout: constants.EntitlementLoadTimeout,
		logger:      logger,
	}
}

// Key returns the cache key for (userID, comicID).
func Key(userID, comicID string) string {
	return fmt.Sprintf("%s%s:%s", constants.RedisPrefixEntitlement, userID, comicID)
}

// GenerationKey returns the invalidation counter key for (userID, comicID).
func GenerationKey(userID, comicID string) string {
	return fmt.Sprintf("%s%s:%s", constants.RedisPrefixEntitlementGeneration, userID, comicID)
}

/*
Fetch returns the cached entitlement or fills the cache through load.

Description: The shared load runs on a context detached from the first
caller, bounded by the load timeout. A caller whose own context ends stops
waiting; the load carries on for the others.

Parameters:
  - ctx: context.Context
  - userID, comicID: string (UUID)
  - load: Loader (called at most once per key and generation across concurrent misses)

Returns:
  - *Entitlement: nil when the user holds no entitlement
  - error: Errors from load, or ctx.Err() when the caller gave up waiting
*/
func (cache *RedisCache) Fetch(ctx context.Context, userID, comicID string, load Loader) (*Entitlement, error) {
	key := Key(userID, comicID)
	generationKey := GenerationKey(userID, comicID)

	payload, err := cache.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if entitlement, decodeErr := decode(payload); decodeErr == nil {
			return entitlement, nil
		}
		cache.logger.Warn("entitlement_cache_corrupt", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		cache.logger.Warn("entitlement_cache_get_failed", slog.String("key", key), slog.Any("error", err))
	}

	// The generation is read before the load so an invalidation that lands
	// during the load is visible to the guarded SET.
	cacheable := true
	generation, err := cache.client.Get(ctx, generationKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		generation = generationZero
	case err != nil:
		cacheable = false
		cache.logger.Warn("entitlement_cache_generation_failed", slog.String("key", generationKey), slog.Any("error", err))
	}

	flight := cache.group.DoChan(key+"@"+generation, func() (any, error) {
		loadCtx, cancel := ctxutil.Detached(ctx, cache.loadTimeout)
		defer cancel()

		entitlement, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if cacheable {
			cache.fill(loadCtx, key, generationKey, generation, entitlement)
		}
		return entitlement, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-flight:
		if result.Err != nil {
			return nil, result.Err
		}
		entitlement, _ := result.Val.(*Entitlement)
		return entitlement, nil
	}
}

// fill stores entitlement unless the key was invalidated after generation was read.
func (cache *RedisCache) fill(ctx context.Context, key, generationKey, generation string, entitlement *Entitlement) {
	encoded := []byte(nullPayload)
	if entitlement != nil {
		var err error
		if encoded, err = json.Marshal(entitlement); err != nil {
			return
		}
	}

	stored, err := fillScript.Run(ctx, cache.client,
		[]string{key, generationKey},
		generation, encoded, cache.ttl.Milliseconds(),
	).Int()
	switch {
	case err != nil:
		cache.logger.Warn("entitlement_cache_set_failed", slog.String("key", key), slog.Any("error", err))
	case stored == 0:
		cache.logger.Debug("entitlement_cache_fill_superseded", slog.String("key", key))
	}
}

// Invalidate drops the cached entry for (userID, comicID) and retires any
// fill still in flight for it.
func (cache *RedisCache) Invalidate(ctx context.Context, userID, comicID string) error {
	err := invalidateScript.Run(ctx, cache.client,
		[]string{Key(userID, comicID), GenerationKey(userID, comicID)},
		cache.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("redis_entitlement_invalidate_failed: %w", err)
	}
	return nil
}

func decode(payload string) (*Entitlement, error) {
	if payload == nullPayload {
		return nil, nil
	}
	var entitlement Entitlement
	if err := json.Unmarshal([]byte(payload), &entitlement); err != nil {
		return nil, err
	}
	return &entitlement, nil
}
