// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

/*
Package cache provides version-keyed cache invalidation primitives.

Instead of deleting cache entries on writes, the platform keeps a monotonic
version counter per cacheable surface. Readers embed the current version in
every cache key, so bumping a counter instantly orphans all keys minted under
the previous version. Orphaned entries expire via TTL.

Core pieces:

  - VersionStore: the counter backend (Redis INCR in production).
  - Bus: groups the counters that a wage write invalidates together.
  - ResponseCache: read-through JSON cache keyed by surface versions.

Counters only ever grow. A spurious bump costs one cache miss, never
incorrect data.
*/
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/wdtp/api/internal/platform/constants"
)

// VersionKey identifies one cacheable surface's version counter.
type VersionKey string

const (
	// KeyWages versions every wage-report list and statistics surface.
	KeyWages VersionKey = "wages_version"

	// KeyOrganizations versions organization listings (wage counters live there).
	KeyOrganizations VersionKey = "organizations_version"

	// KeyLocations versions location listings (wage counters live there).
	KeyLocations VersionKey = "locations_version"

	// KeyIndustries versions the industry taxonomy listing.
	KeyIndustries VersionKey = "industries_version"
)

// VersionStore is the counter backend.
//
// # Semantics
//
// Current returns 1 for a counter that has never been bumped, so fresh
// deployments read a stable version without any initialization step.
type VersionStore interface {
	// Bump atomically increments the counter and returns the new value.
	Bump(context context.Context, key VersionKey) (int64, error)

	// Current returns the counter value without modifying it.
	Current(context context.Context, key VersionKey) (int64, error)
}

// # Redis Implementation

// RedisVersionStore implements VersionStore on a shared Redis instance.
type RedisVersionStore struct {
	client *redis.Client
}

// NewRedisVersionStore creates a Redis-backed VersionStore.
func NewRedisVersionStore(client *redis.Client) *RedisVersionStore {
	return &RedisVersionStore{client: client}
}

/*
Bump atomically increments a version counter.

Parameters:
  - context: context.Context
  - key: VersionKey

Returns:
  - int64: The counter value after the increment
  - error: Connectivity errors
*/
func (store *RedisVersionStore) Bump(context context.Context, key VersionKey) (int64, error) {

	// INCR initializes absent keys to 0 before incrementing, so the first
	// bump observed by readers is version 1.
	value, err := store.client.Incr(context, redisKey(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("cache_version_bump_failed: %w", err)
	}

	return value, nil
}

/*
Current returns a version counter without modifying it.

Description: Absent counters read as 1 so that key construction never needs
a separate initialization path.

Parameters:
  - context: context.Context
  - key: VersionKey

Returns:
  - int64: The current counter value (1 if never bumped)
  - error: Connectivity errors
*/
func (store *RedisVersionStore) Current(context context.Context, key VersionKey) (int64, error) {

	value, err := store.client.Get(context, redisKey(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 1, nil
		}
		return 0, fmt.Errorf("cache_version_get_failed: %w", err)
	}

	return value, nil
}

// redisKey prefixes a version key into the shared cache taxonomy.
func redisKey(key VersionKey) string {
	return constants.RedisPrefixVersion + string(key)
}

// # Version Bus

// Bus groups the version counters that wage writes invalidate.
//
// Every committed wage mutation changes the wage population AND the
// denormalized counters displayed on locations and organizations, so all
// three surfaces version forward together.
type Bus struct {
	store  VersionStore
	logger *slog.Logger
}

// NewBus creates a Bus on top of a VersionStore.
func NewBus(store VersionStore, logger *slog.Logger) *Bus {
	return &Bus{store: store, logger: logger}
}

/*
BumpWageSurfaces bumps every counter affected by a wage-report mutation.

Description: Strictly best-effort. Bump failures are logged and swallowed;
the worst outcome of a missed bump is a stale cache entry living out its
TTL, which is an availability trade the read side accepts. Callers MUST
invoke this only after their database transaction has committed.

Parameters:
  - context: context.Context
*/
func (bus *Bus) BumpWageSurfaces(context context.Context) {
	for _, key := range []VersionKey{KeyWages, KeyOrganizations, KeyLocations} {
		if _, err := bus.store.Bump(context, key); err != nil {
			bus.logger.WarnContext(context, "cache_version_bump_skipped",
				slog.String("key", string(key)),
				slog.Any("error", err),
			)
		}
	}
}

/*
Current exposes the underlying counter read for response-cache key building.

Parameters:
  - context: context.Context
  - key: VersionKey

Returns:
  - int64: The current counter value
  - error: Connectivity errors
*/
func (bus *Bus) Current(context context.Context, key VersionKey) (int64, error) {
	return bus.store.Current(context, key)
}
