// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wdtp/api/internal/platform/constants"
)

// ResponseCache is a read-through JSON cache for list and statistics
// surfaces. Keys embed the surface's current version counter, so writers
// never touch response entries directly; bumping the version orphans them.
type ResponseCache struct {
	client   *redis.Client
	versions VersionStore
	ttl      time.Duration
	logger   *slog.Logger
}

// NewResponseCache creates a ResponseCache.
//
// The TTL bounds how long orphaned entries (superseded versions) linger,
// not how long data stays fresh. Freshness is the version counter's job.
func NewResponseCache(client *redis.Client, versions VersionStore, ttl time.Duration, logger *slog.Logger) *ResponseCache {
	return &ResponseCache{
		client:   client,
		versions: versions,
		ttl:      ttl,
		logger:   logger,
	}
}

/*
Fetch loads a value through the cache.

Description: Builds a version-embedded key, attempts a cache read, and falls
back to the loader on any miss. Cache infrastructure failures degrade to a
direct loader call; they are logged and never surfaced to the caller.

Parameters:
  - context: context.Context
  - cache: The ResponseCache (nil disables caching entirely)
  - surface: The VersionKey whose counter versions this entry
  - suffix: Entry discriminator within the surface (path + query shape)
  - loader: Source-of-truth fetch executed on cache miss

Returns:
  - T: The cached or freshly loaded value
  - error: Loader errors only
*/
func Fetch[T any](context context.Context, cache *ResponseCache, surface VersionKey, suffix string, loader func(context.Context) (T, error)) (T, error) {
	var zero T

	if cache == nil {
		return loader(context)
	}

	key, ok := cache.keyFor(context, surface, suffix)
	if !ok {
		// Version lookup failed: serving under a guessed version could pin
		// stale data, so skip the cache for this call.
		return loader(context)
	}

	// 1. Attempt the cache read
	payload, err := cache.client.Get(context, key).Bytes()
	if err == nil {
		var value T
		if unmarshalErr := json.Unmarshal(payload, &value); unmarshalErr == nil {
			return value, nil
		}
		// Corrupt entry: fall through to the loader and overwrite below.
	} else if !errors.Is(err, redis.Nil) {
		cache.logger.WarnContext(context, "response_cache_read_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}

	// 2. Load from the source of truth
	value, err := loader(context)
	if err != nil {
		return zero, err
	}

	// 3. Store best-effort for the next reader
	payload, err = json.Marshal(value)
	if err == nil {
		if setErr := cache.client.Set(context, key, payload, cache.ttl).Err(); setErr != nil {
			cache.logger.WarnContext(context, "response_cache_write_failed",
				slog.String("key", key),
				slog.Any("error", setErr),
			)
		}
	}

	return value, nil
}

// keyFor builds the version-embedded cache key for a surface entry.
func (cache *ResponseCache) keyFor(context context.Context, surface VersionKey, suffix string) (string, bool) {
	version, err := cache.versions.Current(context, surface)
	if err != nil {
		cache.logger.WarnContext(context, "response_cache_version_unavailable",
			slog.String("surface", string(surface)),
			slog.Any("error", err),
		)
		return "", false
	}

	return fmt.Sprintf("%s%s:v%d:%s", constants.RedisPrefixResponse, surface, version, suffix), true
}
