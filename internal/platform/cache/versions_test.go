// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package cache_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdtp/api/internal/platform/cache"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestMemoryVersionStore_AbsentReadsAsOne verifies the initialization contract:
a counter that has never been bumped reads as version 1.
*/
func TestMemoryVersionStore_AbsentReadsAsOne(t *testing.T) {
	store := cache.NewMemoryVersionStore()

	version, err := store.Current(context.Background(), cache.KeyWages)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

/*
TestMemoryVersionStore_Monotonic verifies that observed versions never
decrease across an arbitrary bump/read sequence.
*/
func TestMemoryVersionStore_Monotonic(t *testing.T) {
	store := cache.NewMemoryVersionStore()
	ctx := context.Background()

	previous := int64(0)
	for i := 0; i < 50; i++ {
		if i%3 == 0 {
			_, err := store.Bump(ctx, cache.KeyWages)
			require.NoError(t, err)
		}

		current, err := store.Current(ctx, cache.KeyWages)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, current, previous, "version must never decrease")
		previous = current
	}

	assert.Equal(t, 17, store.BumpCount(cache.KeyWages))
}

/*
TestBus_BumpWageSurfaces verifies that a wage mutation versions forward
every surface that displays wage-derived data, and only those.
*/
func TestBus_BumpWageSurfaces(t *testing.T) {
	store := cache.NewMemoryVersionStore()
	bus := cache.NewBus(store, testLogger())

	bus.BumpWageSurfaces(context.Background())
	bus.BumpWageSurfaces(context.Background())

	assert.Equal(t, 2, store.BumpCount(cache.KeyWages))
	assert.Equal(t, 2, store.BumpCount(cache.KeyOrganizations))
	assert.Equal(t, 2, store.BumpCount(cache.KeyLocations))
	assert.Equal(t, 0, store.BumpCount(cache.KeyIndustries))
}

// failingVersionStore simulates an unreachable counter backend.
type failingVersionStore struct{}

func (failingVersionStore) Bump(_ context.Context, _ cache.VersionKey) (int64, error) {
	return 0, errors.New("connection refused")
}

func (failingVersionStore) Current(_ context.Context, _ cache.VersionKey) (int64, error) {
	return 0, errors.New("connection refused")
}

/*
TestBus_BumpWageSurfaces_SwallowsFailures verifies that counter-backend
outages never propagate out of the bump path.
*/
func TestBus_BumpWageSurfaces_SwallowsFailures(t *testing.T) {
	bus := cache.NewBus(failingVersionStore{}, testLogger())

	assert.NotPanics(t, func() {
		bus.BumpWageSurfaces(context.Background())
	})
}
