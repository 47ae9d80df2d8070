// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package cache

import (
	"context"
	"sync"
)

// MemoryVersionStore is an in-process VersionStore.
//
// It backs tests and single-node development runs where Redis is not
// available. Counters live only as long as the process.
type MemoryVersionStore struct {
	mu       sync.Mutex
	counters map[VersionKey]int64
	bumps    map[VersionKey]int
}

// NewMemoryVersionStore creates an empty in-memory VersionStore.
func NewMemoryVersionStore() *MemoryVersionStore {
	return &MemoryVersionStore{
		counters: make(map[VersionKey]int64),
		bumps:    make(map[VersionKey]int),
	}
}

// Bump atomically increments the counter and returns the new value.
func (store *MemoryVersionStore) Bump(context context.Context, key VersionKey) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.counters[key]++
	store.bumps[key]++
	return store.counters[key], nil
}

// Current returns the counter value, or 1 if it has never been bumped.
func (store *MemoryVersionStore) Current(context context.Context, key VersionKey) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	value, found := store.counters[key]
	if !found {
		return 1, nil
	}
	return value, nil
}

// BumpCount reports how many times a key has been bumped.
func (store *MemoryVersionStore) BumpCount(key VersionKey) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	return store.bumps[key]
}
