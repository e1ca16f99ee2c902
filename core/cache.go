package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/huangsam/folio/internal/contract"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// CacheEntry is one tracker's cached snapshot. There is one per tracker per session.
type CacheEntry[T any] struct {
	Key      string
	Payload  T
	StoredAt time.Time // zero once invalidated
}

// readEntry loads the entry under key. A miss returns (nil, nil); a version mismatch
// or undecodable payload returns a CacheParseError.
func readEntry[T any](store contract.CacheStore, key string) (*CacheEntry[T], error) {
	data, version, ts, err := store.Get(key)
	if errors.Is(err, contract.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry %q: %w", key, err)
	}

	if version != currentCacheVersion {
		return nil, &CacheParseError{Key: key, Err: fmt.Errorf("version %d, want %d", version, currentCacheVersion)}
	}

	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &CacheParseError{Key: key, Err: err}
	}

	entry := &CacheEntry[T]{Key: key, Payload: payload}
	if ts > 0 {
		entry.StoredAt = time.UnixMilli(ts)
	}
	return entry, nil
}

// writeEntry overwrites the entry under key with storedAt = now.
func writeEntry[T any](store contract.CacheStore, key string, payload T, now time.Time) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %q: %w", key, err)
	}
	return store.Set(key, data, currentCacheVersion, now.UnixMilli())
}

// expireEntry zeroes the stored-at of key and keeps the payload for fallback.
func expireEntry(store contract.CacheStore, key string) error {
	data, version, _, err := store.Get(key)
	if errors.Is(err, contract.ErrCacheMiss) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache entry %q: %w", key, err)
	}
	return store.Set(key, data, version, 0)
}
