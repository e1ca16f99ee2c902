// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"errors"
	"time"

	"github.com/huangsam/folio/schema"
)

// ErrCacheMiss is returned by a CacheStore when the key has no entry in the current session.
var ErrCacheMiss = errors.New("cache miss")

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetSessionStore() CacheStore
}

// CacheStore defines the interface for session-scoped cache storage.
// Timestamps are unix milliseconds. A zero timestamp marks an entry as expired.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	Delete(key string) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// Surface is a display surface made of named regions.
// Updating a region the surface does not have is a silent no-op.
type Surface interface {
	Update(region schema.Region, value string)
	Indicate(region schema.Region, status schema.Status)
}

// Presenter projects a tracker snapshot onto a display surface.
type Presenter[T any] interface {
	// Indicate updates only the status indicator of the tracker.
	Indicate(status schema.Status)

	// Present renders a resolved snapshot. It is called exactly once per resolution.
	Present(view View[T])
}

// View is what a presenter receives for one resolution.
type View[T any] struct {
	Tracker   schema.TrackerName
	Snapshot  T
	State     schema.State
	Status    schema.Status
	Defaulted bool
	StoredAt  time.Time
}

// CountdownFunc receives the time left until the next scheduled refresh.
// A value of zero or below means the refresh is due now.
type CountdownFunc func(tracker schema.TrackerName, remaining time.Duration)
