package core

import (
	"context"
	"sync"
	"time"

	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/internal/logging"
	"github.com/huangsam/folio/schema"
	"github.com/rs/zerolog"
)

// Policy configures one tracker for the generic Controller.
// R is the raw upstream response and T the display-ready snapshot.
type Policy[R, T any] struct {
	Name   schema.TrackerName
	Key    string
	Window time.Duration

	// Fetch performs the network call. It returns a NetworkError or APIError on failure.
	Fetch func(ctx context.Context) (R, error)

	// Parse validates the raw response and derives the snapshot. A response that
	// fails validation returns an APIError and is never cached.
	Parse func(raw R, now time.Time) (T, error)

	// Default returns the structurally complete fallback snapshot.
	Default func() T

	// InvalidateOnRefresh expires the entry before each scheduled cycle.
	InvalidateOnRefresh bool
}

// Resolution is the outcome of one access to a tracker.
type Resolution[T any] struct {
	Snapshot  T
	State     schema.State
	Status    schema.Status
	Defaulted bool
	StoredAt  time.Time
	Err       error
}

// Armable reports whether the resolution produced usable data worth scheduling a refresh for.
func (r Resolution[T]) Armable() bool {
	return r.State != schema.OfflineState || !r.Defaulted
}

// Controller is the cache-refresh controller shared by every tracker.
// It reads the session cache, checks freshness, fetches when needed and
// reconciles failures against stale or default data. Every Resolve ends in
// exactly one Present call.
type Controller[R, T any] struct {
	policy    Policy[R, T]
	store     contract.CacheStore
	presenter contract.Presenter[T]
	countdown contract.CountdownFunc
	now       func() time.Time
	log       zerolog.Logger

	mu       sync.Mutex
	state    schema.State
	storedAt time.Time
	schedule *Schedule
}

// NewController builds a controller for policy over store. A nil presenter discards renders.
func NewController[R, T any](policy Policy[R, T], store contract.CacheStore, presenter contract.Presenter[T]) *Controller[R, T] {
	if presenter == nil {
		presenter = discardPresenter[T]{}
	}
	if store == nil {
		store = nopStore{}
	}
	return &Controller[R, T]{
		policy:    policy,
		store:     store,
		presenter: presenter,
		now:       time.Now,
		state:     schema.EmptyState,
		log:       logging.With().Str("tracker", string(policy.Name)).Logger(),
	}
}

// WithClock replaces the wall clock, for tests.
func (c *Controller[R, T]) WithClock(now func() time.Time) *Controller[R, T] {
	c.now = now
	return c
}

// WithCountdown registers the receiver of the armed countdown ticks.
func (c *Controller[R, T]) WithCountdown(fn contract.CountdownFunc) *Controller[R, T] {
	c.countdown = fn
	return c
}

// Name returns the tracker name.
func (c *Controller[R, T]) Name() schema.TrackerName {
	return c.policy.Name
}

// State returns the state the controller settled in after its last access.
func (c *Controller[R, T]) State() schema.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller[R, T]) transition(to schema.State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()
	c.log.Debug().Str("from", string(from)).Str("to", string(to)).Msg("state transition")
}

// Resolve runs one access: fresh cache short-circuits, otherwise a fetch is attempted
// and a failure falls back to stale cache, then to the default snapshot. It never fails.
func (c *Controller[R, T]) Resolve(ctx context.Context) Resolution[T] {
	entry, err := readEntry[T](c.store, c.policy.Key)
	if err != nil {
		c.log.Warn().Err(err).Msg("ignoring cache entry")
		entry = nil
	}

	if entry != nil && IsFresh(entry.StoredAt, c.policy.Window, c.now()) {
		c.transition(schema.CachedFreshState)
		return c.finish(Resolution[T]{
			Snapshot: entry.Payload,
			State:    schema.CachedFreshState,
			Status:   schema.SuccessStatus,
			StoredAt: entry.StoredAt,
		})
	}

	if entry != nil {
		c.transition(schema.CachedStaleState)
	} else {
		c.transition(schema.EmptyState)
	}
	c.transition(schema.LoadingState)
	c.presenter.Indicate(schema.FetchingStatus)

	snapshot, err := c.fetch(ctx)
	if err == nil {
		storedAt := c.now()
		if werr := writeEntry(c.store, c.policy.Key, snapshot, storedAt); werr != nil {
			c.log.Warn().Err(werr).Msg("failed to write cache entry")
		}
		c.transition(schema.LiveState)
		return c.finish(Resolution[T]{
			Snapshot: snapshot,
			State:    schema.LiveState,
			Status:   schema.SuccessStatus,
			StoredAt: storedAt,
		})
	}

	c.transition(schema.OfflineState)
	if entry != nil {
		c.log.Warn().Err(err).Time("stored_at", entry.StoredAt).Msg("fetch failed, using stale cache")
		return c.finish(Resolution[T]{
			Snapshot: entry.Payload,
			State:    schema.OfflineState,
			Status:   schema.OfflineStatus,
			StoredAt: entry.StoredAt,
			Err:      err,
		})
	}

	c.log.Warn().Err(err).Msg("fetch failed, using default snapshot")
	return c.finish(Resolution[T]{
		Snapshot:  c.policy.Default(),
		State:     schema.OfflineState,
		Status:    schema.OfflineStatus,
		Defaulted: true,
		Err:       err,
	})
}

func (c *Controller[R, T]) fetch(ctx context.Context) (T, error) {
	var zero T
	raw, err := c.policy.Fetch(ctx)
	if err != nil {
		return zero, err
	}
	return c.policy.Parse(raw, c.now())
}

// finish records the outcome and renders it exactly once.
func (c *Controller[R, T]) finish(res Resolution[T]) Resolution[T] {
	c.mu.Lock()
	c.storedAt = res.StoredAt
	c.mu.Unlock()

	c.presenter.Present(contract.View[T]{
		Tracker:   c.policy.Name,
		Snapshot:  res.Snapshot,
		State:     res.State,
		Status:    res.Status,
		Defaulted: res.Defaulted,
		StoredAt:  res.StoredAt,
	})
	return res
}

// Invalidate marks the cached entry expired so the next access refetches.
// The payload is kept, so a failed refetch still falls back to it.
func (c *Controller[R, T]) Invalidate() error {
	if err := expireEntry(c.store, c.policy.Key); err != nil {
		return err
	}
	c.mu.Lock()
	c.storedAt = time.Time{}
	c.mu.Unlock()
	c.log.Debug().Msg("cache entry invalidated")
	return nil
}

// Arm starts the refresh schedule. Arming an already armed controller returns
// the running schedule.
func (c *Controller[R, T]) Arm(ctx context.Context) *Schedule {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.schedule != nil && c.schedule.Active() {
		return c.schedule
	}
	c.schedule = newSchedule(ctx, c.policy.Window, c.refresh, c.tick)
	c.log.Debug().Dur("interval", c.policy.Window).Msg("refresh scheduled")
	return c.schedule
}

// refresh is one scheduled cycle. It re-runs the whole resolution, not just the fetch.
func (c *Controller[R, T]) refresh(ctx context.Context) {
	if c.policy.InvalidateOnRefresh {
		if err := c.Invalidate(); err != nil {
			c.log.Warn().Err(err).Msg("failed to invalidate before refresh")
		}
	}
	c.Resolve(ctx)
}

func (c *Controller[R, T]) tick() {
	if c.countdown == nil {
		return
	}
	c.mu.Lock()
	storedAt := c.storedAt
	c.mu.Unlock()
	c.countdown(c.policy.Name, Remaining(storedAt, c.policy.Window, c.now()))
}

// Start resolves once and arms the schedule when the result is usable.
// The returned schedule is nil when nothing was armed.
func (c *Controller[R, T]) Start(ctx context.Context) (Resolution[T], *Schedule) {
	res := c.Resolve(ctx)
	if !res.Armable() {
		return res, nil
	}
	return res, c.Arm(ctx)
}

// Watch resolves once, arms the schedule when the result is usable and
// reports whether a schedule is running.
func (c *Controller[R, T]) Watch(ctx context.Context) (schema.TrackerReport, bool) {
	res, s := c.Start(ctx)
	return toReport(c.policy.Name, res), s != nil
}

// Close stops the armed schedule, if any.
func (c *Controller[R, T]) Close() {
	c.mu.Lock()
	s := c.schedule
	c.schedule = nil
	c.mu.Unlock()

	if s != nil {
		s.Stop()
	}
}

// Report resolves once and flattens the outcome for the structured outputs.
func (c *Controller[R, T]) Report(ctx context.Context) schema.TrackerReport {
	return toReport(c.policy.Name, c.Resolve(ctx))
}

func toReport[T any](name schema.TrackerName, res Resolution[T]) schema.TrackerReport {
	report := schema.TrackerReport{
		Tracker:   name,
		State:     res.State,
		Status:    res.Status,
		Defaulted: res.Defaulted,
		StoredAt:  res.StoredAt,
		Snapshot:  res.Snapshot,
	}
	if res.Err != nil {
		report.Error = res.Err.Error()
	}
	return report
}

type discardPresenter[T any] struct{}

func (discardPresenter[T]) Indicate(schema.Status) {}
func (discardPresenter[T]) Present(contract.View[T]) {}

// nopStore stands in for a missing store: every read misses.
type nopStore struct{}

func (nopStore) Get(string) ([]byte, int, int64, error) { return nil, 0, 0, contract.ErrCacheMiss }
func (nopStore) Set(string, []byte, int, int64) error { return nil }
func (nopStore) Delete(string) error { return nil }
func (nopStore) GetStatus() (schema.CacheStatus, error) { return schema.CacheStatus{Backend: "none"}, nil }
func (nopStore) Close() error { return nil }
