package core

import (
	"context"
	"sync"
	"time"
)

// countdownInterval is the period of the display-only countdown ticker.
const countdownInterval = time.Second

// Schedule is an armed refresh cycle. It owns two tickers: one at the freshness
// window that re-runs the full resolution, and a one-second countdown for display.
// Release it with Stop or by cancelling the context it was armed with.
type Schedule struct {
	cancel   context.CancelFunc
	done     chan struct{}
	inflight sync.WaitGroup
}

// newSchedule starts the tickers in a background goroutine. tick is called once
// immediately so the countdown shows up without waiting a full second.
func newSchedule(ctx context.Context, interval time.Duration, refresh func(context.Context), tick func()) *Schedule {
	ctx, cancel := context.WithCancel(ctx)
	s := &Schedule{cancel: cancel, done: make(chan struct{})}
	go s.run(ctx, interval, refresh, tick)
	return s
}

func (s *Schedule) run(ctx context.Context, interval time.Duration, refresh func(context.Context), tick func()) {
	defer close(s.done)

	refreshTicker := time.NewTicker(interval)
	defer refreshTicker.Stop()
	countdownTicker := time.NewTicker(countdownInterval)
	defer countdownTicker.Stop()

	tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-refreshTicker.C:
			// Cycles are not serialized: a slow fetch may overlap the next one.
			s.inflight.Add(1)
			go func() {
				defer s.inflight.Done()
				refresh(ctx)
			}()
		case <-countdownTicker.C:
			tick()
		}
	}
}

// Stop cancels both tickers and waits for any in-flight refresh to return.
// It is safe to call more than once.
func (s *Schedule) Stop() {
	s.cancel()
	<-s.done
	s.inflight.Wait()
}

// Done is closed once the tickers have stopped.
func (s *Schedule) Done() <-chan struct{} {
	return s.done
}

// Active reports whether the schedule is still running.
func (s *Schedule) Active() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}
