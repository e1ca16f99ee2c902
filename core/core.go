// Package core has the cache-refresh protocol shared by the folio trackers.
package core

import (
	"context"

	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/schema"
)

// Tracker is the type-erased view of a Controller used by the commands.
type Tracker interface {
	Name() schema.TrackerName
	State() schema.State
	Report(ctx context.Context) schema.TrackerReport
	Watch(ctx context.Context) (schema.TrackerReport, bool)
	Invalidate() error
	Close()
}

var (
	_ Tracker = &Controller[[]schema.Repo, schema.ActivitySnapshot]{} // Compile-time check
	_ Tracker = &Controller[schema.ViewsResponse, schema.ViewSnapshot]{}
	_ Tracker = &Controller[schema.JudgeResponse, schema.JudgeSnapshot]{}
)

// Presenters holds one presenter per tracker. Nil presenters discard renders.
type Presenters struct {
	Activity contract.Presenter[schema.ActivitySnapshot]
	Views    contract.Presenter[schema.ViewSnapshot]
	Judge    contract.Presenter[schema.JudgeSnapshot]
}

// BuildTrackers creates the enabled trackers over a shared store, in configured order.
func BuildTrackers(cfg *contract.Config, store contract.CacheStore, presenters Presenters, countdown contract.CountdownFunc) []Tracker {
	client := NewHTTPClient(cfg.HTTPTimeout)

	trackers := make([]Tracker, 0, len(cfg.Trackers))
	for _, name := range cfg.Trackers {
		switch name {
		case schema.ActivityTracker:
			trackers = append(trackers, NewController(ActivityPolicy(cfg, client), store, presenters.Activity).WithCountdown(countdown))
		case schema.ViewsTracker:
			trackers = append(trackers, NewController(ViewsPolicy(cfg, client), store, presenters.Views).WithCountdown(countdown))
		case schema.JudgeTracker:
			trackers = append(trackers, NewController(JudgePolicy(cfg, client), store, presenters.Judge).WithCountdown(countdown))
		}
	}
	return trackers
}

// FindTracker returns the tracker with the given name, or nil.
func FindTracker(trackers []Tracker, name schema.TrackerName) Tracker {
	for _, t := range trackers {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// CloseTrackers stops every armed schedule.
func CloseTrackers(trackers []Tracker) {
	for _, t := range trackers {
		t.Close()
	}
}
