package outwriter

import (
	"sync"

	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/schema"
)

// RegionValue is the current content of one mounted region.
type RegionValue struct {
	Region schema.Region
	Value  string
	Status schema.Status // set only on indicator regions
}

// RegionSurface is a contract.Surface that keeps the latest value of each mounted region.
// Regions that were not mounted are ignored. It is safe for concurrent use.
type RegionSurface struct {
	mu       sync.RWMutex
	order    []schema.Region
	values   map[schema.Region]RegionValue
	onChange func()
}

var _ contract.Surface = &RegionSurface{} // Compile-time check

// NewRegionSurface mounts the given regions in display order.
func NewRegionSurface(regions ...schema.Region) *RegionSurface {
	s := &RegionSurface{values: make(map[schema.Region]RegionValue, len(regions))}
	for _, region := range regions {
		if _, ok := s.values[region]; ok {
			continue
		}
		s.order = append(s.order, region)
		s.values[region] = RegionValue{Region: region}
	}
	return s
}

// NewTrackerSurface mounts the regions of the given trackers, plus the countdown.
func NewTrackerSurface(trackers []schema.TrackerName) *RegionSurface {
	var regions []schema.Region
	for _, name := range trackers {
		regions = append(regions, schema.RegionsFor(name)...)
	}
	return NewRegionSurface(append(regions, schema.CountdownRegion)...)
}

// OnChange registers a callback run after every effective update.
func (s *RegionSurface) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Update sets the text of region.
func (s *RegionSurface) Update(region schema.Region, value string) {
	s.set(region, func(v *RegionValue) { v.Value = value })
}

// Indicate sets the indicator state of region.
func (s *RegionSurface) Indicate(region schema.Region, status schema.Status) {
	s.set(region, func(v *RegionValue) {
		v.Status = status
		v.Value = contract.GetPlainStatus(status)
	})
}

func (s *RegionSurface) set(region schema.Region, apply func(*RegionValue)) {
	s.mu.Lock()
	current, ok := s.values[region]
	if !ok {
		s.mu.Unlock()
		return
	}
	apply(&current)
	s.values[region] = current
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

// Value returns the text of region and whether it is mounted.
func (s *RegionSurface) Value(region schema.Region) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[region]
	return v.Value, ok
}

// Values returns every mounted region in display order.
func (s *RegionSurface) Values() []RegionValue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RegionValue, 0, len(s.order))
	for _, region := range s.order {
		out = append(out, s.values[region])
	}
	return out
}
