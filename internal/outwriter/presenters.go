package outwriter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/schema"
)

// viewsPlaceholder is shown instead of a number when no count was ever obtained.
const viewsPlaceholder = "--"

// commitBarScale is the estimate at which the commit bar is full.
const commitBarScale = 500

var (
	_ contract.Presenter[schema.ActivitySnapshot] = &ActivityPresenter{} // Compile-time check
	_ contract.Presenter[schema.ViewSnapshot]     = &ViewsPresenter{}
	_ contract.Presenter[schema.JudgeSnapshot]    = &JudgePresenter{}
)

// ActivityPresenter projects the activity snapshot onto a surface.
type ActivityPresenter struct {
	Surface  contract.Surface
	BarWidth int
}

// Indicate updates the activity status indicator.
func (p *ActivityPresenter) Indicate(status schema.Status) {
	p.Surface.Indicate(schema.ActivityStatusRegion, status)
}

// Present renders every activity region.
func (p *ActivityPresenter) Present(view contract.View[schema.ActivitySnapshot]) {
	s := view.Snapshot
	p.Surface.Indicate(schema.ActivityStatusRegion, view.Status)
	p.Surface.Update(schema.LanguagesRegion, FormatLanguages(s.Languages))
	p.Surface.Update(schema.TopRepoRegion, FormatTopRepo(s.TopRepo))
	p.Surface.Update(schema.CommitBarRegion, fmt.Sprintf("%s ~%d commits",
		contract.Bar(float64(s.CommitStats.Estimate)/commitBarScale, p.BarWidth), s.CommitStats.Estimate))
	p.Surface.Update(schema.ActivityBarRegion, fmt.Sprintf("%s %d/%d active",
		contract.Bar(s.FrequencyStats.Ratio, p.BarWidth), s.CommitStats.ActiveRepos, s.CommitStats.TotalRepos))
	p.Surface.Update(schema.FrequencyRegion, string(s.FrequencyStats.Label))
	p.Surface.Update(schema.LastUpdatedRegion, formatTime(s.LastUpdated))
}

// ViewsPresenter projects the view count onto a surface.
type ViewsPresenter struct {
	Surface contract.Surface
}

// Indicate updates the views status indicator.
func (p *ViewsPresenter) Indicate(status schema.Status) {
	p.Surface.Indicate(schema.ViewsStatusRegion, status)
}

// Present renders the count, or the placeholder when only the default is available.
func (p *ViewsPresenter) Present(view contract.View[schema.ViewSnapshot]) {
	p.Surface.Indicate(schema.ViewsStatusRegion, view.Status)
	if view.Defaulted {
		p.Surface.Update(schema.ViewCountRegion, viewsPlaceholder)
		return
	}
	p.Surface.Update(schema.ViewCountRegion, strconv.Itoa(view.Snapshot.Count))
}

// JudgePresenter projects the judge stats onto a surface.
type JudgePresenter struct {
	Surface contract.Surface
}

// Indicate updates the judge status indicator.
func (p *JudgePresenter) Indicate(status schema.Status) {
	p.Surface.Indicate(schema.JudgeStatusRegion, status)
}

// Present renders the solved counts.
func (p *JudgePresenter) Present(view contract.View[schema.JudgeSnapshot]) {
	s := view.Snapshot
	p.Surface.Indicate(schema.JudgeStatusRegion, view.Status)
	p.Surface.Update(schema.JudgeSolvedRegion, strconv.Itoa(s.Solved))
	p.Surface.Update(schema.JudgeEasyRegion, strconv.Itoa(s.Easy))
	p.Surface.Update(schema.JudgeMediumRegion, strconv.Itoa(s.Medium))
	p.Surface.Update(schema.JudgeHardRegion, strconv.Itoa(s.Hard))
}

// CountdownPresenter merges the countdowns of all armed trackers into one region.
type CountdownPresenter struct {
	Surface contract.Surface

	mu        sync.Mutex
	remaining map[schema.TrackerName]time.Duration
}

// Countdown is the contract.CountdownFunc to hand to the trackers.
func (p *CountdownPresenter) Countdown(tracker schema.TrackerName, remaining time.Duration) {
	p.mu.Lock()
	if p.remaining == nil {
		p.remaining = make(map[schema.TrackerName]time.Duration)
	}
	p.remaining[tracker] = remaining

	names := make([]string, 0, len(p.remaining))
	for name := range p.remaining {
		names = append(names, string(name))
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, contract.FormatCountdown(p.remaining[schema.TrackerName(name)])))
	}
	p.mu.Unlock()

	p.Surface.Update(schema.CountdownRegion, strings.Join(parts, ", "))
}

// FormatLanguages renders the language histogram as "Go (3), JavaScript (2)".
func FormatLanguages(languages []schema.LanguageCount) string {
	if len(languages) == 0 {
		return "none"
	}
	parts := make([]string, len(languages))
	for i, lang := range languages {
		parts[i] = fmt.Sprintf("%s (%d)", lang.Name, lang.Count)
	}
	return strings.Join(parts, ", ")
}

// FormatTopRepo renders the top repository card on one line.
func FormatTopRepo(repo schema.TopRepo) string {
	return fmt.Sprintf("%s [%s] %d stars, %d forks", repo.Name, repo.Language, repo.Stars, repo.Forks)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(contract.DateTimeFormat)
}
