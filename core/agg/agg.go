// Package agg derives the activity snapshot from repository metadata.
//
// The commit estimate and frequency bands are heuristics kept for compatibility
// with the page they feed; they approximate activity and are not exact counts.
package agg

import (
	"sort"
	"time"

	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/schema"
)

// MaxLanguages is how many languages the histogram keeps.
const MaxLanguages = 6

// Frequency band thresholds on the active/total repo ratio.
const (
	highThreshold     = 0.7
	mediumThreshold   = 0.4
	moderateThreshold = 0.2
)

// BuildActivitySnapshot aggregates repos into the display-ready activity snapshot.
// now is the wall clock used for the active-repo window and LastUpdated.
func BuildActivitySnapshot(repos []schema.Repo, now time.Time) schema.ActivitySnapshot {
	commits := CommitStatsOf(repos, now)
	ratio := ActivityRatio(commits.ActiveRepos, commits.TotalRepos)

	return schema.ActivitySnapshot{
		Languages:   TopLanguages(repos, MaxLanguages),
		TopRepo:     TopRepoOf(repos),
		CommitStats: commits,
		FrequencyStats: schema.FrequencyStats{
			Ratio: ratio,
			Label: FrequencyLabel(ratio),
		},
		LastUpdated: now,
	}
}

// TopLanguages counts repos per language and returns the limit most common,
// by count descending. Ties keep the order in which languages first appeared.
// Repos without a language are skipped.
func TopLanguages(repos []schema.Repo, limit int) []schema.LanguageCount {
	counts := make(map[string]int)
	var order []string
	for _, repo := range repos {
		lang := repo.LanguageName()
		if lang == "" {
			continue
		}
		if _, seen := counts[lang]; !seen {
			order = append(order, lang)
		}
		counts[lang]++
	}

	languages := make([]schema.LanguageCount, 0, len(order))
	for _, lang := range order {
		languages = append(languages, schema.LanguageCount{Name: lang, Count: counts[lang]})
	}
	sort.SliceStable(languages, func(i, j int) bool {
		return languages[i].Count > languages[j].Count
	})

	if limit >= 0 && len(languages) > limit {
		languages = languages[:limit]
	}
	return languages
}

// TopRepoOf returns the most starred repo. The first one seen wins ties.
// An empty input yields the unavailable placeholder.
func TopRepoOf(repos []schema.Repo) schema.TopRepo {
	if len(repos) == 0 {
		return schema.DefaultActivitySnapshot().TopRepo
	}

	best := repos[0]
	for _, repo := range repos[1:] {
		if repo.StargazersCount > best.StargazersCount {
			best = repo
		}
	}

	lang := best.LanguageName()
	if lang == "" {
		lang = "Unknown"
	}
	return schema.TopRepo{
		Name:     best.Name,
		Language: lang,
		Stars:    best.StargazersCount,
		Forks:    best.ForksCount,
	}
}

// CommitStatsOf computes the star-based commit estimate and the active repo count.
// A repo is active when it was updated within contract.ActiveRepoWindow of now.
func CommitStatsOf(repos []schema.Repo, now time.Time) schema.CommitStats {
	stats := schema.CommitStats{TotalRepos: len(repos)}
	cutoff := now.Add(-contract.ActiveRepoWindow)
	for _, repo := range repos {
		stats.TotalStars += repo.StargazersCount
		if repo.UpdatedAt.After(cutoff) {
			stats.ActiveRepos++
		}
	}
	// Integer division floors for the non-negative star totals.
	stats.Estimate = stats.TotalStars / 2
	return stats
}

// ActivityRatio returns active/total, or 0 when there are no repos.
func ActivityRatio(active, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(active) / float64(total)
}

// FrequencyLabel maps an activity ratio onto the four ordered bands.
func FrequencyLabel(ratio float64) schema.FrequencyLabel {
	switch {
	case ratio > highThreshold:
		return schema.HighFrequency
	case ratio > mediumThreshold:
		return schema.MediumFrequency
	case ratio > moderateThreshold:
		return schema.ModerateFrequency
	default:
		return schema.CasualFrequency
	}
}
