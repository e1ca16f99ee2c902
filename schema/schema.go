// Package schema holds the shared data types for folio trackers and outputs.
package schema

import "time"

// Repo is one repository object as returned by the source-hosting API.
type Repo struct {
	Name            string    `json:"name"`
	Language        *string   `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LanguageName returns the repo language or an empty string when the host reports none.
func (r Repo) LanguageName() string {
	if r.Language == nil {
		return ""
	}
	return *r.Language
}

// LanguageCount is one bar of the language histogram.
type LanguageCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TopRepo describes the most starred repository.
type TopRepo struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Stars    int    `json:"stars"`
	Forks    int    `json:"forks"`
}

// CommitStats holds the heuristic commit estimate and repo activity counts.
// Estimate is half the total star count, floored. It approximates activity; it is not a commit count.
type CommitStats struct {
	Estimate    int `json:"estimate"`
	TotalStars  int `json:"total_stars"`
	ActiveRepos int `json:"active_repos"`
	TotalRepos  int `json:"total_repos"`
}

// FrequencyStats holds the activity ratio and the band it maps to.
type FrequencyStats struct {
	Ratio float64        `json:"ratio"`
	Label FrequencyLabel `json:"label"`
}

// ActivitySnapshot is the display-ready aggregate for the activity tracker.
type ActivitySnapshot struct {
	Languages      []LanguageCount `json:"languages"`
	TopRepo        TopRepo         `json:"top_repo"`
	CommitStats    CommitStats     `json:"commit_stats"`
	FrequencyStats FrequencyStats  `json:"frequency_stats"`
	LastUpdated    time.Time       `json:"last_updated"`
}

// ViewSnapshot is the display-ready page-view count.
type ViewSnapshot struct {
	Count int `json:"count"`
}

// JudgeSnapshot is the display-ready solved-problem breakdown.
type JudgeSnapshot struct {
	Solved int `json:"solved"`
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// ViewsResponse is the body of the view-counter endpoint. A count of -1 signals failure.
type ViewsResponse struct {
	Count *int `json:"count"`
}

// JudgeStats is the solved-problem object from the judge backend.
// Either SolvedProblem or TotalSolved carries the solved count depending on the upstream.
type JudgeStats struct {
	SolvedProblem *int `json:"solvedProblem,omitempty"`
	TotalSolved   *int `json:"totalSolved,omitempty"`
	EasySolved    int  `json:"easySolved"`
	MediumSolved  int  `json:"mediumSolved"`
	HardSolved    int  `json:"hardSolved"`
}

// JudgeResponse is the body of the judge-stats endpoint.
type JudgeResponse struct {
	Data *JudgeStats `json:"data"`
}

// DefaultActivitySnapshot returns the built-in activity fallback.
func DefaultActivitySnapshot() ActivitySnapshot {
	return ActivitySnapshot{
		Languages: []LanguageCount{
			{Name: "JavaScript", Count: 0},
			{Name: "Python", Count: 0},
			{Name: "Go", Count: 0},
		},
		TopRepo: TopRepo{
			Name:     "Unavailable",
			Language: "Unknown",
		},
		CommitStats:    CommitStats{},
		FrequencyStats: FrequencyStats{Ratio: 0, Label: CasualFrequency},
	}
}

// DefaultViewSnapshot returns the built-in view-count fallback.
func DefaultViewSnapshot() ViewSnapshot {
	return ViewSnapshot{Count: 0}
}

// DefaultJudgeSnapshot returns the built-in judge-stats fallback.
func DefaultJudgeSnapshot() JudgeSnapshot {
	return JudgeSnapshot{}
}
