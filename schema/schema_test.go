package schema

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoDecode(t *testing.T) {
	raw := `[
		{"name": "folio", "language": "Go", "stargazers_count": 9, "forks_count": 2, "updated_at": "2024-05-30T10:00:00Z"},
		{"name": "dotfiles", "language": null, "stargazers_count": 0, "forks_count": 0, "updated_at": "2023-01-01T00:00:00Z"}
	]`

	var repos []Repo
	require.NoError(t, json.Unmarshal([]byte(raw), &repos))
	require.Len(t, repos, 2)

	assert.Equal(t, "Go", repos[0].LanguageName())
	assert.Equal(t, 9, repos[0].StargazersCount)
	assert.Equal(t, time.Date(2024, 5, 30, 10, 0, 0, 0, time.UTC), repos[0].UpdatedAt.UTC())
	assert.Nil(t, repos[1].Language)
	assert.Equal(t, "", repos[1].LanguageName())
}

func TestViewsResponseDistinguishesMissingCount(t *testing.T) {
	var missing, sentinel ViewsResponse
	require.NoError(t, json.Unmarshal([]byte(`{}`), &missing))
	require.NoError(t, json.Unmarshal([]byte(`{"count": -1}`), &sentinel))

	assert.Nil(t, missing.Count)
	require.NotNil(t, sentinel.Count)
	assert.Equal(t, -1, *sentinel.Count)
}

func TestJudgeResponseDecode(t *testing.T) {
	var resp JudgeResponse
	require.NoError(t, json.Unmarshal([]byte(`{"data": {"totalSolved": 12, "easySolved": 6, "mediumSolved": 5, "hardSolved": 1}}`), &resp))
	require.NotNil(t, resp.Data)
	assert.Nil(t, resp.Data.SolvedProblem)
	require.NotNil(t, resp.Data.TotalSolved)
	assert.Equal(t, 12, *resp.Data.TotalSolved)

	var null JudgeResponse
	require.NoError(t, json.Unmarshal([]byte(`{"data": null}`), &null))
	assert.Nil(t, null.Data)
}

func TestDefaults(t *testing.T) {
	activity := DefaultActivitySnapshot()
	assert.Len(t, activity.Languages, 3)
	assert.Equal(t, CasualFrequency, activity.FrequencyStats.Label)
	assert.Equal(t, "Unavailable", activity.TopRepo.Name)

	assert.Equal(t, 0, DefaultViewSnapshot().Count)
	assert.Equal(t, JudgeSnapshot{}, DefaultJudgeSnapshot())
}

func TestRegionsFor(t *testing.T) {
	tests := []struct {
		tracker  TrackerName
		first    Region
		expected int
	}{
		{ActivityTracker, ActivityStatusRegion, 7},
		{ViewsTracker, ViewsStatusRegion, 2},
		{JudgeTracker, JudgeStatusRegion, 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.tracker), func(t *testing.T) {
			regions := RegionsFor(tt.tracker)
			require.Len(t, regions, tt.expected)
			assert.Equal(t, tt.first, regions[0])
			assert.Equal(t, StatusRegionFor(tt.tracker), regions[0])
		})
	}
}

func TestRegionsCoverAllRegions(t *testing.T) {
	seen := map[Region]bool{CountdownRegion: true}
	for _, name := range AllTrackers {
		for _, region := range RegionsFor(name) {
			assert.False(t, seen[region], "region %s owned twice", region)
			seen[region] = true
		}
	}
	assert.Len(t, seen, len(AllRegions))
}
