package core

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/internal/iocache"
	"github.com/huangsam/folio/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(serverURL string) *contract.Config {
	return &contract.Config{
		Username: "octocat",
		RepoHost: serverURL,
		APIBase:  serverURL,
		Trackers: schema.AllTrackers,
	}
}

func fullPage(page int) []schema.Repo {
	repos := make([]schema.Repo, contract.RepoPageSize)
	for i := range repos {
		repos[i] = schema.Repo{Name: fmt.Sprintf("repo-%d-%d", page, i), StargazersCount: 1}
	}
	return repos
}

func TestFetchReposPagination(t *testing.T) {
	t.Run("stops after the page cap", func(t *testing.T) {
		var requests atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			assert.Equal(t, "/users/octocat/repos", r.URL.Path)
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			assert.Equal(t, "updated", r.URL.Query().Get("sort"))
			assert.NotEmpty(t, r.Header.Get("User-Agent"))
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			_ = json.NewEncoder(w).Encode(fullPage(page))
		}))
		defer server.Close()

		repos, err := fetchRepos(context.Background(), server.Client(), server.URL, "octocat")
		require.NoError(t, err)
		assert.Len(t, repos, contract.RepoPageSize*contract.RepoMaxPages)
		assert.Equal(t, int32(contract.RepoMaxPages), requests.Load())
	})

	t.Run("stops early on an empty page", func(t *testing.T) {
		var requests atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			if page >= 3 {
				_, _ = w.Write([]byte("[]"))
				return
			}
			_ = json.NewEncoder(w).Encode(fullPage(page))
		}))
		defer server.Close()

		repos, err := fetchRepos(context.Background(), server.Client(), server.URL, "octocat")
		require.NoError(t, err)
		assert.Len(t, repos, 2*contract.RepoPageSize)
		assert.Equal(t, int32(3), requests.Load())
	})

	t.Run("any failed page fails the fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "2" {
				http.Error(w, "rate limited", http.StatusForbidden)
				return
			}
			_ = json.NewEncoder(w).Encode(fullPage(1))
		}))
		defer server.Close()

		_, err := fetchRepos(context.Background(), server.Client(), server.URL, "octocat")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	})
}

func TestActivityTracker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			_, _ = w.Write([]byte("[]"))
			return
		}
		_, _ = w.Write([]byte(`[
			{"name":"a","language":"Go","stargazers_count":3,"forks_count":1,"updated_at":"2024-05-30T00:00:00Z"},
			{"name":"b","language":"Go","stargazers_count":5,"forks_count":0,"updated_at":"2020-01-01T00:00:00Z"}
		]`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	store := iocache.NewMemoryStore("s")
	ctrl := NewController(ActivityPolicy(cfg, server.Client()), store, nil).WithClock(func() time.Time { return baseTime })

	res := ctrl.Resolve(context.Background())
	require.Equal(t, schema.LiveState, res.State)
	assert.Equal(t, "b", res.Snapshot.TopRepo.Name)
	assert.Equal(t, 4, res.Snapshot.CommitStats.Estimate)
	assert.Equal(t, 1, res.Snapshot.CommitStats.ActiveRepos)
	assert.Equal(t, schema.MediumFrequency, res.Snapshot.FrequencyStats.Label)

	_, _, _, err := store.Get("github-activity-octocat")
	assert.NoError(t, err)
}

func TestViewsTracker(t *testing.T) {
	var count atomic.Int32
	count.Store(10)
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_views", r.URL.Path)
		if fail.Load() {
			_, _ = w.Write([]byte(`{"count":-1}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"count":%d}`, count.Add(1))
	}))
	defer server.Close()

	clock := &fakeClock{now: baseTime}
	store := iocache.NewMemoryStore("s")
	ctrl := NewController(ViewsPolicy(testConfig(server.URL), server.Client()), store, nil).WithClock(clock.Now)

	res := ctrl.Resolve(context.Background())
	require.Equal(t, schema.LiveState, res.State)
	assert.Equal(t, 11, res.Snapshot.Count)

	fail.Store(true)
	clock.Advance(contract.ViewsWindow)
	res = ctrl.Resolve(context.Background())
	assert.Equal(t, schema.OfflineState, res.State)
	assert.Equal(t, 11, res.Snapshot.Count, "sentinel never replaces the prior count")

	value, _, ts, err := store.Get(ViewsKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":11}`, string(value))
	assert.Equal(t, baseTime.UnixMilli(), ts)
}

func TestJudgeTracker(t *testing.T) {
	var body atomic.Value
	body.Store(`{"data":{"solvedProblem":120,"easySolved":60,"mediumSolved":50,"hardSolved":10}}`)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_leetcode_stats", r.URL.Path)
		_, _ = w.Write([]byte(body.Load().(string)))
	}))
	defer server.Close()

	clock := &fakeClock{now: baseTime}
	store := iocache.NewMemoryStore("s")
	ctrl := NewController(JudgePolicy(testConfig(server.URL), server.Client()), store, nil).WithClock(clock.Now)

	res := ctrl.Resolve(context.Background())
	require.Equal(t, schema.LiveState, res.State)
	assert.Equal(t, schema.JudgeSnapshot{Solved: 120, Easy: 60, Medium: 50, Hard: 10}, res.Snapshot)

	for _, missing := range []string{
		`{"data":{"easySolved":1,"mediumSolved":1,"hardSolved":1}}`,
		`{"data":{"solvedProblem":null,"easySolved":1}}`,
		`{"data":null}`,
		`{}`,
	} {
		body.Store(missing)
		clock.Advance(contract.JudgeWindow)
		res = ctrl.Resolve(context.Background())
		assert.Equal(t, schema.OfflineState, res.State, missing)
		assert.Equal(t, 120, res.Snapshot.Solved, missing)

		_, _, ts, err := store.Get(JudgeKey)
		require.NoError(t, err)
		assert.Equal(t, baseTime.UnixMilli(), ts, "guarded response leaves the timestamp untouched")
	}
}

func TestParseJudgeTotalSolved(t *testing.T) {
	total := 33
	snapshot, err := parseJudge("x", schema.JudgeResponse{Data: &schema.JudgeStats{TotalSolved: &total, HardSolved: 3}})
	require.NoError(t, err)
	assert.Equal(t, 33, snapshot.Solved)
	assert.Equal(t, 3, snapshot.Hard)
}

func TestGetJSONErrors(t *testing.T) {
	t.Run("network error", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		var out map[string]any
		err := getJSON(context.Background(), http.DefaultClient, url, &out)
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, url, netErr.URL)
	})

	t.Run("malformed payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}))
		defer server.Close()

		var out map[string]any
		err := getJSON(context.Background(), server.Client(), server.URL, &out)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "malformed payload", apiErr.Reason)
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{}"))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var out map[string]any
		err := getJSON(ctx, server.Client(), server.URL, &out)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBuildTrackers(t *testing.T) {
	cfg := testConfig("http://localhost:1")
	cfg.Trackers = []schema.TrackerName{schema.JudgeTracker, schema.ViewsTracker}

	trackers := BuildTrackers(cfg, iocache.NewMemoryStore("s"), Presenters{}, nil)
	require.Len(t, trackers, 2)
	assert.Equal(t, schema.JudgeTracker, trackers[0].Name())
	assert.Equal(t, schema.ViewsTracker, trackers[1].Name())
	assert.NotNil(t, FindTracker(trackers, schema.ViewsTracker))
	assert.Nil(t, FindTracker(trackers, schema.ActivityTracker))
	assert.Equal(t, schema.EmptyState, trackers[0].State())
	CloseTrackers(trackers)
}
