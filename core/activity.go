package core

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/huangsam/folio/core/agg"
	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/schema"
)

// ActivityKey returns the cache key of the activity snapshot for username.
func ActivityKey(username string) string {
	return "github-activity-" + username
}

// ActivityPolicy configures the activity tracker. Its scheduled cycles expire the
// entry first, so every cycle refetches even when the timer fires slightly early.
func ActivityPolicy(cfg *contract.Config, client *http.Client) Policy[[]schema.Repo, schema.ActivitySnapshot] {
	return Policy[[]schema.Repo, schema.ActivitySnapshot]{
		Name:   schema.ActivityTracker,
		Key:    ActivityKey(cfg.Username),
		Window: cfg.WindowFor(schema.ActivityTracker),
		Fetch: func(ctx context.Context) ([]schema.Repo, error) {
			return fetchRepos(ctx, client, cfg.RepoHost, cfg.Username)
		},
		Parse: func(repos []schema.Repo, now time.Time) (schema.ActivitySnapshot, error) {
			return agg.BuildActivitySnapshot(repos, now), nil
		},
		Default:             schema.DefaultActivitySnapshot,
		InvalidateOnRefresh: true,
	}
}

// fetchRepos pages through the user's repositories, newest updates first.
// It reads at most contract.RepoMaxPages pages and stops early on an empty page.
func fetchRepos(ctx context.Context, client *http.Client, host, username string) ([]schema.Repo, error) {
	var repos []schema.Repo
	for page := 1; page <= contract.RepoMaxPages; page++ {
		pageURL := fmt.Sprintf("%s/users/%s/repos?per_page=%d&page=%d&sort=updated",
			host, url.PathEscape(username), contract.RepoPageSize, page)

		var batch []schema.Repo
		if err := getJSON(ctx, client, pageURL, &batch); err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		repos = append(repos, batch...)
	}
	return repos, nil
}
