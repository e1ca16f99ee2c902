package core

import (
	"context"
	"net/http"
	"time"

	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/schema"
)

// ViewsKey is the cache key of the view count.
const ViewsKey = "views"

// viewsFailureSentinel is the count the backend reports when the counter is unreachable.
const viewsFailureSentinel = -1

// ViewsPolicy configures the view counter. Each fetch increments the remote counter.
func ViewsPolicy(cfg *contract.Config, client *http.Client) Policy[schema.ViewsResponse, schema.ViewSnapshot] {
	endpoint := cfg.APIBase + "/get_views"
	return Policy[schema.ViewsResponse, schema.ViewSnapshot]{
		Name:   schema.ViewsTracker,
		Key:    ViewsKey,
		Window: cfg.WindowFor(schema.ViewsTracker),
		Fetch: func(ctx context.Context) (schema.ViewsResponse, error) {
			var resp schema.ViewsResponse
			err := getJSON(ctx, client, endpoint, &resp)
			return resp, err
		},
		Parse: func(resp schema.ViewsResponse, _ time.Time) (schema.ViewSnapshot, error) {
			return parseViews(endpoint, resp)
		},
		Default: schema.DefaultViewSnapshot,
	}
}

// parseViews rejects the failure sentinel and any other negative or missing count.
func parseViews(endpoint string, resp schema.ViewsResponse) (schema.ViewSnapshot, error) {
	switch {
	case resp.Count == nil:
		return schema.ViewSnapshot{}, &APIError{URL: endpoint, Reason: "response has no count"}
	case *resp.Count == viewsFailureSentinel:
		return schema.ViewSnapshot{}, &APIError{URL: endpoint, Reason: "counter reported failure"}
	case *resp.Count < 0:
		return schema.ViewSnapshot{}, &APIError{URL: endpoint, Reason: "negative count"}
	}
	return schema.ViewSnapshot{Count: *resp.Count}, nil
}
