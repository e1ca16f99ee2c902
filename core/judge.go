package core

import (
	"context"
	"net/http"
	"time"

	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/schema"
)

// JudgeKey is the cache key of the judge stats.
const JudgeKey = "leetcode_data"

// JudgePolicy configures the judge stats tracker.
func JudgePolicy(cfg *contract.Config, client *http.Client) Policy[schema.JudgeResponse, schema.JudgeSnapshot] {
	endpoint := cfg.APIBase + "/get_leetcode_stats"
	return Policy[schema.JudgeResponse, schema.JudgeSnapshot]{
		Name:   schema.JudgeTracker,
		Key:    JudgeKey,
		Window: cfg.WindowFor(schema.JudgeTracker),
		Fetch: func(ctx context.Context) (schema.JudgeResponse, error) {
			var resp schema.JudgeResponse
			err := getJSON(ctx, client, endpoint, &resp)
			return resp, err
		},
		Parse: func(resp schema.JudgeResponse, _ time.Time) (schema.JudgeSnapshot, error) {
			return parseJudge(endpoint, resp)
		},
		Default: schema.DefaultJudgeSnapshot,
	}
}

// parseJudge requires a solved count. solvedProblem wins over totalSolved when both are present.
func parseJudge(endpoint string, resp schema.JudgeResponse) (schema.JudgeSnapshot, error) {
	if resp.Data == nil {
		return schema.JudgeSnapshot{}, &APIError{URL: endpoint, Reason: "response has no data"}
	}

	solved := resp.Data.SolvedProblem
	if solved == nil {
		solved = resp.Data.TotalSolved
	}
	if solved == nil {
		return schema.JudgeSnapshot{}, &APIError{URL: endpoint, Reason: "response has no solved count"}
	}

	return schema.JudgeSnapshot{
		Solved: *solved,
		Easy:   resp.Data.EasySolved,
		Medium: resp.Data.MediumSolved,
		Hard:   resp.Data.HardSolved,
	}, nil
}
