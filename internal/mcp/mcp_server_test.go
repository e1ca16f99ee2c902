package mcp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/huangsam/folio/core"
	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/internal/iocache"
	mcp_internal "github.com/huangsam/folio/internal/mcp"
	"github.com/huangsam/folio/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrackers(t *testing.T, viewHits *atomic.Int32) []core.Tracker {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/get_views":
			n := viewHits.Add(1)
			_, _ = w.Write([]byte(`{"count": ` + strconv.Itoa(int(n)) + `}`))
		case "/get_leetcode_stats":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"data": null}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := &contract.Config{
		APIBase:  srv.URL,
		Trackers: []schema.TrackerName{schema.ViewsTracker, schema.JudgeTracker},
	}
	trackers := core.BuildTrackers(cfg, iocache.NewMemoryStore("mcp-test"), core.Presenters{}, nil)
	t.Cleanup(func() { core.CloseTrackers(trackers) })
	return trackers
}

func callTool(t *testing.T, trackers []core.Tracker, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(trackers)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotEmpty(t, res.Content)
	return res
}

func decodeReport(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &report))
	return report
}

func TestMCPServerTrackerTools(t *testing.T) {
	var hits atomic.Int32
	trackers := newTrackers(t, &hits)

	t.Run("get_views fetches then serves from cache", func(t *testing.T) {
		res := callTool(t, trackers, "get_views", nil)
		assert.False(t, res.IsError)
		report := decodeReport(t, res)
		assert.Equal(t, "LIVE", report["state"])
		assert.Equal(t, float64(1), report["snapshot"].(map[string]any)["count"])

		res = callTool(t, trackers, "get_views", nil)
		report = decodeReport(t, res)
		assert.Equal(t, "CACHED_FRESH", report["state"])
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("get_views refresh forces a fetch", func(t *testing.T) {
		res := callTool(t, trackers, "get_views", map[string]any{"refresh": true})
		report := decodeReport(t, res)
		assert.Equal(t, "LIVE", report["state"])
		assert.Equal(t, float64(2), report["snapshot"].(map[string]any)["count"])
	})

	t.Run("get_judge_stats falls back offline", func(t *testing.T) {
		res := callTool(t, trackers, "get_judge_stats", nil)
		assert.False(t, res.IsError, "Fetch failures are reported, not raised")
		report := decodeReport(t, res)
		assert.Equal(t, "OFFLINE", report["state"])
		assert.Equal(t, true, report["defaulted"])
		assert.Contains(t, report["error"], "502")
	})

	t.Run("get_activity not enabled", func(t *testing.T) {
		res := callTool(t, trackers, "get_activity", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "tracker activity is not enabled")
	})
}

func TestMCPServerInvalidate(t *testing.T) {
	var hits atomic.Int32
	trackers := newTrackers(t, &hits)

	callTool(t, trackers, "get_views", nil)
	res := callTool(t, trackers, "invalidate", map[string]any{"tracker": "views"})
	assert.False(t, res.IsError)
	assert.Equal(t, "invalidated views", res.Content[0].(mcp.TextContent).Text)

	report := decodeReport(t, callTool(t, trackers, "get_views", nil))
	assert.Equal(t, "LIVE", report["state"])
	assert.Equal(t, int32(2), hits.Load())

	t.Run("missing tracker", func(t *testing.T) {
		res := callTool(t, trackers, "invalidate", map[string]any{})
		assert.True(t, res.IsError)
	})
}

func TestMCPServerListTrackers(t *testing.T) {
	var hits atomic.Int32
	trackers := newTrackers(t, &hits)

	res := callTool(t, trackers, "list_trackers", nil)
	var statuses []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &statuses))
	require.Len(t, statuses, 2)
	assert.Equal(t, "views", statuses[0]["tracker"])
	assert.Equal(t, "EMPTY", statuses[0]["state"])
}
