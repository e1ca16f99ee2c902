package mcp

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/huangsam/folio/core"
	"github.com/huangsam/folio/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// toolHandler holds the trackers the MCP tools resolve against.
type toolHandler struct {
	trackers []core.Tracker
}

// trackerStatus is one entry of the list_trackers result.
type trackerStatus struct {
	Tracker schema.TrackerName `json:"tracker"`
	State   schema.State       `json:"state"`
}

func (h *toolHandler) lookup(name schema.TrackerName) (core.Tracker, *mcp.CallToolResult) {
	t := core.FindTracker(h.trackers, name)
	if t == nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("tracker %s is not enabled", name))
	}
	return t, nil
}

// trackerTool returns a handler that resolves one tracker and returns its report.
// Fetch failures are part of the report, so they never surface as tool errors.
func (h *toolHandler) trackerTool(name schema.TrackerName) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t, errResult := h.lookup(name)
		if errResult != nil {
			return errResult, nil
		}

		if request.GetBool("refresh", false) {
			if err := t.Invalidate(); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalidate failed: %v", err)), nil
			}
		}

		report := t.Report(ctx)
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode report: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

func (h *toolHandler) handleInvalidate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("tracker")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	t, errResult := h.lookup(schema.TrackerName(name))
	if errResult != nil {
		return errResult, nil
	}
	if err := t.Invalidate(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalidate failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("invalidated %s", name)), nil
}

func (h *toolHandler) handleListTrackers(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	statuses := make([]trackerStatus, 0, len(h.trackers))
	for _, t := range h.trackers {
		statuses = append(statuses, trackerStatus{Tracker: t.Name(), State: t.State()})
	}
	jsonData, _ := json.MarshalIndent(statuses, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
