// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/folio/core"
	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported to MCP clients during initialization.
const Version = "1.0.0"

// NewMCPServer registers the tracker tools without starting the server.
// This is exposed for unit testing.
func NewMCPServer(trackers []core.Tracker) *server.MCPServer {
	s := server.NewMCPServer(
		"Folio Statistics Server",
		Version,
		server.WithLogging(),
	)

	h := &toolHandler{trackers: trackers}

	refresh := mcp.WithBoolean("refresh", mcp.Description("Expire the cached entry first so the tracker fetches live data."))

	// --- 1. Tool: get_activity ---
	s.AddTool(mcp.NewTool("get_activity",
		mcp.WithDescription("Get the repository activity summary: languages, top repo, commit estimate and activity band."),
		refresh,
	), h.trackerTool(schema.ActivityTracker))

	// --- 2. Tool: get_views ---
	s.AddTool(mcp.NewTool("get_views",
		mcp.WithDescription("Get the portfolio page-view count."),
		refresh,
	), h.trackerTool(schema.ViewsTracker))

	// --- 3. Tool: get_judge_stats ---
	s.AddTool(mcp.NewTool("get_judge_stats",
		mcp.WithDescription("Get the solved-problem counts from the coding-judge backend."),
		refresh,
	), h.trackerTool(schema.JudgeTracker))

	// --- 4. Tool: invalidate ---
	s.AddTool(mcp.NewTool("invalidate",
		mcp.WithDescription("Expire the cached entry of a tracker so its next access fetches live data."),
		mcp.WithString("tracker", mcp.Description("Tracker to invalidate."), mcp.Required(), mcp.Enum("activity", "views", "judge")),
	), h.handleInvalidate)

	// --- 5. Tool: list_trackers ---
	s.AddTool(mcp.NewTool("list_trackers",
		mcp.WithDescription("List the enabled trackers and their current reconciler state."),
	), h.handleListTrackers)

	return s
}

// StartMCPServer builds the trackers over the session store and serves them on stdio.
func StartMCPServer(_ context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	trackers := core.BuildTrackers(cfg, mgr.GetSessionStore(), core.Presenters{}, nil)
	defer core.CloseTrackers(trackers)

	s := NewMCPServer(trackers)
	return server.ServeStdio(s)
}
