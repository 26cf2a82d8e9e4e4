// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/vcsinsight/hotspot/internal/contract"
	"github.com/vcsinsight/hotspot/schema"
)

// Version is reported to MCP clients during initialization.
var Version = "1.0.0"

// NewMCPServer initializes and configures the Hotspot MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Hotspot Analysis Server",
		Version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		now:     time.Now,
	}

	s.AddTool(mcp.NewTool("get_hotspots",
		mcp.WithDescription("Rank the files of a git repository by how often and by how many people they were changed recently."),
		mcp.WithString("repo_path", mcp.Description("Path to the repository root (defaults to the server's --repo).")),
		mcp.WithNumber("time_window", mcp.Description("Number of days of history to analyze. Defaults to 365.")),
		mcp.WithNumber("top", mcp.Description("Number of files to return. Defaults to 10.")),
		mcp.WithString("include", mcp.Description("Comma-separated globs a path must match, added to the default source includes.")),
		mcp.WithString("exclude", mcp.Description("Comma-separated globs that remove a path. Excludes win over includes.")),
		mcp.WithBoolean("include_merges", mcp.Description("Count merge commits. Defaults to false.")),
		mcp.WithString("mode", mcp.Description("Scoring mode. Defaults to 'product'."), mcp.Enum(scoringModes()...)),
	), h.handleGetHotspots)

	return s
}

func scoringModes() []string {
	out := make([]string, len(schema.AllScoringModes))
	for i, m := range schema.AllScoringModes {
		out[i] = string(m)
	}
	return out
}

// StartMCPServer starts the Hotspot MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
