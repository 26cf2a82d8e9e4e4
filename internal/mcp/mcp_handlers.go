package mcp

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/vcsinsight/hotspot/core"
	"github.com/vcsinsight/hotspot/internal/contract"
	"github.com/vcsinsight/hotspot/internal/outwriter"
	"github.com/vcsinsight/hotspot/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
	now     func() time.Time
}

func (h *toolHandler) handleGetHotspots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.Now = h.now()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = ""

	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	cfg.TimeWindowDays = request.GetInt("time_window", cfg.TimeWindowDays)
	cfg.TopN = request.GetInt("top", cfg.TopN)
	if inc := request.GetString("include", ""); inc != "" {
		cfg.IncludePatterns = splitPatterns(inc)
	}
	if exc := request.GetString("exclude", ""); exc != "" {
		cfg.ExcludePatterns = splitPatterns(exc)
	}
	cfg.IncludeMerges = request.GetBool("include_merges", cfg.IncludeMerges)
	if m := request.GetString("mode", ""); m != "" {
		cfg.Mode = schema.ScoringMode(m)
	}

	if err := contract.Revalidate(cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	entries, _, err := core.GetHotspotResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	var buf bytes.Buffer
	if err := outwriter.WriteHotspots(&buf, entries, cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// splitPatterns turns "a, b,,c" into [a b c].
func splitPatterns(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
