package cmd

import (
	"github.com/spf13/cobra"
	"github.com/vcsinsight/hotspot/internal/iocache"
	"github.com/vcsinsight/hotspot/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Hotspot MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents rank repository hotspots
through the get_hotspots tool. Root flags become the tool defaults; --repo
defaults to the current directory.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return sharedSetup(cmd, ".")
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		mcp.Version = version
		return mcp.StartMCPServer(rootCtx, cfg, iocache.Manager)
	},
}
