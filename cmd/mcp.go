package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/stockcast/internal/mcp"
)

// mcpCmd represents the mcp command.
// Logs go to stderr so stdio stays reserved for the protocol.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the Stockcast MCP server",
	Long:    `Launch an MCP server over stdio that lets AI agents request forecasts via standard tools.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
