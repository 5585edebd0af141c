package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neilberkman/ccshare/cmd/ccshare/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server for agent integration",
	Long: `Start an MCP (Model Context Protocol) server over stdio that lets agents
read, render and list shares in the local database.

Configure in your agent's MCP config:
  {
    "mcpServers": {
      "ccshare": {
        "command": "ccshare",
        "args": ["serve-mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol
	svc, _, closeFn, err := openService(cmd, zap.NewNop())
	if err != nil {
		return err
	}
	defer closeFn()

	if err := mcp.StartServer(svc, versionInfo); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
