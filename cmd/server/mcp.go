package main

import (
	"github.com/canfieldjuan/graphgate/internal/gateway"
	"github.com/canfieldjuan/graphgate/internal/graphiti"
	"github.com/canfieldjuan/graphgate/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the gateway tools over MCP stdio",
	Long: `Serve add_episode, search, delete_episode and get_entity_edges as MCP tools
over stdin/stdout, for clients that spawn the gateway as a subprocess.
The HTTP server exposes the same tools over SSE at /mcp/sse.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		svc := gateway.NewService(gateway.FromFactory(graphiti.NewFactory(cfg, log)), nil, log)
		return mcp.NewServer(svc, log).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
