package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/terramesa/uplinkmap/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing node search, nearest-node lookup and connector-line inspection tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ws, err := openWorkingSet(context.Background(), cfg)
		if err != nil {
			return err
		}
		defer ws.Close()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "uplinkmap MCP server started on stdio (source=%s, nodes=%d)\n",
			ws.source(cfg), len(ws.nodes))

		srv := mcpserver.NewServer(ws.index, ws.state, ws.searcher, ws.locator)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
