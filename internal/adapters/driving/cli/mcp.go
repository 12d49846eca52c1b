package cli

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geovis/internal/adapters/driving/mcp"
	"github.com/custodia-labs/geovis/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes the tracked queries, latest rankings, trends, scores and
the brand comparison as tools and resources. Every answer reports whether it
is substitute data.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  geovis mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  geovis mcp serve --port 8090

  # HTTP on every interface
  geovis mcp serve --port 8090 --host 0.0.0.0

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "geovis": {
        "command": "/path/to/geovis",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

var (
	mcpPort int
	mcpHost string
)

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "HTTP bind host, ignored in stdio mode")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", mcpPort)
	}

	server, err := mcp.NewServer(&mcp.Ports{Facade: facade})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopScheduler := startScheduler(ctx)
	defer stopScheduler()

	if mcpPort == 0 {
		// stdout carries JSON-RPC, so nothing else may be printed.
		logger.Debug("mcp: serving over stdio")
		return server.Run(ctx)
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.PrintErrf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(ctx, addr)
}
