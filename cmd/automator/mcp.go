package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/automator/internal/cli"
	"github.com/aretw0/automator/pkg/adapters/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes a workflow builder session to AI agents as MCP tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		sessionID, _ := cmd.Flags().GetString("session")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		app, err := cli.NewApp(ctx, cfg, logger, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		srv := mcp.NewServer(app.Sessions, mcp.WithSessionID(sessionID), mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Logs go to stderr, keeping stdout clean for JSON-RPC.
			logger.Info("starting MCP server (stdio)", zap.String("session_id", sessionID))
			return srv.ServeStdio()
		case "sse":
			logger.Info("starting MCP server (SSE)", zap.Int("port", port))
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped")
			return nil
		default:
			return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("session", mcp.DefaultSessionID, "Session edited by the tools")
}
