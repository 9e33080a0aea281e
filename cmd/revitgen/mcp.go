package main

import (
	"context"
	"fmt"

	"github.com/aretw0/revitgen/internal/cli"
	"github.com/aretw0/revitgen/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes generate_pyrevit_script and check_script as MCP tools, and the system
prompts as resources, so agents can call revitgen directly.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP on --port.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := cli.NewApp(sigCtx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		srv := mcp.NewServer(app.Engine, logger)

		switch transport {
		case "stdio":
			// Logs already go to stderr; stdout carries JSON-RPC only.
			logger.Info("Starting revitgen MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting revitgen MCP server (SSE)", "port", cfg.Server.Port)
			if err := srv.ServeSSE(sigCtx, cfg.Server.Port); err != nil {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 5000, "Port to listen on (only for SSE)")
}
