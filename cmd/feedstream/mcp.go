package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/feedstream/internal/cli"
	"github.com/aretw0/feedstream/internal/mainloop"
	feedhttp "github.com/aretw0/feedstream/pkg/adapters/http"
	feedmcp "github.com/aretw0/feedstream/pkg/adapters/mcp"
	"github.com/aretw0/feedstream/pkg/observability"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp <fixture>",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts a session over the fixture and exposes it as an MCP server, so agents
can list leaves, load more, dismiss content and answer snackbars as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		if transport != "stdio" && transport != "sse" {
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		loop := mainloop.New(mainloop.WithLogger(logger))
		board := feedhttp.NewSnackbarBoard(loop, nil)
		session, err := cli.Open(ctx, cli.Options{
			Config:      cfg,
			Fixture:     args[0],
			Diagnostics: observability.NewLogger(logger),
			Snackbar:    board,
			Logger:      logger,
			Loop:        loop,
		})
		if err != nil {
			return err
		}
		defer session.Close(context.Background())

		srv := feedmcp.NewServer(session.Stream,
			feedmcp.WithSnackbars(board),
			feedmcp.WithGraph(session.Graph),
			feedmcp.WithLogger(logger),
		)

		switch transport {
		case "sse":
			logger.Info("starting feedstream MCP server (SSE)", "port", port, "session_id", session.Stream.SessionID())
			if err := srv.ServeSSE(ctx, port); err != nil {
				return fmt.Errorf("MCP server failed: %w", err)
			}
			logger.Info("MCP server stopped gracefully")
		default:
			// Logs go to stderr so they never corrupt JSON-RPC on stdout.
			logger.Info("starting feedstream MCP server (stdio)", "session_id", session.Stream.SessionID())
			if err := srv.ServeStdio(); err != nil {
				return fmt.Errorf("MCP server failed: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().Duration("latency", 0, "Simulated fetch latency for tokens")
}
