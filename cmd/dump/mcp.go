package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/dump/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the dump MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes dump entries and
streams as MCP tools via STDIO.

The --db flag is optional. If not provided, a system-specific default location will be used:
- Windows: %USERPROFILE%\AppData\Roaming\dump\dump.db
- macOS: ~/Library/Application Support/dump/dump.db
- Linux: $XDG_DATA_HOME/dump/dump.db or ~/.local/share/dump/dump.db

Example:
  dump mcp
  dump mcp --db dump.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openSession(ctx, lockHost)
		if err != nil {
			return err
		}
		defer s.Close()

		srv := mcp.NewDumpMCPServer(s.store, logger)

		// Logs go to stderr so they don't contaminate the JSON-RPC stream on stdout.
		logger.Info("dump MCP server started",
			"db", s.dbPath,
			"wal", cfg.DB.WAL,
			"sync", cfg.DB.Sync,
			"tools", "ping, create_entry, get_entry, update_entry, delete_entry, list_entries, list_streams, update_stream, delete_stream")

		err = srv.Serve(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}
