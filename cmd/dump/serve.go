package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/unowned-ai/dump/pkg/httpapi"
	"github.com/unowned-ai/dump/pkg/mcp"
)

var (
	addrFlag     string
	serveMCPFlag bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dump HTTP API",
	Long: `Start the HTTP API on the configured address (default 127.0.0.1:13371).

With --mcp the MCP tools are served on STDIN/STDOUT as well, sharing the same store.

Example:
  dump serve
  dump serve --addr 127.0.0.1:8080 --mcp`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = addrFlag
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openSession(ctx, lockHost)
		if err != nil {
			return err
		}
		defer s.Close()
		logger.Info("consistency pass finished",
			"entries", s.report.Entries,
			"streams", s.report.Streams,
			"dropped_entries", s.report.DroppedEntries,
			"dropped_streams", s.report.DroppedStreams)

		api := httpapi.New(s.store,
			httpapi.WithLogger(logger),
			httpapi.WithMaxBodyBytes(cfg.Server.MaxBodyBytes))

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return api.ListenAndServe(gctx, cfg.Server.Addr)
		})
		if serveMCPFlag {
			srv := mcp.NewDumpMCPServer(s.store, logger)
			g.Go(func() error {
				err := srv.Serve(gctx, os.Stdin, os.Stdout)
				if err != nil && !errors.Is(err, context.Canceled) {
					return fmt.Errorf("mcp server: %w", err)
				}
				// Closing stdin ends the whole host.
				stop()
				return nil
			})
		}

		logger.Info("dump server started", "addr", cfg.Server.Addr, "db", s.dbPath, "mcp", serveMCPFlag)
		return g.Wait()
	},
}

func initServeCmd() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address for the HTTP API (overrides config and DUMP_ADDR)")
	serveCmd.Flags().BoolVar(&serveMCPFlag, "mcp", false, "Also serve MCP tools over STDIN/STDOUT")
}
