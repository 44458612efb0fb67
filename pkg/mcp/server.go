package mcp

import (
	"context"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	dump "github.com/unowned-ai/dump/pkg"
	"github.com/unowned-ai/dump/pkg/notes"
)

type DumpMCPServer struct {
	mcpServer *server.MCPServer
	store     *notes.Store
	logger    *slog.Logger
}

// NewDumpMCPServer builds an MCP server with every dump tool registered
// against store.
func NewDumpMCPServer(store *notes.Store, logger *slog.Logger) *DumpMCPServer {
	if logger == nil {
		logger = slog.Default()
	}

	s := server.NewMCPServer(
		"Dump MCP Server",
		dump.Version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
		server.WithRecovery(),
	)
	RegisterTools(s, store)

	return &DumpMCPServer{mcpServer: s, store: store, logger: logger}
}

// RegisterTools adds the ping, entry and stream tools to s.
func RegisterTools(s *server.MCPServer, store *notes.Store) {
	RegisterPingTool(s)
	RegisterCreateEntryTool(s, store)
	RegisterGetEntryTool(s, store)
	RegisterUpdateEntryTool(s, store)
	RegisterDeleteEntryTool(s, store)
	RegisterListEntriesTool(s, store)
	RegisterListStreamsTool(s, store)
	RegisterUpdateStreamTool(s, store)
	RegisterDeleteStreamTool(s, store)
}

// Start runs the stdio event loop until stdin closes or a termination
// signal arrives.
func (s *DumpMCPServer) Start() error {
	s.logger.Info("mcp server starting on stdio")
	return server.ServeStdio(s.mcpServer)
}

// Serve runs the JSON-RPC loop over in and out until ctx is cancelled or in
// is exhausted.
func (s *DumpMCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("mcp server listening")
	return stdio.Listen(ctx, in, out)
}

// MCPRawServer exposes the raw mcp-go server.
func (s *DumpMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}
