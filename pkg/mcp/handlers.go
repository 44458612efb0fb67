package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unowned-ai/dump/pkg/notes"
)

const metaDescription = "Free-text metadata. Reference streams as {Name}, e.g. {Work/ProjectX}; missing streams are created."

// RegisterPingTool registers the simple ping tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the Dump MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_dump"), nil
}

// RegisterCreateEntryTool registers the create_entry tool.
func RegisterCreateEntryTool(s *server.MCPServer, store *notes.Store) {
	tool := mcp.NewTool("create_entry",
		mcp.WithDescription("Creates a new entry and returns it with its generated id."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the entry.")),
		mcp.WithString("body", mcp.Description("Body text of the entry.")),
		mcp.WithString("meta", mcp.Description(metaDescription)),
	)
	s.AddTool(tool, createEntryHandler(store))
}

func createEntryHandler(store *notes.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, errResult := requiredString(request, "title")
		if errResult != nil {
			return errResult, nil
		}
		entry, err := store.CreateEntry(ctx, title, stringArg(request, "body"), stringArg(request, "meta"))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create entry: %v", err)), nil
		}
		return jsonResult(entry)
	}
}

// RegisterGetEntryTool registers the get_entry tool.
func RegisterGetEntryTool(s *server.MCPServer, store *notes.Store) {
	tool := mcp.NewTool("get_entry",
		mcp.WithDescription("Retrieves an entry by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the entry.")),
	)
	s.AddTool(tool, getEntryHandler(store))
}

func getEntryHandler(store *notes.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requiredString(request, "id")
		if errResult != nil {
			return errResult, nil
		}
		entry, err := store.GetEntry(ctx, id)
		if errors.Is(err, notes.ErrEntryNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Entry '%s' not found.", id)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error retrieving entry '%s': %v", id, err)), nil
		}
		return jsonResult(entry)
	}
}

// RegisterUpdateEntryTool registers the update_entry tool.
func RegisterUpdateEntryTool(s *server.MCPServer, store *notes.Store) {
	tool := mcp.NewTool("update_entry",
		mcp.WithDescription("Replaces the title, body and meta of an entry. An unknown id creates a new entry with a new id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the entry to update.")),
		mcp.WithString("title", mcp.Required(), mcp.Description("New title.")),
		mcp.WithString("body", mcp.Description("New body text.")),
		mcp.WithString("meta", mcp.Description(metaDescription)),
	)
	s.AddTool(tool, updateEntryHandler(store))
}

func updateEntryHandler(store *notes.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requiredString(request, "id")
		if errResult != nil {
			return errResult, nil
		}
		title, errResult := requiredString(request, "title")
		if errResult != nil {
			return errResult, nil
		}
		entry, err := store.UpdateEntry(ctx, id, title, stringArg(request, "body"), stringArg(request, "meta"))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update entry '%s': %v", id, err)), nil
		}
		return jsonResult(entry)
	}
}

// RegisterDeleteEntryTool registers the delete_entry tool.
func RegisterDeleteEntryTool(s *server.MCPServer, store *notes.Store) {
	tool := mcp.NewTool("delete_entry",
		mcp.WithDescription("Deletes an entry by id. Unknown ids are ignored."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the entry to delete.")),
	)
	s.AddTool(tool, deleteEntryHandler(store))
}

func deleteEntryHandler(store *notes.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requiredString(request, "id")
		if errResult != nil {
			return errResult, nil
		}
		if err := store.DeleteEntry(ctx, id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete entry '%s': %v", id, err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Entry '%s' deleted successfully.", id)), nil
	}
}

// RegisterListEntriesTool registers the list_entries tool.
func RegisterListEntriesTool(s *server.MCPServer, store *notes.Store) {
	tool := mcp.NewTool("list_entries",
		mcp.WithDescription("Lists entries newest first. The query may contain {Name} stream filters, which also match descendant streams, plus free text matched case-insensitively against title and body."),
		mcp.WithString("query", mcp.Description("Filter query, e.g. '{Work} standup'.")),
		mcp.WithNumber("offset", mcp.Description("Number of matching entries to skip.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries to return. Omit for all.")),
	)
	s.AddTool(tool, listEntriesHandler(store))
}

func listEntriesHandler(store *notes.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		offset, errResult := countArg(request, "offset")
		if errResult != nil {
			return errResult, nil
		}
		opts := notes.ListOptions{Query: stringArg(request, "query"), Offset: offset}
		if hasArg(request, "limit") {
			limit, errResult := countArg(request, "limit")
			if errResult != nil {
				return errResult, nil
			}
			opts.Limit = notes.LimitOf(limit)
		}
		list, err := store.ListEntries(ctx, opts)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list entries: %v", err)), nil
		}
		return jsonResult(list)
	}
}

// RegisterListStreamsTool registers the list_streams tool.
func RegisterListStreamsTool(s *server.MCPServer, store *notes.Store) {
	tool := mcp.NewTool("list_streams",
		mcp.WithDescription("Lists all streams, Inbox first and the rest by name."),
	)
	s.AddTool(tool, listStreamsHandler(store))
}

func listStreamsHandler(store *notes.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		streams, err := store.ListStreams(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list streams: %v", err)), nil
		}
		return jsonResult(streams)
	}
}

// RegisterUpdateStreamTool registers the update_stream tool.
func RegisterUpdateStreamTool(s *server.MCPServer, store *notes.Store) {
	tool := mcp.NewTool("update_stream",
		mcp.WithDescription("Renames a stream. Entries tagged with it show the new name immediately."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the stream.")),
		mcp.WithString("name", mcp.Required(), mcp.Description("New name, '/' separates hierarchy levels.")),
	)
	s.AddTool(tool, updateStreamHandler(store))
}

func updateStreamHandler(store *notes.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requiredString(request, "id")
		if errResult != nil {
			return errResult, nil
		}
		name, errResult := requiredString(request, "name")
		if errResult != nil {
			return errResult, nil
		}
		stream, err := store.UpdateStream(ctx, id, name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update stream '%s': %v", id, err)), nil
		}
		return jsonResult(stream)
	}
}

// RegisterDeleteStreamTool registers the delete_stream tool.
func RegisterDeleteStreamTool(s *server.MCPServer, store *notes.Store) {
	tool := mcp.NewTool("delete_stream",
		mcp.WithDescription("Deletes a stream and removes its tag from every entry that carries it directly."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the stream to delete.")),
	)
	s.AddTool(tool, deleteStreamHandler(store))
}

func deleteStreamHandler(store *notes.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, errResult := requiredString(request, "id")
		if errResult != nil {
			return errResult, nil
		}
		if err := store.DeleteStream(ctx, id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete stream '%s': %v", id, err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Stream '%s' deleted successfully.", id)), nil
	}
}
