package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/unowned-ai/dump/pkg/db"
	"github.com/unowned-ai/dump/pkg/logging"
	"github.com/unowned-ai/dump/pkg/notes"
)

func newTestStore(t *testing.T) *notes.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "dump.db")
	conn, err := pkgdb.OpenDBConnection(dbPath, false, "OFF")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, pkgdb.UpgradeDB(conn, dbPath, pkgdb.TargetSchemaVersion, nil))

	store, _, err := notes.Open(context.Background(), conn, notes.WithLogger(logging.Discard()))
	require.NoError(t, err)
	return store
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)

	switch c := result.Content[0].(type) {
	case mcp.TextContent:
		return c.Text, result.IsError
	case *mcp.TextContent:
		return c.Text, result.IsError
	default:
		t.Fatalf("unexpected content type %T", result.Content[0])
		return "", false
	}
}

func TestPing(t *testing.T) {
	text, isErr := call(t, pingHandler, nil)
	assert.False(t, isErr)
	assert.Equal(t, "pong_dump", text)
}

func TestEntryTools(t *testing.T) {
	store := newTestStore(t)

	text, isErr := call(t, createEntryHandler(store), map[string]any{
		"title": "Plan", "body": "ship it", "meta": "{Work/Release}",
	})
	require.False(t, isErr, text)
	var created notes.Entry
	require.NoError(t, json.Unmarshal([]byte(text), &created))
	assert.Equal(t, "{Work/Release}", created.Meta)

	text, isErr = call(t, getEntryHandler(store), map[string]any{"id": created.ID})
	require.False(t, isErr, text)
	var got notes.Entry
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, created, got)

	text, isErr = call(t, updateEntryHandler(store), map[string]any{
		"id": created.ID, "title": "Plan v2", "meta": "{Home}",
	})
	require.False(t, isErr, text)
	var updated notes.Entry
	require.NoError(t, json.Unmarshal([]byte(text), &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "", updated.Body)
	assert.Equal(t, "{Home}", updated.Meta)

	text, isErr = call(t, deleteEntryHandler(store), map[string]any{"id": created.ID})
	require.False(t, isErr, text)

	text, isErr = call(t, getEntryHandler(store), map[string]any{"id": created.ID})
	assert.True(t, isErr)
	assert.Contains(t, text, "not found")
}

func TestCreateEntry_RequiresTitle(t *testing.T) {
	store := newTestStore(t)
	text, isErr := call(t, createEntryHandler(store), map[string]any{"body": "x"})
	assert.True(t, isErr)
	assert.Contains(t, text, "'title' parameter is required")
}

func TestListEntriesTool(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, meta := range []string{"{Work}", "{Work/Team}", "{Home}"} {
		_, err := store.CreateEntry(ctx, "note "+meta, "", meta)
		require.NoError(t, err)
	}

	text, isErr := call(t, listEntriesHandler(store), map[string]any{
		"query": "{Work}", "offset": float64(0), "limit": float64(1),
	})
	require.False(t, isErr, text)
	var list notes.EntryList
	require.NoError(t, json.Unmarshal([]byte(text), &list))
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, "note {Work/Team}", list.Entries[0].Title)

	text, isErr = call(t, listEntriesHandler(store), map[string]any{"limit": float64(0)})
	require.False(t, isErr, text)
	var empty notes.EntryList
	require.NoError(t, json.Unmarshal([]byte(text), &empty))
	assert.Equal(t, 3, empty.Total)
	assert.Empty(t, empty.Entries)

	text, isErr = call(t, listEntriesHandler(store), map[string]any{})
	require.False(t, isErr, text)
	var all notes.EntryList
	require.NoError(t, json.Unmarshal([]byte(text), &all))
	assert.Len(t, all.Entries, 3)

	text, isErr = call(t, listEntriesHandler(store), map[string]any{"limit": float64(-1)})
	assert.True(t, isErr)
	assert.Contains(t, text, "'limit' must be a non-negative integer")
}

func TestStreamTools(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	entry, err := store.CreateEntry(ctx, "t", "", "{Work} {Home}")
	require.NoError(t, err)
	work, _, err := store.StreamByName(ctx, "Work", false)
	require.NoError(t, err)

	text, isErr := call(t, listStreamsHandler(store), nil)
	require.False(t, isErr, text)
	var streams []notes.Stream
	require.NoError(t, json.Unmarshal([]byte(text), &streams))
	require.Len(t, streams, 3)
	assert.Equal(t, notes.InboxName, streams[0].Name)

	text, isErr = call(t, updateStreamHandler(store), map[string]any{"id": work.ID, "name": "Job"})
	require.False(t, isErr, text)
	got, err := store.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "{Job} {Home}", got.Meta)

	text, isErr = call(t, deleteStreamHandler(store), map[string]any{"id": work.ID})
	require.False(t, isErr, text)
	got, err = store.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "{Home}", got.Meta)
}

func TestNewDumpMCPServer(t *testing.T) {
	store := newTestStore(t)
	srv := NewDumpMCPServer(store, logging.Discard())
	require.NotNil(t, srv.MCPRawServer())
}

func TestServe_AnswersPingOverStdio(t *testing.T) {
	store := newTestStore(t)
	srv := NewDumpMCPServer(store, logging.Discard())

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ping","arguments":{}}}` + "\n")
	var out bytes.Buffer
	err := srv.Serve(context.Background(), in, &out)
	if err != nil {
		assert.ErrorIs(t, err, io.EOF)
	}
	assert.Contains(t, out.String(), "pong_dump")
}
