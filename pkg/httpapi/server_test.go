package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/unowned-ai/dump/pkg/db"
	"github.com/unowned-ai/dump/pkg/logging"
	"github.com/unowned-ai/dump/pkg/notes"
)

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, *notes.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "dump.db")
	conn, err := pkgdb.OpenDBConnection(dbPath, false, "OFF")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, pkgdb.UpgradeDB(conn, dbPath, pkgdb.TargetSchemaVersion, nil))

	store, _, err := notes.Open(context.Background(), conn, notes.WithLogger(logging.Discard()))
	require.NoError(t, err)

	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	srv := httptest.NewServer(New(store, opts...).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url, body string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestEntriesLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	var created notes.Entry
	resp := doJSON(t, http.MethodPost, srv.URL+"/entries",
		`{"title":"Standup","body":"talk","meta":"{Work}"}`, &created)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, created.ID)
	assert.NotZero(t, created.Created)
	assert.Equal(t, "{Work}", created.Meta)

	var got notes.Entry
	resp = doJSON(t, http.MethodGet, srv.URL+"/entries/"+created.ID, "", &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created, got)

	var updated notes.Entry
	resp = doJSON(t, http.MethodPut, srv.URL+"/entries/"+created.ID,
		`{"id":"ignored","title":"Retro","body":"","meta":"{Work/Team}"}`, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.Created, updated.Created)
	assert.Equal(t, "Retro", updated.Title)
	assert.Equal(t, "{Work/Team}", updated.Meta)

	var list notes.EntryList
	resp = doJSON(t, http.MethodGet, srv.URL+"/entries?query=%7BWork%7D", "", &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, list.Total)

	var deleted string
	resp = doJSON(t, http.MethodDelete, srv.URL+"/entries/"+created.ID, "", &deleted)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, deleted)

	var errResp ErrorResponse
	resp = doJSON(t, http.MethodGet, srv.URL+"/entries/"+created.ID, "", &errResp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, notes.ErrEntryNotFound.Error(), errResp.Error)
}

func TestListEntries_Pagination(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		_, err := store.CreateEntry(ctx, title, "", "")
		require.NoError(t, err)
	}

	var list notes.EntryList
	resp := doJSON(t, http.MethodGet, srv.URL+"/entries?offset=1&limit=1", "", &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, list.Total)
	assert.Equal(t, 1, list.Offset)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, "b", list.Entries[0].Title)

	resp = doJSON(t, http.MethodGet, srv.URL+"/entries", "", &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list.Entries, 3)

	var empty notes.EntryList
	resp = doJSON(t, http.MethodGet, srv.URL+"/entries?offset=0&limit=0", "", &empty)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, empty.Total)
	assert.NotNil(t, empty.Entries)
	assert.Empty(t, empty.Entries)

	var errResp ErrorResponse
	resp = doJSON(t, http.MethodGet, srv.URL+"/entries?limit=-1", "", &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errResp.Error, "limit")
}

func TestStreamsEndpoints(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()
	entry, err := store.CreateEntry(ctx, "t", "", "{Work} {Home}")
	require.NoError(t, err)

	var list StreamList
	resp := doJSON(t, http.MethodGet, srv.URL+"/streams", "", &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 3, list.Total)
	assert.Equal(t, notes.InboxID, list.Streams[0].ID)
	assert.Equal(t, "Home", list.Streams[1].Name)
	work := list.Streams[2]

	var renamed notes.Stream
	resp = doJSON(t, http.MethodPut, srv.URL+"/streams/"+work.ID, `{"name":"Job"}`, &renamed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Job", renamed.Name)

	var deleted string
	resp = doJSON(t, http.MethodDelete, srv.URL+"/streams/"+work.ID, "", &deleted)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, work.ID, deleted)

	got, err := store.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "{Home}", got.Meta)
}

func TestBodyErrors(t *testing.T) {
	srv, _ := newTestServer(t, WithMaxBodyBytes(64))

	var errResp ErrorResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/entries", `{"title":`, &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errResp.Error, "invalid request body")

	big := `{"title":"` + strings.Repeat("x", 128) + `"}`
	resp = doJSON(t, http.MethodPost, srv.URL+"/entries", big, &errResp)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Contains(t, errResp.Error, "maximum size of 64 bytes")
}

func TestCORSAndRequestID(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/entries", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "DELETE")
	assert.Equal(t, "content-type", resp.Header.Get("Access-Control-Allow-Headers"))

	resp = doJSON(t, http.MethodGet, srv.URL+"/streams", "", nil)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestServe_StopsOnCancel(t *testing.T) {
	_, store := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- New(store, WithLogger(logging.Discard())).ListenAndServe(ctx, "127.0.0.1:0")
	}()
	cancel()
	assert.NoError(t, <-done)
}
