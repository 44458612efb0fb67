package notes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/unowned-ai/dump/pkg/db"
	"github.com/unowned-ai/dump/pkg/kv"
)

func TestConvert(t *testing.T) {
	ctx := context.Background()
	src := openTestConn(t)
	dst := openTestConn(t)

	srcEntries, err := kv.Open(src, pkgdb.EntriesNamespace)
	require.NoError(t, err)
	srcStreams, err := kv.Open(src, pkgdb.StreamsNamespace)
	require.NoError(t, err)

	meta := "todo " + Token("s1")
	require.NoError(t, srcEntries.Insert(ctx, "e1",
		[]byte(`{"id":"e1","created":42,"title":"kept","body":"b","meta":"`+meta+`"}`)))
	require.NoError(t, srcEntries.Insert(ctx, "e2",
		[]byte(`{"id":null,"created":43,"title":"no id","body":"","meta":""}`)))
	require.NoError(t, srcEntries.Insert(ctx, "e3", []byte(`garbage`)))
	require.NoError(t, srcStreams.Insert(ctx, "s1", []byte(`{"id":"s1","name":"Work"}`)))

	report, err := Convert(ctx, src, dst, nil)
	require.NoError(t, err)
	assert.Equal(t, ConvertReport{Entries: 1, Streams: 1, SkippedEntries: 2}, report)

	store, check, err := Open(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, 1, check.Entries)

	entry, err := store.GetEntry(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, Entry{ID: "e1", Created: 42, Title: "kept", Body: "b", Meta: "todo {Work}"}, entry)

	stream, err := store.StreamByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Stream{ID: "s1", Name: "Work"}, stream)
}
