package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/unowned-ai/dump/pkg/db"
	"github.com/unowned-ai/dump/pkg/kv"
)

// legacyEntry is the entry layout written before ids and creation times
// became mandatory.
type legacyEntry struct {
	ID      *string `json:"id"`
	Created *int64  `json:"created"`
	Title   string  `json:"title"`
	Body    string  `json:"body"`
	Meta    string  `json:"meta"`
}

// legacyStream is the stream layout written before streams carried meta.
type legacyStream struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ConvertReport counts what Convert copied and skipped.
type ConvertReport struct {
	Entries        int `json:"entries"`
	Streams        int `json:"streams"`
	SkippedEntries int `json:"skipped_entries"`
	SkippedStreams int `json:"skipped_streams"`
}

// Convert copies entries and streams stored in the legacy layout in src into
// dst using the current layout. Records that cannot be read, and entries
// without an id or creation time, are skipped. Meta is copied verbatim, so
// tokens keep pointing at the copied streams. Open dst afterwards to run the
// consistency pass.
func Convert(ctx context.Context, src, dst *sql.DB, logger *slog.Logger) (ConvertReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var report ConvertReport

	srcEntries, dstEntries, err := openTreePair(src, dst, db.EntriesNamespace)
	if err != nil {
		return report, err
	}
	srcStreams, dstStreams, err := openTreePair(src, dst, db.StreamsNamespace)
	if err != nil {
		return report, err
	}

	items, err := srcEntries.Items(ctx, false)
	if err != nil {
		return report, err
	}
	for _, item := range items {
		var old legacyEntry
		if err := json.Unmarshal(item.Value, &old); err != nil || old.ID == nil || old.Created == nil {
			logger.Warn("skipping legacy entry", "key", item.Key, "error", err)
			report.SkippedEntries++
			continue
		}
		entry := Entry{ID: *old.ID, Created: *old.Created, Title: old.Title, Body: old.Body, Meta: old.Meta}
		if err := insertJSON(ctx, dstEntries, entry.ID, entry); err != nil {
			return report, err
		}
		report.Entries++
	}

	items, err = srcStreams.Items(ctx, false)
	if err != nil {
		return report, err
	}
	for _, item := range items {
		var old legacyStream
		if err := json.Unmarshal(item.Value, &old); err != nil {
			logger.Warn("skipping legacy stream", "key", item.Key, "error", err)
			report.SkippedStreams++
			continue
		}
		stream := Stream{ID: old.ID, Name: old.Name}
		if err := insertJSON(ctx, dstStreams, stream.ID, stream); err != nil {
			return report, err
		}
		report.Streams++
	}

	logger.Info("database converted",
		"entries", report.Entries,
		"streams", report.Streams,
		"skipped_entries", report.SkippedEntries,
		"skipped_streams", report.SkippedStreams)
	return report, nil
}

func openTreePair(src, dst *sql.DB, namespace string) (*kv.Tree, *kv.Tree, error) {
	from, err := kv.Open(src, namespace)
	if err != nil {
		return nil, nil, err
	}
	to, err := kv.Open(dst, namespace)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
