package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/unowned-ai/dump/pkg/db"
	"github.com/unowned-ai/dump/pkg/kv"
)

const (
	syncIDKey = "sync_id"

	// DefaultQueryCacheSize bounds the number of parsed queries kept in memory.
	DefaultQueryCacheSize = 256
)

// Store owns the entries, streams and sync trees of one database. It is safe
// to share between goroutines; operations are not atomic with respect to each
// other.
type Store struct {
	entries *kv.Tree
	streams *kv.Tree
	sync    *kv.Tree

	logger  *slog.Logger
	now     func() time.Time
	newID   func() (string, error)
	queries *lru.Cache[string, parsedQuery]

	queryCacheSize int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for operation traces.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for entry ids and creation times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the random suffix of generated ids.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithQueryCacheSize sets how many parsed queries are cached. Values below one
// keep the default.
func WithQueryCacheSize(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.queryCacheSize = size
		}
	}
}

// New binds a Store to an already upgraded database without touching its
// contents. Most callers want Open.
func New(conn *sql.DB, opts ...Option) (*Store, error) {
	s := &Store{
		logger:         slog.Default(),
		now:            time.Now,
		newID:          func() (string, error) { return gonanoid.New() },
		queryCacheSize: DefaultQueryCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if s.entries, err = kv.Open(conn, db.EntriesNamespace); err != nil {
		return nil, err
	}
	if s.streams, err = kv.Open(conn, db.StreamsNamespace); err != nil {
		return nil, err
	}
	if s.sync, err = kv.Open(conn, db.SyncNamespace); err != nil {
		return nil, err
	}
	if s.queries, err = lru.New[string, parsedQuery](s.queryCacheSize); err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}
	return s, nil
}

// Open binds a Store and runs the startup consistency pass.
func Open(ctx context.Context, conn *sql.DB, opts ...Option) (*Store, CheckReport, error) {
	s, err := New(conn, opts...)
	if err != nil {
		return nil, CheckReport{}, err
	}
	report, err := s.Check(ctx)
	if err != nil {
		return nil, report, err
	}
	return s, report, nil
}

// Check makes the store consistent: it (re)writes the Inbox stream, seeds the
// sync counter, drops records that cannot be deserialized and rewrites every
// remaining entry through the normal write path.
func (s *Store) Check(ctx context.Context) (CheckReport, error) {
	var report CheckReport

	if err := s.InsertStream(ctx, inboxStream()); err != nil {
		return report, err
	}

	if _, ok, err := s.sync.Get(ctx, syncIDKey); err != nil {
		return report, err
	} else if !ok {
		if err := insertJSON(ctx, s.sync, syncIDKey, uint64(0)); err != nil {
			return report, err
		}
	}

	streamItems, err := s.streams.Items(ctx, false)
	if err != nil {
		return report, err
	}
	for _, item := range streamItems {
		if _, err := decodeRecord[Stream](item.Value); err != nil {
			s.logger.Warn("dropping unreadable stream", "key", item.Key, "error", err)
			if err := s.streams.Remove(ctx, item.Key); err != nil {
				return report, err
			}
			report.DroppedStreams++
			continue
		}
		report.Streams++
	}

	entryItems, err := s.entries.Items(ctx, false)
	if err != nil {
		return report, err
	}
	for _, item := range entryItems {
		entry, err := decodeRecord[Entry](item.Value)
		if err != nil {
			s.logger.Warn("dropping unreadable entry", "key", item.Key, "error", err)
			if err := s.entries.Remove(ctx, item.Key); err != nil {
				return report, err
			}
			report.DroppedEntries++
			continue
		}
		if err := s.InsertEntry(ctx, entry); err != nil {
			return report, err
		}
		report.Entries++
	}

	s.logger.Debug("store checked",
		"entries", report.Entries,
		"streams", report.Streams,
		"dropped_entries", report.DroppedEntries,
		"dropped_streams", report.DroppedStreams)
	return report, nil
}

// SyncID returns the stored sync counter. Nothing increments it yet.
func (s *Store) SyncID(ctx context.Context) (uint64, error) {
	raw, ok, err := s.sync.Get(ctx, syncIDKey)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrSyncIDMissing
	}
	return decodeRecord[uint64](raw)
}

// generateID returns "<unix seconds>-<random>".
func (s *Store) generateID(now time.Time) (string, error) {
	suffix, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return fmt.Sprintf("%d-%s", now.Unix(), suffix), nil
}

// loadStreams snapshots the registry in insertion order, skipping unreadable
// records.
func (s *Store) loadStreams(ctx context.Context) (streamSet, error) {
	items, err := s.streams.Items(ctx, false)
	if err != nil {
		return nil, err
	}
	set := make(streamSet, 0, len(items))
	for _, item := range items {
		stream, err := decodeRecord[Stream](item.Value)
		if err != nil {
			s.logger.Warn("skipping unreadable stream", "key", item.Key, "error", err)
			continue
		}
		set = append(set, stream)
	}
	return set, nil
}

func decodeRecord[T any](raw []byte) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return v, nil
}

func insertJSON(ctx context.Context, tree *kv.Tree, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s record %q: %w", tree.Namespace(), key, err)
	}
	return tree.Insert(ctx, key, raw)
}
