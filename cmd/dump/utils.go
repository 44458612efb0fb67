package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	pkgdb "github.com/unowned-ai/dump/pkg/db"
	"github.com/unowned-ai/dump/pkg/notes"
	"github.com/unowned-ai/dump/pkg/utils"
)

// lockMode selects how a command shares the database with other processes.
type lockMode int

const (
	// lockShared is for one-shot commands. No consistency pass is run.
	lockShared lockMode = iota
	// lockHost runs the consistency pass under an exclusive lock, then keeps
	// a shared lock for as long as the host lives.
	lockHost
	// lockExclusive holds the database alone for the whole command.
	lockExclusive
)

// session is an open store together with the resources backing it.
type session struct {
	store  *notes.Store
	conn   *sql.DB
	lock   *pkgdb.FileLock
	dbPath string
	report notes.CheckReport
}

// openSession resolves the database path, takes the lock for mode, upgrades
// the schema and opens the store.
func openSession(ctx context.Context, mode lockMode) (*session, error) {
	resolvedPath, err := utils.ResolveAndEnsureDBPath(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("error resolving database path: %w", err)
	}

	lock := pkgdb.NewFileLock(resolvedPath)
	switch mode {
	case lockShared:
		err = lock.TryRLock()
	default:
		err = lock.TryLock()
	}
	if err != nil {
		return nil, err
	}

	s := &session{lock: lock, dbPath: resolvedPath}
	if err := s.open(ctx, mode); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) open(ctx context.Context, mode lockMode) error {
	conn, err := pkgdb.OpenDBConnection(s.dbPath, cfg.DB.WAL, cfg.DB.Sync)
	if err != nil {
		return err
	}
	s.conn = conn

	if err := pkgdb.UpgradeDB(conn, s.dbPath, pkgdb.TargetSchemaVersion, logger); err != nil {
		return err
	}

	opts := []notes.Option{
		notes.WithLogger(logger),
		notes.WithQueryCacheSize(cfg.Cache.Queries),
	}
	if mode == lockShared {
		s.store, err = notes.New(conn, opts...)
		return err
	}

	s.store, s.report, err = notes.Open(ctx, conn, opts...)
	if err != nil {
		return err
	}
	if mode == lockHost {
		// Downgrade so one-shot commands can run next to the host.
		if err := s.lock.Unlock(); err != nil {
			return err
		}
		if err := s.lock.TryRLock(); err != nil {
			return fmt.Errorf("failed to reacquire shared lock: %w", err)
		}
	}
	return nil
}

// Close checkpoints the WAL, closes the connection and releases the lock.
func (s *session) Close() error {
	var errs []error
	if s.conn != nil {
		if cfg.DB.WAL {
			if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
				logger.Warn("wal checkpoint failed", "db", s.dbPath, "error", err)
			}
		}
		errs = append(errs, s.conn.Close())
	}
	errs = append(errs, s.lock.Unlock())
	return errors.Join(errs...)
}

// formatTimestamp converts Unix seconds to a human-readable RFC3339 string.
func formatTimestamp(timestamp int64) string {
	return time.Unix(timestamp, 0).Format(time.RFC3339)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printEntry(w io.Writer, entry notes.Entry) {
	fmt.Fprintln(w, "Entry Details:")
	fmt.Fprintf(w, "ID:         %s\n", entry.ID)
	fmt.Fprintf(w, "Title:      %s\n", entry.Title)
	fmt.Fprintf(w, "Tags:       %s\n", entry.Meta)
	fmt.Fprintf(w, "Created At: %s\n", formatTimestamp(entry.Created))
	fmt.Fprintln(w, "\nBody:")
	fmt.Fprintln(w, "------------------------------------------------------------")
	fmt.Fprintln(w, entry.Body)
	fmt.Fprintln(w, "------------------------------------------------------------")
}
