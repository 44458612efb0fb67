package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pkgdb "github.com/unowned-ai/dump/pkg/db"
	"github.com/unowned-ai/dump/pkg/notes"
	"github.com/unowned-ai/dump/pkg/utils"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the dump database",
	Long:  `Provides commands for managing the dump SQLite database: schema upgrades, consistency checks and imports.`,
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the database schema to the latest version",
	Long: `Connects to the SQLite database and applies any necessary schema migrations.
If the database does not exist it is created and initialized with the latest schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolvedPath, err := utils.ResolveAndEnsureDBPath(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("error resolving database path: %w", err)
		}

		lock := pkgdb.NewFileLock(resolvedPath)
		if err := lock.TryLock(); err != nil {
			return err
		}
		defer lock.Unlock()

		fmt.Fprintf(cmd.OutOrStdout(), "Upgrading database at: %s (WAL: %t, Sync: %s)\n", resolvedPath, cfg.DB.WAL, cfg.DB.Sync)

		dbConn, err := pkgdb.OpenDBConnection(resolvedPath, cfg.DB.WAL, cfg.DB.Sync)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		return pkgdb.UpgradeDB(dbConn, resolvedPath, pkgdb.TargetSchemaVersion, logger)
	},
}

var dbCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the consistency pass",
	Long: `Ensures the Inbox stream and the sync counter exist, drops records that cannot be
decoded and rewrites every entry so its tags line holds only stream references.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), lockExclusive)
		if err != nil {
			return err
		}
		defer s.Close()

		if jsonOutputFlag {
			return printJSON(cmd.OutOrStdout(), s.report)
		}
		printReport(cmd, s.report)
		return nil
	},
}

var dbConvertCmd = &cobra.Command{
	Use:   "convert [source-db]",
	Short: "Import records from a database written by an older release",
	Long: `Reads every entry and stream from source-db, fills in defaults for missing fields
and writes them into the current database. A consistency pass runs afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		srcPath, err := utils.ExpandPath(args[0])
		if err != nil {
			return err
		}

		srcLock := pkgdb.NewFileLock(srcPath)
		if err := srcLock.TryRLock(); err != nil {
			return fmt.Errorf("source database: %w", err)
		}
		defer srcLock.Unlock()

		src, err := pkgdb.OpenDBConnection("file:"+srcPath+"?mode=ro", false, "")
		if err != nil {
			return err
		}
		defer src.Close()

		s, err := openSession(cmd.Context(), lockExclusive)
		if err != nil {
			return err
		}
		defer s.Close()

		converted, err := notes.Convert(cmd.Context(), src, s.conn, logger)
		if err != nil {
			return fmt.Errorf("failed to convert %s: %w", srcPath, err)
		}
		report, err := s.store.Check(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutputFlag {
			return printJSON(out, struct {
				Converted notes.ConvertReport `json:"converted"`
				Check     notes.CheckReport   `json:"check"`
			}{converted, report})
		}
		fmt.Fprintf(out, "Imported %d entries and %d streams from %s (skipped %d entries, %d streams).\n",
			converted.Entries, converted.Streams, srcPath, converted.SkippedEntries, converted.SkippedStreams)
		printReport(cmd, report)
		return nil
	},
}

var dbInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show database location and counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), lockShared)
		if err != nil {
			return err
		}
		defer s.Close()

		version, err := pkgdb.GetComponentSchemaVersion(s.conn, pkgdb.DumpDBComponent)
		if err != nil {
			return err
		}
		syncID, err := s.store.SyncID(cmd.Context())
		if err != nil {
			return err
		}
		streams, err := s.store.ListStreams(cmd.Context())
		if err != nil {
			return err
		}
		list, err := s.store.ListEntries(cmd.Context(), notes.ListOptions{Limit: notes.LimitOf(1)})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Database:       %s\n", s.dbPath)
		fmt.Fprintf(out, "Schema Version: %d\n", version)
		fmt.Fprintf(out, "Sync ID:        %d\n", syncID)
		fmt.Fprintf(out, "Streams:        %d\n", len(streams))
		fmt.Fprintf(out, "Entries:        %d\n", list.Total)
		return nil
	},
}

func printReport(cmd *cobra.Command, report notes.CheckReport) {
	fmt.Fprintf(cmd.OutOrStdout(), "Checked %d entries and %d streams (dropped %d entries, %d streams).\n",
		report.Entries, report.Streams, report.DroppedEntries, report.DroppedStreams)
}

func initDBCmd() {
	dbCmd.PersistentFlags().BoolVar(&jsonOutputFlag, "json", false, "Print results as JSON")

	dbCmd.AddCommand(dbUpgradeCmd, dbCheckCmd, dbConvertCmd, dbInfoCmd)
}
