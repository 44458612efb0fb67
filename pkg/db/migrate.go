package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// TargetSchemaVersion is the highest schema version this version of the code supports for the dumpdb component.
	// This constant is used by the CLI to pass to UpgradeDB.
	TargetSchemaVersion int64 = 1
	// DumpDBComponent is the name for the main dump database component.
	DumpDBComponent = "dumpdb"
)

// GetComponentSchemaVersion retrieves the schema version for a given component.
// Returns 0 if the component is not found, the versions table is uninitialized, or the table doesn't exist.
func GetComponentSchemaVersion(db *sql.DB, componentName string) (int64, error) {
	query := `SELECT version FROM dump_versions WHERE component = ?;`
	row := db.QueryRow(query, componentName)

	var version int64
	err := row.Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		if strings.Contains(err.Error(), "no such table") && strings.Contains(err.Error(), "dump_versions") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan version for component '%s': %w", componentName, err)
	}
	return version, nil
}

// InitializeSchema creates the database schema (all tables for dumpdb)
// and sets the specified schema version for the dumpdb component.
func InitializeSchema(db *sql.DB, schemaVersionToSet int64, logger *slog.Logger) error {
	_, err := db.Exec(SchemaV1)
	if err != nil {
		return fmt.Errorf("failed to execute schema v1 SQL: %w", err)
	}

	insertVersionSQL := `
INSERT INTO dump_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch();`

	_, err = db.Exec(insertVersionSQL, DumpDBComponent, schemaVersionToSet)
	if err != nil {
		return fmt.Errorf("failed to insert/update version for component %s to %d: %w", DumpDBComponent, schemaVersionToSet, err)
	}

	loggerOrDefault(logger).Info("component schema initialized", "component", DumpDBComponent, "version", schemaVersionToSet)
	return nil
}

// UpgradeDB applies necessary migrations to bring the database, represented by the *sql.DB connection,
// for the DumpDBComponent to the appTargetSchemaVersion.
// dbIdentifierForLog is used for logging purposes only.
func UpgradeDB(db *sql.DB, dbIdentifierForLog string, appTargetSchemaVersion int64, logger *slog.Logger) error {
	logger = loggerOrDefault(logger).With("component", DumpDBComponent, "db", dbIdentifierForLog)

	currentDBVersion, err := GetComponentSchemaVersion(db, DumpDBComponent)
	if err != nil {
		return err
	}

	switch {
	case currentDBVersion == 0:
		logger.Info("database uninitialized, creating schema", "target_version", appTargetSchemaVersion)
		if err := InitializeSchema(db, appTargetSchemaVersion, logger); err != nil {
			return fmt.Errorf("failed to initialize component %s in database '%s': %w", DumpDBComponent, dbIdentifierForLog, err)
		}
		return nil
	case currentDBVersion == appTargetSchemaVersion:
		logger.Debug("database schema up to date", "version", currentDBVersion)
		return nil
	case currentDBVersion < appTargetSchemaVersion:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is older than application's target schema version %d. Automatic migration from this older version is not yet supported", DumpDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	default:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is newer than application's target schema version %d. Please upgrade the application", DumpDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	}
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
