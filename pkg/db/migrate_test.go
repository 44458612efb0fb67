package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

// checkTableExists is a test helper to verify if a table exists in the database.
func checkTableExists(t *testing.T, db *sql.DB, tableName string) {
	t.Helper()
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?;", tableName).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			t.Errorf("Table '%s' does not exist, but it should.", tableName)
			return
		}
		t.Fatalf("Error checking if table '%s' exists: %v", tableName, err)
	}
	if name != tableName {
		t.Errorf("Table check query returned '%s' but expected '%s'", name, tableName)
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDBConnection(filepath.Join(t.TempDir(), "dump.db"), true, "NORMAL")
	if err != nil {
		t.Fatalf("OpenDBConnection failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenDBConnection_InvalidSyncPragma(t *testing.T) {
	_, err := OpenDBConnection(filepath.Join(t.TempDir(), "dump.db"), false, "sometimes")
	if err == nil {
		t.Fatal("expected an error for an invalid sync pragma")
	}
	if !strings.Contains(err.Error(), "invalid sync pragma value") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUpgradeDB_NewDatabase(t *testing.T) {
	db := openTestDB(t)

	err := UpgradeDB(db, "test", TargetSchemaVersion, nil)
	if err != nil {
		t.Fatalf("UpgradeDB failed on a new database: %v", err)
	}

	expectedTables := []string{"dump_versions", EntriesNamespace, StreamsNamespace, SyncNamespace}
	for _, tableName := range expectedTables {
		checkTableExists(t, db, tableName)
	}

	version, err := GetComponentSchemaVersion(db, DumpDBComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion failed after UpgradeDB: %v", err)
	}
	if version != TargetSchemaVersion {
		t.Errorf("Expected component '%s' to be at version %d, but got %d", DumpDBComponent, TargetSchemaVersion, version)
	}
}

func TestUpgradeDB_AlreadyUpToDate(t *testing.T) {
	db := openTestDB(t)

	if err := InitializeSchema(db, TargetSchemaVersion, nil); err != nil {
		t.Fatalf("InitializeSchema failed: %v", err)
	}

	if err := UpgradeDB(db, "test", TargetSchemaVersion, nil); err != nil {
		t.Fatalf("UpgradeDB failed on an up-to-date database: %v", err)
	}

	version, err := GetComponentSchemaVersion(db, DumpDBComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion failed: %v", err)
	}
	if version != TargetSchemaVersion {
		t.Errorf("Expected component '%s' to be at version %d, but got %d", DumpDBComponent, TargetSchemaVersion, version)
	}
}

func TestUpgradeDB_OlderVersionNeedsMigration(t *testing.T) {
	db := openTestDB(t)

	const dbInitialSchemaVersion int64 = 1
	const appTargetsSchemaVersion int64 = 2

	if err := InitializeSchema(db, dbInitialSchemaVersion, nil); err != nil {
		t.Fatalf("InitializeSchema to version %d failed: %v", dbInitialSchemaVersion, err)
	}

	err := UpgradeDB(db, "test", appTargetsSchemaVersion, nil)
	if err == nil {
		t.Fatalf("UpgradeDB should have failed for an older DB version requiring migration, but it did not")
	}

	expectedErrorMsg := fmt.Sprintf("component %s in database 'test' has schema version %d, which is older than application's target schema version %d", DumpDBComponent, dbInitialSchemaVersion, appTargetsSchemaVersion)
	if !strings.Contains(err.Error(), expectedErrorMsg) {
		t.Errorf("UpgradeDB error message mismatch.\nExpected to contain: %s\nGot: %s", expectedErrorMsg, err.Error())
	}

	currentVersion, getErr := GetComponentSchemaVersion(db, DumpDBComponent)
	if getErr != nil {
		t.Fatalf("GetComponentSchemaVersion failed after attempted upgrade: %v", getErr)
	}
	if currentVersion != dbInitialSchemaVersion {
		t.Errorf("Database schema version changed from %d to %d after a failed upgrade attempt that should have been a no-op.", dbInitialSchemaVersion, currentVersion)
	}
}

func TestUpgradeDB_NewerVersionUnsupported(t *testing.T) {
	db := openTestDB(t)

	const dbInitialSchemaVersion int64 = 2
	const appTargetsSchemaVersion int64 = 1

	if err := InitializeSchema(db, dbInitialSchemaVersion, nil); err != nil {
		t.Fatalf("InitializeSchema to version %d failed: %v", dbInitialSchemaVersion, err)
	}

	err := UpgradeDB(db, "test", appTargetsSchemaVersion, nil)
	if err == nil {
		t.Fatalf("UpgradeDB should have failed for a newer DB version, but it did not")
	}

	expectedErrorMsg := fmt.Sprintf("component %s in database 'test' has schema version %d, which is newer than application's target schema version %d", DumpDBComponent, dbInitialSchemaVersion, appTargetsSchemaVersion)
	if !strings.Contains(err.Error(), expectedErrorMsg) {
		t.Errorf("UpgradeDB error message mismatch.\nExpected to contain: %s\nGot: %s", expectedErrorMsg, err.Error())
	}
}
