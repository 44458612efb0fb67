package db

// Namespaces are the key-value trees of the dumpdb component. Each one is a table with
// an insertion sequence, a unique key and an opaque value.
const (
	EntriesNamespace = "entries"
	StreamsNamespace = "streams"
	SyncNamespace    = "sync"
)

const (
	// SchemaV1 defines the SQL statements for version 1 of the database schema.
	// This schema pertains to the 'dumpdb' component.
	SchemaV1 = `
CREATE TABLE IF NOT EXISTS dump_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS entries (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    key TEXT NOT NULL UNIQUE,
    value BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS streams (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    key TEXT NOT NULL UNIQUE,
    value BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS sync (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    key TEXT NOT NULL UNIQUE,
    value BLOB NOT NULL
);
`
)
