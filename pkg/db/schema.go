// Package db provides SQLite storage for sync-run history and metadata.
//
// The ledger itself stays the source of truth for which transactions were
// applied; this database only records what each run did, for the stats
// command and for operator forensics.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Sync run history
-- One row per completed sync run against the ledger
CREATE TABLE IF NOT EXISTS sync_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TEXT NOT NULL,          -- RFC 3339
    finished_at TEXT NOT NULL,         -- RFC 3339
    parsed INTEGER NOT NULL,           -- export rows parsed
    created INTEGER NOT NULL,          -- ledger entries created
    updated INTEGER NOT NULL,          -- ledger entries updated
    skipped INTEGER NOT NULL,          -- transactions skipped
    import_version INTEGER NOT NULL,   -- import-id scheme version of the run
    dry_run INTEGER NOT NULL DEFAULT 0,
    recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sync_runs_started
    ON sync_runs(started_at);

-- Sync metadata table
-- Stores key-value metadata about sync operations
CREATE TABLE IF NOT EXISTS sync_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return nil
}
