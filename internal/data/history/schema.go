package history

// Migrations run in order inside one transaction each; the schema_migrations
// table records the applied versions.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		run_id              TEXT PRIMARY KEY,
		recorded_at         TEXT NOT NULL,
		files               INTEGER NOT NULL,
		functions           INTEGER NOT NULL,
		failures            INTEGER NOT NULL,
		physical_lines      INTEGER NOT NULL,
		logical_lines       INTEGER NOT NULL,
		comment_lines       INTEGER NOT NULL,
		blank_lines         INTEGER NOT NULL,
		avg_maintainability REAL NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_recorded_at ON snapshots(recorded_at DESC)`,
}
