package db

func (db *DB) initSchema() error {
	schema := `
	-- One row per share. next_seq is the sequence the next appended event gets.
	CREATE TABLE IF NOT EXISTS shares (
		id TEXT PRIMARY KEY,
		secret TEXT NOT NULL,
		session_id TEXT NOT NULL,
		next_seq INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shares_session_id ON shares(session_id);
	CREATE INDEX IF NOT EXISTS idx_shares_updated_at ON shares(updated_at);

	-- Append-only event log, one JSON event per row
	CREATE TABLE IF NOT EXISTS share_events (
		share_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		data TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (share_id, seq),
		FOREIGN KEY (share_id) REFERENCES shares(id) ON DELETE CASCADE
	);

	-- Folded snapshot covering every event with seq < share_compactions.seq
	CREATE TABLE IF NOT EXISTS share_compactions (
		share_id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		data BLOB NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (share_id) REFERENCES shares(id) ON DELETE CASCADE
	);
	`

	_, err := db.conn.Exec(schema)
	return err
}
