package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS attendance_history (
		id                 TEXT PRIMARY KEY,
		work_date          TEXT NOT NULL,
		source             TEXT NOT NULL,
		clock_in_time      TEXT,
		clock_out_time     TEXT,
		min_clock_out_time TEXT,
		message            TEXT NOT NULL DEFAULT '',
		created_at         TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_history_created_at ON attendance_history (created_at DESC)`,
}

// OpenSQLite opens the local history database at path, or an in-memory one for
// ":memory:". WAL mode is enabled and the schema is migrated.
func OpenSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	for i, stmt := range sqliteMigrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return db, nil
}
