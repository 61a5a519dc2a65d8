package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillUpdatedAt(db); err != nil {
		return fmt.Errorf("backfilling updated_at values: %w", err)
	}
	return nil
}

// migrateBackfillUpdatedAt stamps rows written before updated_at existed.
func migrateBackfillUpdatedAt(db *sql.DB) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := db.Exec(`UPDATE kv SET updated_at = ? WHERE updated_at = ''`, now); err != nil {
		return fmt.Errorf("kv: %w", err)
	}
	if _, err := db.Exec(`UPDATE kv_sets SET added_at = ? WHERE added_at = ''`, now); err != nil {
		return fmt.Errorf("kv_sets: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS kv_sets (
		set_key TEXT NOT NULL,
		member  TEXT NOT NULL,
		PRIMARY KEY (set_key, member)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_kv_sets_set_key ON kv_sets(set_key)`,
	`ALTER TABLE kv ADD COLUMN updated_at TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE kv_sets ADD COLUMN added_at TEXT NOT NULL DEFAULT ''`,
}
