// Package sqlite stores the round ledger in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps sql.DB opened with the modernc driver.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	d := &DB{DB: db}
	if err := d.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS round_records (
			session_id      TEXT    NOT NULL,
			round           INTEGER NOT NULL,
			vault_rewards   REAL    NOT NULL,
			task_rewards    REAL    NOT NULL,
			total_reward    REAL    NOT NULL,
			capital_after   REAL    NOT NULL,
			total_earnings  REAL    NOT NULL,
			slashing_events INTEGER NOT NULL DEFAULT 0,
			tasks_succeeded INTEGER NOT NULL DEFAULT 0,
			tasks_failed    INTEGER NOT NULL DEFAULT 0,
			operator_trust  REAL,
			game_over       INTEGER NOT NULL DEFAULT 0,
			events          TEXT    NOT NULL DEFAULT '[]',
			created_at      INTEGER NOT NULL,
			PRIMARY KEY (session_id, round)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_round_records_created_at ON round_records(created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// isDuplicateKeyError checks if error is a primary key or unique violation.
func isDuplicateKeyError(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
