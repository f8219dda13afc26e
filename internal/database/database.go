package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
//
// Timestamps are stored as RFC3339 text written by the services so they scan
// back deterministically regardless of driver time handling.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS account (
		account_id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_firstname TEXT NOT NULL,
		account_lastname TEXT NOT NULL,
		account_email TEXT NOT NULL UNIQUE,
		account_password TEXT NOT NULL,
		account_type TEXT NOT NULL DEFAULT 'Client',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS account_activity (
		id TEXT NOT NULL PRIMARY KEY,
		type TEXT NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		account_id INTEGER,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_account_activity_account
		ON account_activity (account_id, created_at);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
