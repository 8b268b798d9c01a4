package journal

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stamped into PRAGMA user_version when schema.sql is applied.
// A file carrying a higher version was written by a newer build and is refused.
const schemaVersion = 1

var (
	// ErrSessionNotFound is returned when a session id has no journal entry.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists is returned when a session id is journaled twice.
	ErrSessionExists = errors.New("session already journaled")

	// ErrOperationExists is returned when a (session, seq) pair is written twice.
	ErrOperationExists = errors.New("operation already journaled")

	// ErrSchemaVersion is returned for journals written by a newer schema.
	ErrSchemaVersion = errors.New("unsupported journal schema version")
)

// Journal is the durable operation log.
type Journal struct {
	db *sql.DB
}

// Open creates or opens a journal database at the given path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dataSource(path))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// One writer; also keeps the connection parameters on a single handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// dataSource builds a go-sqlite3 URI that sets WAL mode, NORMAL sync, a busy
// timeout and foreign keys on every connection the pool opens.
func dataSource(path string) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_synchronous", "NORMAL")
	params.Set("_busy_timeout", "5000")
	params.Set("_foreign_keys", "on")
	return "file:" + path + "?" + params.Encode()
}

// ensureSchema applies schema.sql to a fresh file and checks the version of an
// existing one.
func ensureSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	switch {
	case version == schemaVersion:
		return nil
	case version > schemaVersion:
		return fmt.Errorf("%w: file is v%d, this build reads up to v%d", ErrSchemaVersion, version, schemaVersion)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("stamp schema version: %w", err)
	}
	return tx.Commit()
}
