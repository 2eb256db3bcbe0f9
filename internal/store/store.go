// Package store is the SQLite persistence layer for the index: documents,
// their symbol tables, and their occurrences.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS documents (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL UNIQUE,
  language        TEXT NOT NULL,
  hash            TEXT,
  line_count      INTEGER,
  last_indexed    TIMESTAMP
);

CREATE TABLE IF NOT EXISTS symbols (
  id               INTEGER PRIMARY KEY,
  document_id      INTEGER NOT NULL REFERENCES documents(id),
  symbol           TEXT NOT NULL,
  display_name     TEXT NOT NULL,
  kind             TEXT NOT NULL,
  enclosing_symbol TEXT,
  documentation    TEXT
);

CREATE TABLE IF NOT EXISTS occurrences (
  id              INTEGER PRIMARY KEY,
  document_id     INTEGER NOT NULL REFERENCES documents(id),
  symbol          TEXT NOT NULL,
  roles           INTEGER NOT NULL,
  syntax_kind     TEXT,
  start_line      INTEGER,
  start_col       INTEGER,
  end_line        INTEGER,
  end_col         INTEGER
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT
);

CREATE INDEX IF NOT EXISTS idx_documents_language ON documents(language);
CREATE INDEX IF NOT EXISTS idx_symbols_document ON symbols(document_id);
CREATE INDEX IF NOT EXISTS idx_symbols_symbol ON symbols(symbol);
CREATE INDEX IF NOT EXISTS idx_symbols_display_name ON symbols(display_name);
CREATE INDEX IF NOT EXISTS idx_symbols_kind ON symbols(kind);
CREATE INDEX IF NOT EXISTS idx_occurrences_document ON occurrences(document_id);
CREATE INDEX IF NOT EXISTS idx_occurrences_symbol ON occurrences(symbol);
`

// DeleteDocumentData transactionally removes a document and all rows that
// hang off it.
func (s *Store) DeleteDocumentData(documentID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM occurrences WHERE document_id = ?",
		"DELETE FROM symbols WHERE document_id = ?",
		"DELETE FROM documents WHERE id = ?",
	} {
		if _, err := tx.Exec(q, documentID); err != nil {
			return fmt.Errorf("delete document data: %w", err)
		}
	}
	return tx.Commit()
}

// GetMetadata returns the value for key, or "" if absent.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata: %w", err)
	}
	return value, nil
}

// SetMetadata upserts a metadata key.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata: %w", err)
	}
	return nil
}
