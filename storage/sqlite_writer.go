package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"catalog-aggregator/utils"
)

// SQLiteWriter persists the storage-eligible columns to a SQLite file.
type SQLiteWriter struct {
	sqlWriter
}

// NewSQLiteWriter opens (creating if needed) the database at path.
func NewSQLiteWriter(path string, logger *utils.Logger) (*SQLiteWriter, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One connection: writes are serialised and :memory: stays one database.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &SQLiteWriter{sqlWriter{db: db, dialect: sqliteDialect, logger: logger}}, nil
}
