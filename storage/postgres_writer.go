package storage

import (
	"database/sql"
	"fmt"
	"time"

	"catalog-aggregator/utils"
)

// PostgresWriter persists the storage-eligible columns to PostgreSQL.
type PostgresWriter struct {
	sqlWriter
}

// NewPostgresWriter opens a connection to PostgreSQL and waits for it to
// accept queries. Tables are created on first write per catalog type.
func NewPostgresWriter(dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := openWithRetry("postgres", dsn, logger)
	if err != nil {
		return nil, err
	}
	return &PostgresWriter{sqlWriter{db: db, dialect: postgresDialect, logger: logger}}, nil
}

// openWithRetry opens a database server connection, pinging it until it
// answers or the attempts run out.
func openWithRetry(driver, dsn string, logger *utils.Logger) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", driver, err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		logger.Debug("[storage] Waiting for %s: %v", driver, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping failed after retries: %w", driver, err)
	}
	return db, nil
}
