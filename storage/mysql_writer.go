package storage

import (
	_ "github.com/go-sql-driver/mysql"

	"catalog-aggregator/utils"
)

// MySQLWriter persists the storage-eligible columns to MySQL.
type MySQLWriter struct {
	sqlWriter
}

// NewMySQLWriter connects with a go-sql-driver DSN such as
// "user:pass@tcp(localhost:3306)/catalog_db".
func NewMySQLWriter(dsn string, logger *utils.Logger) (*MySQLWriter, error) {
	db, err := openWithRetry("mysql", dsn, logger)
	if err != nil {
		return nil, err
	}
	return &MySQLWriter{sqlWriter{db: db, dialect: mysqlDialect, logger: logger}}, nil
}
