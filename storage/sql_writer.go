package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"catalog-aggregator/models"
	"catalog-aggregator/utils"
)

// dialect holds what differs between the SQL sinks.
type dialect struct {
	name      string
	bind      func(n int) string
	quote     func(ident string) string
	key       string
	types     map[models.Archetype]string
	timestamp string
	set       func(labels []string) any
	upsert    func(cols []string) string
}

func doubleQuote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// onConflict is the upsert clause shared by PostgreSQL and SQLite.
func onConflict(cols []string) string {
	updates := []string{"scraped_at = CURRENT_TIMESTAMP"}
	for _, c := range cols {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	return "ON CONFLICT (entity_name) DO UPDATE SET " + strings.Join(updates, ", ")
}

var postgresDialect = dialect{
	name:  "postgres",
	bind:  func(n int) string { return "$" + strconv.Itoa(n) },
	quote: doubleQuote,
	key:   "entity_name TEXT PRIMARY KEY",
	types: map[models.Archetype]string{
		models.ArchetypeCurrency:    "NUMERIC(10,2)",
		models.ArchetypeUnitNumeric: "NUMERIC(8,1)",
		models.ArchetypeUnitRange:   "NUMERIC(8,1)",
		models.ArchetypeYear:        "INTEGER",
		models.ArchetypeTriState:    "BOOLEAN",
		models.ArchetypeEnumSet:     "TEXT[]",
	},
	timestamp: "TIMESTAMPTZ NOT NULL DEFAULT NOW()",
	set:       func(labels []string) any { return pq.Array(labels) },
	upsert:    onConflict,
}

var sqliteDialect = dialect{
	name:  "sqlite",
	bind:  func(int) string { return "?" },
	quote: doubleQuote,
	key:   "entity_name TEXT PRIMARY KEY",
	types: map[models.Archetype]string{
		models.ArchetypeCurrency:    "NUMERIC",
		models.ArchetypeUnitNumeric: "REAL",
		models.ArchetypeUnitRange:   "REAL",
		models.ArchetypeYear:        "INTEGER",
		models.ArchetypeTriState:    "BOOLEAN",
	},
	timestamp: "TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP",
	set:       func(labels []string) any { return models.FormatValue(labels) },
	upsert:    onConflict,
}

var mysqlDialect = dialect{
	name:  "mysql",
	bind:  func(int) string { return "?" },
	quote: func(ident string) string { return "`" + strings.ReplaceAll(ident, "`", "``") + "`" },
	key:   "entity_name VARCHAR(255) PRIMARY KEY",
	types: map[models.Archetype]string{
		models.ArchetypeCurrency:    "DECIMAL(10,2)",
		models.ArchetypeUnitNumeric: "DECIMAL(8,1)",
		models.ArchetypeUnitRange:   "DECIMAL(8,1)",
		models.ArchetypeYear:        "INT",
		models.ArchetypeTriState:    "BOOLEAN",
	},
	timestamp: "TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP",
	set:       func(labels []string) any { return models.FormatValue(labels) },
	upsert: func(cols []string) string {
		updates := []string{"scraped_at = CURRENT_TIMESTAMP"}
		for _, c := range cols {
			updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", c, c))
		}
		return "ON DUPLICATE KEY UPDATE " + strings.Join(updates, ", ")
	},
}

func (d dialect) columnType(a models.Archetype) string {
	if t, ok := d.types[a]; ok {
		return t
	}
	return "TEXT"
}

// TableName is the per-catalog-type table the SQL sinks write to.
func TableName(cat models.CatalogType) string {
	return strings.ReplaceAll(cat.Name, "-", "_")
}

// sqlWriter upserts the storage-eligible columns of a table into a
// per-catalog-type table keyed by entity name.
type sqlWriter struct {
	db      *sql.DB
	dialect dialect
	logger  *utils.Logger
}

func (w *sqlWriter) migrate(cat models.CatalogType) error {
	cols := []string{w.dialect.key}
	for _, d := range cat.StorageEligible() {
		cols = append(cols, fmt.Sprintf("%s %s", w.dialect.quote(d.Key), w.dialect.columnType(d.Rule.Kind())))
	}
	cols = append(cols, "scraped_at "+w.dialect.timestamp)

	_, err := w.db.Exec(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		w.dialect.quote(TableName(cat)), strings.Join(cols, ",\n\t")))
	return err
}

// Write stores every row. A later row with the same entity name replaces
// an earlier one.
func (w *sqlWriter) Write(table *models.Table) error {
	var stored []int
	for i, d := range table.Descriptors {
		if d.Store {
			stored = append(stored, i)
		}
	}
	if len(table.Rows) == 0 || len(stored) == 0 {
		return nil
	}

	if err := w.migrate(table.Catalog); err != nil {
		return fmt.Errorf("%s: migrate: %w", w.dialect.name, err)
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("%s: begin: %w", w.dialect.name, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(w.upsertQuery(table, stored))
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", w.dialect.name, err)
	}
	defer stmt.Close()

	for _, row := range table.Rows {
		args := make([]any, 0, len(stored)+1)
		args = append(args, row.Identity)
		for _, i := range stored {
			args = append(args, w.value(row.Values[i]))
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("%s: upsert %q: %w", w.dialect.name, row.Identity, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", w.dialect.name, err)
	}
	w.logger.Info("[storage] Upserted %d rows into %s.%s", len(table.Rows), w.dialect.name, TableName(table.Catalog))
	return nil
}

func (w *sqlWriter) upsertQuery(table *models.Table, stored []int) string {
	names := []string{"entity_name"}
	binds := []string{w.dialect.bind(1)}
	var cols []string
	for n, i := range stored {
		col := w.dialect.quote(table.Descriptors[i].Key)
		cols = append(cols, col)
		binds = append(binds, w.dialect.bind(n+2))
	}
	names = append(names, cols...)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) %s",
		w.dialect.quote(TableName(table.Catalog)), strings.Join(names, ", "), strings.Join(binds, ", "), w.dialect.upsert(cols))
}

func (w *sqlWriter) value(v any) any {
	if labels, ok := v.([]string); ok {
		return w.dialect.set(labels)
	}
	return v
}

// Count returns how many entities are stored for the catalog type.
func (w *sqlWriter) Count(cat models.CatalogType) (int, error) {
	var n int
	err := w.db.QueryRow("SELECT COUNT(*) FROM " + w.dialect.quote(TableName(cat))).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: count: %w", w.dialect.name, err)
	}
	return n, nil
}

func (w *sqlWriter) Close() error {
	return w.db.Close()
}
