package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"catalog-aggregator/models"
)

// CSVWriter writes the aggregate table to a CSV file: the ENTITY_NAME
// header followed by each descriptor's display name, rows in scrape order.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &CSVWriter{path: path, file: f, writer: csv.NewWriter(f)}, nil
}

// Write writes the header and every row of table. Null cells are empty.
func (c *CSVWriter) Write(table *models.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writer.Write(table.Header()); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	record := make([]string, len(table.Descriptors)+1)
	for _, row := range table.Rows {
		if len(row.Values) != len(table.Descriptors) {
			return fmt.Errorf("csv: row %q has %d values for %d columns",
				row.Identity, len(row.Values), len(table.Descriptors))
		}
		record[0] = row.Identity
		for i, v := range row.Values {
			record[i+1] = models.FormatValue(v)
		}
		if err := c.writer.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Path returns the file being written.
func (c *CSVWriter) Path() string { return c.path }

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
