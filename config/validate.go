package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"catalog-aggregator/catalog"
	"catalog-aggregator/models"
)

// Validate checks the invocation parameters that do not need the catalog.
// Backend and sink names are matched case-insensitively and normalised to
// lower case.
func (c *Config) Validate() error {
	if !strings.EqualFold(filepath.Ext(c.OutputPath), ".csv") || strings.TrimSuffix(filepath.Base(c.OutputPath), filepath.Ext(c.OutputPath)) == "" {
		return invalid("output path", fmt.Errorf("%w: %q", ErrOutputNotCSV, c.OutputPath))
	}
	if c.PageStart < 1 {
		return invalid("page start", fmt.Errorf("%w: got %d", ErrInvalidPageStart, c.PageStart))
	}
	if c.PageStop != 0 && c.PageStop <= c.PageStart {
		return invalid("page stop", fmt.Errorf("%w: %d <= %d", ErrInvalidPageStop, c.PageStop, c.PageStart))
	}
	if c.SleepSeconds < 0 {
		return invalid("sleep", fmt.Errorf("%w: %v", ErrInvalidSleep, c.SleepSeconds))
	}
	if c.TimeoutSeconds <= 0 {
		return invalid("timeout", fmt.Errorf("%w: %v", ErrInvalidTimeout, c.TimeoutSeconds))
	}
	if _, err := models.ParseGender(c.Gender); err != nil {
		return invalid("gender", err)
	}
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendChromedp, BackendRod:
	default:
		return invalid("backend", fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend))
	}
	c.Sink = strings.ToLower(strings.TrimSpace(c.Sink))
	switch c.Sink {
	case "", SinkNone, SinkPostgres, SinkMySQL, SinkSQLite:
	default:
		return invalid("sink", fmt.Errorf("%w: %q", ErrUnknownSink, c.Sink))
	}
	return nil
}

// Resolve looks the configured catalog type and descriptor list up in reg.
// An empty descriptor list selects the storage-eligible descriptors.
func (c *Config) Resolve(reg *catalog.Registry) (models.CatalogType, []models.ColumnDescriptor, error) {
	ct, descs, err := reg.Resolve(c.CatalogType, c.Descriptors)
	if err != nil {
		field := "descriptors"
		if errors.Is(err, catalog.ErrUnknownCatalogType) {
			field = "catalog type"
		}
		return models.CatalogType{}, nil, invalid(field, err)
	}
	return ct, descs, nil
}
