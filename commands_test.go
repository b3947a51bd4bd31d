package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-aggregator/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		OutputPath:     filepath.Join(t.TempDir(), "out.csv"),
		CatalogType:    "running-shoes",
		Gender:         "none",
		PageStart:      1,
		SleepSeconds:   0.5,
		TimeoutSeconds: 10,
		BaseURL:        "https://example.test",
		Backend:        config.BackendChromedp,
		Sink:           config.SinkNone,
		LogLevel:       "error",
	}
}

func execute(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(cfg)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCatalogsListsTypes(t *testing.T) {
	out, err := execute(t, testConfig(t), "catalogs")
	require.NoError(t, err)
	assert.Contains(t, out, "running-shoes")
	assert.Contains(t, out, "track-and-field-shoes")
}

func TestCatalogsShowsDescriptors(t *testing.T) {
	out, err := execute(t, testConfig(t), "catalogs", "climbing-shoes")
	require.NoError(t, err)
	assert.Contains(t, out, "downturn")
	assert.Contains(t, out, "MSRP (USD)")
	assert.Contains(t, out, "currency")
}

func TestCatalogsUnknownType(t *testing.T) {
	_, err := execute(t, testConfig(t), "catalogs", "ski-boots")
	assert.Error(t, err)
}

func TestScrapeValidatesBeforeLaunching(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{"output not csv", []string{"scrape", "-o", "out.json"}, "output path"},
		{"page start", []string{"scrape", "--start", "0"}, "page start"},
		{"unknown type", []string{"scrape", "-t", "ski-boots"}, "catalog type"},
		{"foreign descriptor", []string{"scrape", "-d", "brand,downturn"}, "descriptors"},
		{"gender", []string{"scrape", "-g", "kids"}, "gender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			_, err := execute(t, cfg, tt.args...)

			var verr *config.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)

			_, statErr := os.Stat(cfg.OutputPath)
			assert.True(t, os.IsNotExist(statErr), "no output is written on a validation failure")
		})
	}
}

func TestScrapeKeepsPreviousOutputWhenBrowserFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.ChromeBin = filepath.Join(t.TempDir(), "no-such-chrome")
	previous := []byte("ENTITY_NAME,Brand\nShoe A,Hoka\n")
	require.NoError(t, os.WriteFile(cfg.OutputPath, previous, 0o644))

	_, err := execute(t, cfg, "scrape", "--stop", "2")
	require.Error(t, err)

	got, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, previous, got)
}
