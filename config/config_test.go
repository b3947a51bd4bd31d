package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-aggregator/catalog"
)

func validConfig() *Config {
	return &Config{
		OutputPath:     "./output/running.csv",
		CatalogType:    "running-shoes",
		Gender:         "women",
		PageStart:      1,
		SleepSeconds:   0.5,
		TimeoutSeconds: 10,
		Backend:        BackendChromedp,
		Sink:           SinkNone,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SLEEP_SECONDS", "")
	t.Setenv("PAGE_STOP", "")
	t.Setenv("DESCRIPTORS", " brand, ,weight ")

	cfg := Load()
	assert.Equal(t, 500*time.Millisecond, cfg.Sleep())
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, 0, cfg.PageStop)
	assert.Equal(t, []string{"brand", "weight"}, cfg.Descriptors)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("OUTPUT_PATH", "/tmp/x.csv")
	t.Setenv("PAGE_START", "3")
	t.Setenv("PAGE_STOP", "7")
	t.Setenv("SLEEP_SECONDS", "1.25")
	t.Setenv("HEADLESS", "false")
	t.Setenv("BACKEND", "rod")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := Load()
	assert.Equal(t, "/tmp/x.csv", cfg.OutputPath)
	assert.Equal(t, 3, cfg.PageStart)
	assert.Equal(t, 7, cfg.PageStop)
	assert.Equal(t, 1250*time.Millisecond, cfg.Sleep())
	assert.False(t, cfg.Headless)
	assert.Equal(t, BackendRod, cfg.Backend)
	assert.Equal(t, 3, cfg.MaxRetries, "unparsable values fall back to the default")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
		want   error
	}{
		{"not csv", func(c *Config) { c.OutputPath = "out.json" }, "output path", ErrOutputNotCSV},
		{"no extension", func(c *Config) { c.OutputPath = "out" }, "output path", ErrOutputNotCSV},
		{"bare extension", func(c *Config) { c.OutputPath = "dir/.csv" }, "output path", ErrOutputNotCSV},
		{"page start zero", func(c *Config) { c.PageStart = 0 }, "page start", ErrInvalidPageStart},
		{"page stop before start", func(c *Config) { c.PageStart, c.PageStop = 4, 2 }, "page stop", ErrInvalidPageStop},
		{"negative sleep", func(c *Config) { c.SleepSeconds = -1 }, "sleep", ErrInvalidSleep},
		{"zero timeout", func(c *Config) { c.TimeoutSeconds = 0 }, "timeout", ErrInvalidTimeout},
		{"backend", func(c *Config) { c.Backend = "selenium" }, "backend", ErrUnknownBackend},
		{"sink", func(c *Config) { c.Sink = "mongodb" }, "sink", ErrUnknownSink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateNormalisesBackendAndSink(t *testing.T) {
	cfg := validConfig()
	cfg.Backend = "Rod"
	cfg.Sink = " SQLite "

	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendRod, cfg.Backend)
	assert.Equal(t, SinkSQLite, cfg.Sink)
}

func TestValidateGender(t *testing.T) {
	cfg := validConfig()
	cfg.Gender = "kids"

	var verr *ValidationError
	require.True(t, errors.As(cfg.Validate(), &verr))
	assert.Equal(t, "gender", verr.Field)
}

func TestValidateAcceptsUpperCaseCSV(t *testing.T) {
	cfg := validConfig()
	cfg.OutputPath = "OUT.CSV"
	cfg.PageStop = 5
	assert.NoError(t, cfg.Validate())
}

func TestResolve(t *testing.T) {
	reg, err := catalog.Load()
	require.NoError(t, err)

	cfg := validConfig()
	cfg.Descriptors = []string{"msrp", "brand"}
	ct, descs, err := cfg.Resolve(reg)
	require.NoError(t, err)
	assert.Equal(t, "running-shoes", ct.Name)
	require.Len(t, descs, 2)
	assert.Equal(t, "msrp", descs[0].Key)

	cfg.Descriptors = []string{"downturn"}
	_, _, err = cfg.Resolve(reg)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "descriptors", verr.Field)
	assert.ErrorIs(t, err, catalog.ErrUnavailableDescriptor)

	cfg.CatalogType = "ski-boots"
	_, _, err = cfg.Resolve(reg)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "catalog type", verr.Field)
}
