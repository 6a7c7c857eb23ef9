package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nemreader.toml")
	contents := `
log_level = "debug"
hourly = true
database_path = "/tmp/readings.db"
apply_events = true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		LogLevel:     "debug",
		OutputDir:    "output",
		Hourly:       true,
		DatabasePath: "/tmp/readings.db",
		ApplyEvents:  true,
	}, cfg)
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	for name, contents := range map[string]string{
		"unknown.toml": `output_directory = "out"`,
		"level.toml":   `log_level = "loud"`,
		"syntax.toml":  `hourly = `,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
		_, err := Load(path)
		assert.Error(t, err, name)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nemreader.toml")
	cfg := Default()
	cfg.RequireEndOfData = true
	cfg.OutputDir = "/var/lib/nemreader"
	require.NoError(t, Write(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
