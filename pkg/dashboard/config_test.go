package dashboard

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "countries.geo.json", cfg.Boundaries.URL)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, []string{"#ffc0cb", "#ff00ff", "#ff0000"}, cfg.Map.Colors)
	assert.Equal(t, "#ffe1ff", cfg.Chart.Color)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataset:
  url: https://example.org/risk.csv
fetch:
  timeout: 5s
map:
  colors: ["#ffffff", "#000000"]
`), 0o600))

	t.Setenv("DASHBOARD_HTTP_ADDR", "127.0.0.1:9000")

	cfg, err := LoadConfig(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/risk.csv", cfg.Dataset.URL)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, []string{"#ffffff", "#000000"}, cfg.Map.Colors)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
}

func TestLoadConfigInvalid(t *testing.T) {
	v := NewViper()
	v.Set("map.colors", []string{"#fff"})
	v.Set("log.format", "xml")
	v.Set("dataset.url", "")

	_, err := LoadConfig(v, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "map.colors")
	assert.Contains(t, err.Error(), "log.format")
	assert.Contains(t, err.Error(), "dataset.url")

	_, err = LoadConfig(NewViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}
