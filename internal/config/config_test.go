package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/gst_billing.db", cfg.Database.Path)
	assert.Equal(t, 1, cfg.Database.MaxOpenConns)
	assert.Equal(t, "invoices", cfg.Storage.OutputDir)
	assert.Equal(t, "Asia/Kolkata", cfg.Billing.Timezone)
	assert.Equal(t, 18.0, cfg.Billing.DefaultGSTPercent)
	assert.Equal(t, "30days", cfg.Billing.DefaultFilter)
	assert.Equal(t, 5, cfg.Billing.RecentLimit)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeFile(t, filepath.Join(dir, "configs", "config.yaml"), `
server:
  port: 9090
  read_timeout: 5s
database:
  path: /tmp/from-file.db
billing:
  default_gst_percent: 12
  default_filter: 7days
logger:
  level: debug
`)
	writeFile(t, filepath.Join(dir, ".env"), "GST_OUTPUT_DIR=/srv/exports\n")
	t.Setenv("GST_DB_PATH", "/tmp/from-env.db")
	t.Setenv("GST_BILLING_RECENT_LIMIT", "8")
	t.Cleanup(func() { os.Unsetenv("GST_OUTPUT_DIR") })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/tmp/from-env.db", cfg.Database.Path)
	assert.Equal(t, "/srv/exports", cfg.Storage.OutputDir)
	assert.Equal(t, 12.0, cfg.Billing.DefaultGSTPercent)
	assert.Equal(t, "7days", cfg.Billing.DefaultFilter)
	assert.Equal(t, 8, cfg.Billing.RecentLimit)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("missing.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "bad.yaml")
	writeFile(t, path, "billing:\n  default_filter: yesterday\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "billing.default_filter")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Path: "x.db"},
			Storage:  StorageConfig{OutputDir: "out"},
			Billing: BillingConfig{
				Timezone:          "UTC",
				DefaultGSTPercent: 18,
				DefaultFilter:     "30days",
				RecentLimit:       5,
				LogoMaxPx:         512,
				PreviewDPI:        96,
			},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"no database path", func(c *Config) { c.Database.Path = "" }},
		{"no output dir", func(c *Config) { c.Storage.OutputDir = "" }},
		{"unknown timezone", func(c *Config) { c.Billing.Timezone = "Mars/Olympus" }},
		{"negative gst", func(c *Config) { c.Billing.DefaultGSTPercent = -1 }},
		{"gst over 100", func(c *Config) { c.Billing.DefaultGSTPercent = 101 }},
		{"unknown filter", func(c *Config) { c.Billing.DefaultFilter = "90days" }},
		{"recent limit", func(c *Config) { c.Billing.RecentLimit = 0 }},
		{"logo size", func(c *Config) { c.Billing.LogoMaxPx = 0 }},
		{"preview dpi", func(c *Config) { c.Billing.PreviewDPI = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
