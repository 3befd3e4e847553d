package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// validConfig is a minimal CSV-export configuration for tests to mutate.
func validConfig() Config {
	cfg := Defaults()
	cfg.Sources.Catalog = SheetConfig{SpreadsheetID: "sheet1", GID: "0"}
	cfg.Sources.Orders = SheetConfig{SpreadsheetID: "sheet1", GID: "1"}
	cfg.Sources.Customers = SheetConfig{SpreadsheetID: "sheet1", GID: "2"}
	return cfg
}

func TestLoad_FromYAML(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9999
sources:
  catalog:
    spreadsheet_id: sheet1
    gid: "0"
  orders:
    spreadsheet_id: sheet1
    gid: "1"
  customers:
    spreadsheet_id: sheet1
    gid: "2"
`)
	t.Setenv("TP_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "sheet1", cfg.Sources.Orders.SpreadsheetID)
	assert.Equal(t, "1", cfg.Sources.Orders.GID)

	// Untouched fields keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Fetch.CacheTTL)
	assert.Equal(t, "customer_id", cfg.Sources.CustomerDedupKey)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9999
sources:
  catalog:
    spreadsheet_id: sheet1
    gid: "0"
  orders:
    spreadsheet_id: sheet1
    gid: "1"
  customers:
    spreadsheet_id: sheet1
    gid: "2"
`)
	t.Setenv("TP_CONFIG_FILE", path)
	t.Setenv("TP_SERVER_PORT", "7070")
	t.Setenv("TP_SOURCES_ORDERS_GID", "42")
	t.Setenv("TP_FETCH_CACHE_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "42", cfg.Sources.Orders.GID)
	assert.Equal(t, 90*time.Second, cfg.Fetch.CacheTTL)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TP_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("TP_SOURCES_CATALOG_SPREADSHEET_ID", "sheet1")
	t.Setenv("TP_SOURCES_CATALOG_GID", "0")
	t.Setenv("TP_SOURCES_ORDERS_SPREADSHEET_ID", "sheet1")
	t.Setenv("TP_SOURCES_ORDERS_GID", "1")
	t.Setenv("TP_SOURCES_CUSTOMERS_SPREADSHEET_ID", "sheet1")
	t.Setenv("TP_SOURCES_CUSTOMERS_GID", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not a mapping")
	t.Setenv("TP_CONFIG_FILE", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid csv export config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid api config",
			mutate: func(c *Config) {
				c.Sources.APIKey = "key"
				c.Sources.Catalog = SheetConfig{SpreadsheetID: "sheet1", SheetTitle: "Catalog"}
				c.Sources.Orders = SheetConfig{SpreadsheetID: "sheet1", SheetTitle: "Orders"}
				c.Sources.Customers = SheetConfig{SpreadsheetID: "sheet1", SheetTitle: "Customers"}
			},
		},
		{
			name: "missing spreadsheet id",
			mutate: func(c *Config) {
				c.Sources.Orders.SpreadsheetID = ""
			},
			wantErr: "config validation failed",
		},
		{
			name: "gid required without api key",
			mutate: func(c *Config) {
				c.Sources.Customers.GID = ""
			},
			wantErr: "customers.gid required",
		},
		{
			name: "sheet title required with api key",
			mutate: func(c *Config) {
				c.Sources.APIKey = "key"
			},
			wantErr: "sheet_title required when api_key is set",
		},
		{
			name: "bad customer dedup key",
			mutate: func(c *Config) {
				c.Sources.CustomerDedupKey = "email"
			},
			wantErr: "config validation failed",
		},
		{
			name: "bad log level",
			mutate: func(c *Config) {
				c.Logging.Level = "trace"
			},
			wantErr: "config validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
