package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration, layered from
// defaults, then an optional YAML file, then environment variables
// (TP_ prefix) taking precedence.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Sources SourcesConfig `yaml:"sources" envconfig:"SOURCES"`
	Fetch   FetchConfig   `yaml:"fetch" envconfig:"FETCH"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// SheetConfig addresses one source tab.
type SheetConfig struct {
	SpreadsheetID string `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID" validate:"required"`
	GID           string `yaml:"gid" envconfig:"GID"`
	SheetTitle    string `yaml:"sheet_title" envconfig:"SHEET_TITLE"`
}

// SourcesConfig describes the three source tabs and the cleaning choices
// the sources leave open.
type SourcesConfig struct {
	Catalog   SheetConfig `yaml:"catalog" envconfig:"CATALOG"`
	Orders    SheetConfig `yaml:"orders" envconfig:"ORDERS"`
	Customers SheetConfig `yaml:"customers" envconfig:"CUSTOMERS"`

	// APIKey switches fetching from the CSV export endpoint to the
	// Sheets API. Tabs then need sheet_title set.
	APIKey string `yaml:"api_key" envconfig:"API_KEY"`

	// CustomerDedupKey picks the customer natural key: customer_id
	// (canonical) or company_name (legacy exports).
	CustomerDedupKey string `yaml:"customer_dedup_key" envconfig:"CUSTOMER_DEDUP_KEY" validate:"oneof=customer_id company_name"`

	// UnknownCityBucket exposes "(unknown)" as a selectable city so
	// orders with unmatched customers are reachable through filters.
	UnknownCityBucket bool `yaml:"unknown_city_bucket" envconfig:"UNKNOWN_CITY_BUCKET"`
}

// FetchConfig controls the fetch layer.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	RetryWait time.Duration `yaml:"retry_wait" envconfig:"RETRY_WAIT"`
	CacheTTL  time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL"`
}

// Defaults returns the baseline configuration the YAML file and
// environment layer on top of.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    50,
			RateLimitBurst:  25,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/trainpulse.log",
		},
		Sources: SourcesConfig{
			CustomerDedupKey: "customer_id",
		},
		Fetch: FetchConfig{
			Timeout:   30 * time.Second,
			RetryWait: 2 * time.Second,
			CacheTTL:  5 * time.Minute,
		},
	}
}

// Load builds the configuration: defaults first, then the YAML file
// (path from TP_CONFIG_FILE, config.yaml if present), then environment
// overrides, then validation.
func Load() (*Config, error) {
	cfg := Defaults()

	path := os.Getenv("TP_CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := envconfig.Process("TP", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural constraints. Spreadsheet IDs are required;
// a tab needs either a GID (CSV export path) or a sheet title (API
// path).
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	tabs := map[string]SheetConfig{
		"catalog":   c.Sources.Catalog,
		"orders":    c.Sources.Orders,
		"customers": c.Sources.Customers,
	}
	for name, tab := range tabs {
		if c.Sources.APIKey != "" {
			if tab.SheetTitle == "" {
				return fmt.Errorf("config validation failed: sources.%s.sheet_title required when api_key is set", name)
			}
		} else if tab.GID == "" {
			return fmt.Errorf("config validation failed: sources.%s.gid required for CSV export fetch", name)
		}
	}
	return nil
}
