package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata" // billing.timezone must resolve on hosts without a zoneinfo database

	"github.com/garyjia/gst-billing/internal/domain/dashboard"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// DefaultConfigPath is read when no --config flag is given; a missing file is not an error
const DefaultConfigPath = "configs/config.yaml"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Billing  BillingConfig  `mapstructure:"billing"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// StorageConfig holds export file configuration
type StorageConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// BillingConfig holds invoicing and dashboard behaviour
type BillingConfig struct {
	Timezone          string  `mapstructure:"timezone"`
	DefaultGSTPercent float64 `mapstructure:"default_gst_percent"`
	DefaultFilter     string  `mapstructure:"default_filter"`
	RecentLimit       int     `mapstructure:"recent_limit"`
	LogoMaxPx         int     `mapstructure:"logo_max_px"`
	PreviewDPI        float64 `mapstructure:"preview_dpi"`
	PreviewMaxWidth   int     `mapstructure:"preview_max_width"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads .env, the YAML config file and GST_* environment variables, in
// increasing order of precedence. An empty configPath falls back to
// DefaultConfigPath and tolerates its absence.
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	optional := configPath == ""
	if optional {
		configPath = DefaultConfigPath
	}
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if !optional || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	// A single connection serializes every read-modify-write of the slots
	v.SetDefault("database.path", "data/gst_billing.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 0)

	v.SetDefault("storage.output_dir", "invoices")

	// Billing defaults
	v.SetDefault("billing.timezone", "Asia/Kolkata")
	v.SetDefault("billing.default_gst_percent", 18)
	v.SetDefault("billing.default_filter", string(dashboard.DefaultWindow))
	v.SetDefault("billing.recent_limit", dashboard.DefaultRecentLimit)
	v.SetDefault("billing.logo_max_px", 512)
	v.SetDefault("billing.preview_dpi", 110)
	v.SetDefault("billing.preview_max_width", 1240)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "console")
}

// bindEnvVars binds the short environment names on top of the GST_<SECTION>_<KEY> ones
func bindEnvVars(v *viper.Viper) error {
	bindings := [][2]string{
		{"database.path", "GST_DB_PATH"},
		{"storage.output_dir", "GST_OUTPUT_DIR"},
		{"logger.level", "GST_LOG_LEVEL"},
		{"billing.timezone", "GST_TIMEZONE"},
		{"server.port", "GST_PORT"},
	}
	for _, b := range bindings {
		if err := v.BindEnv(b[0], "GST_"+strings.ToUpper(strings.ReplaceAll(b[0], ".", "_")), b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[1], err)
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Storage.OutputDir == "" {
		return fmt.Errorf("storage.output_dir is required")
	}

	if _, err := time.LoadLocation(c.Billing.Timezone); err != nil {
		return fmt.Errorf("billing.timezone %q: %w", c.Billing.Timezone, err)
	}
	if c.Billing.DefaultGSTPercent < 0 || c.Billing.DefaultGSTPercent > 100 {
		return fmt.Errorf("billing.default_gst_percent must be within 0-100, got %v", c.Billing.DefaultGSTPercent)
	}
	if !dashboard.IsKnownWindow(c.Billing.DefaultFilter) {
		return fmt.Errorf("billing.default_filter %q is not one of today, 7days, 30days, custom", c.Billing.DefaultFilter)
	}
	if c.Billing.RecentLimit <= 0 {
		return fmt.Errorf("billing.recent_limit must be positive")
	}
	if c.Billing.LogoMaxPx <= 0 {
		return fmt.Errorf("billing.logo_max_px must be positive")
	}
	if c.Billing.PreviewDPI <= 0 {
		return fmt.Errorf("billing.preview_dpi must be positive")
	}

	return nil
}

// Location returns the business time zone. Call after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Billing.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
