// Package container provides dependency injection and lifecycle management
// for the GST billing service and CLI.
package container

import (
	"fmt"
	"time"

	"github.com/garyjia/gst-billing/internal/domain/dashboard"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the Container.
type Config struct {
	Database DatabaseConfig
	Storage  StorageConfig
	Billing  BillingConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// StorageConfig holds export settings.
type StorageConfig struct {
	// OutputDir receives every exported invoice PDF, one folder per month
	OutputDir string
}

// BillingConfig holds invoicing behaviour.
type BillingConfig struct {
	// Location decides what "today" is for overdue checks and dashboard windows
	Location          *time.Location
	DefaultGSTPercent decimal.Decimal
	DefaultWindow     dashboard.Window
	RecentLimit       int
	LogoMaxPx         int
	PreviewDPI        float64
	PreviewMaxWidth   int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "data/gst_billing.db",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Storage: StorageConfig{
			OutputDir: "invoices",
		},
		Billing: BillingConfig{
			Location:          time.Local,
			DefaultGSTPercent: decimal.NewFromInt(18),
			DefaultWindow:     dashboard.DefaultWindow,
			RecentLimit:       dashboard.DefaultRecentLimit,
			LogoMaxPx:         512,
			PreviewDPI:        110,
			PreviewMaxWidth:   1240,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.OutputDir == "" {
		return fmt.Errorf("storage.output_dir is required")
	}
	if c.Billing.Location == nil {
		return fmt.Errorf("billing location is required")
	}
	if c.Billing.DefaultGSTPercent.IsNegative() || c.Billing.DefaultGSTPercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("default GST percent must be within 0-100")
	}
	return nil
}
