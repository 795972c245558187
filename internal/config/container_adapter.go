package config

import (
	"github.com/garyjia/gst-billing/internal/container"
	"github.com/garyjia/gst-billing/internal/domain/dashboard"
	"github.com/shopspring/decimal"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		Storage: container.StorageConfig{
			OutputDir: c.Storage.OutputDir,
		},
		Billing: container.BillingConfig{
			Location:          c.Location(),
			DefaultGSTPercent: decimal.NewFromFloat(c.Billing.DefaultGSTPercent),
			DefaultWindow:     dashboard.ParseWindow(c.Billing.DefaultFilter),
			RecentLimit:       c.Billing.RecentLimit,
			LogoMaxPx:         c.Billing.LogoMaxPx,
			PreviewDPI:        c.Billing.PreviewDPI,
			PreviewMaxWidth:   c.Billing.PreviewMaxWidth,
		},
	}
}
