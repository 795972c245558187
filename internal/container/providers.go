package container

import (
	"fmt"

	"github.com/garyjia/gst-billing/internal/application/port"
	"github.com/garyjia/gst-billing/internal/application/service"
	"github.com/garyjia/gst-billing/internal/domain/billing"
	"github.com/garyjia/gst-billing/internal/domain/dashboard"
	"github.com/garyjia/gst-billing/internal/infrastructure/export"
	"github.com/garyjia/gst-billing/internal/infrastructure/persistence/repository"
	"github.com/garyjia/gst-billing/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/gst-billing/internal/infrastructure/storage"
	"github.com/garyjia/gst-billing/pkg/database"
	"github.com/garyjia/gst-billing/pkg/utils"
	"go.uber.org/zap"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	Conn  *database.DB
	TxMgr *sqlite.DB
	Slots *sqlite.SlotStore
}

// ExportBundle holds the document generators.
type ExportBundle struct {
	Renderer  port.InvoiceRenderer
	Previewer port.PreviewRenderer
	Register  port.RegisterWriter
	Logos     port.LogoProcessor
}

// ServiceDeps carries what the application services are built from.
type ServiceDeps struct {
	Repos    *RepositoryBundle
	Exports  *ExportBundle
	Storage  port.FileStorage
	Billing  *BillingConfig
	Calendar service.Calendar
	Logger   *zap.Logger
}

// ProvideDatabase opens the SQLite file, applies the embedded migrations and
// wraps the connection in the tx-aware slot store.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	conn, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(conn, logger).RunMigrations(database.Migrations()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	txMgr := sqlite.NewDB(conn.DB, logger)
	return &DatabaseBundle{
		Conn:  conn,
		TxMgr: txMgr,
		Slots: sqlite.NewSlotStore(txMgr, utils.ForComponent(logger, "slots")),
	}, nil
}

// ProvideRepositories creates the invoice store, company repository and resetter.
func ProvideRepositories(slots *sqlite.SlotStore, logger *zap.Logger) (*RepositoryBundle, error) {
	if slots == nil {
		return nil, fmt.Errorf("slot store is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Invoice:  repository.NewInvoiceRepository(slots, utils.ForComponent(logger, "invoice_store")),
		Company:  repository.NewCompanyRepository(slots, utils.ForComponent(logger, "company_store")),
		Resetter: repository.NewStateResetter(slots, utils.ForComponent(logger, "reset")),
	}, nil
}

// ProvideStorage creates the export directory storage.
func ProvideStorage(cfg *StorageConfig, logger *zap.Logger) (port.FileStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	return storage.NewLocalFileStorage(cfg.OutputDir, utils.ForComponent(logger, "file_storage")), nil
}

// ProvideExporters creates the PDF, PNG, XLSX and logo components.
func ProvideExporters(cfg *BillingConfig, logger *zap.Logger) (*ExportBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("billing config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &ExportBundle{
		Renderer:  export.NewPDFRenderer(utils.ForComponent(logger, "pdf")),
		Previewer: export.NewPreviewRenderer(cfg.PreviewDPI, cfg.PreviewMaxWidth, utils.ForComponent(logger, "preview")),
		Register:  export.NewRegisterWriter(utils.ForComponent(logger, "register")),
		Logos:     export.NewLogoProcessor(cfg.LogoMaxPx, utils.ForComponent(logger, "logo")),
	}, nil
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil || deps.Exports == nil || deps.Billing == nil {
		return nil, fmt.Errorf("service dependencies are incomplete")
	}
	if deps.Storage == nil {
		return nil, fmt.Errorf("file storage is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	log := func(component string) service.Logger {
		return &zapLoggerAdapter{logger: utils.ForComponent(deps.Logger, component)}
	}

	calculator := billing.NewCalculator(deps.Billing.DefaultGSTPercent)
	aggregator := dashboard.NewAggregator(deps.Billing.RecentLimit)

	return &ServiceBundle{
		Invoice: service.NewInvoiceService(
			deps.Repos.Invoice,
			deps.Repos.Company,
			calculator,
			deps.Exports.Renderer,
			deps.Exports.Previewer,
			deps.Storage,
			deps.Calendar,
			log("invoice_service"),
		),
		Company:   service.NewCompanyService(deps.Repos.Company, deps.Exports.Logos, log("company_service")),
		Dashboard: service.NewDashboardService(deps.Repos.Invoice, aggregator, deps.Exports.Register, deps.Calendar, log("dashboard_service")),
		Reset:     service.NewResetService(deps.Repos.Resetter, log("reset_service")),
	}, nil
}
