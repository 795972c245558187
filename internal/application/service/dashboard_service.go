package service

import (
	"context"

	"github.com/garyjia/gst-billing/internal/application/port"
	"github.com/garyjia/gst-billing/internal/domain/billing"
	"github.com/garyjia/gst-billing/internal/domain/dashboard"
)

// DashboardSummary is the aggregated view with derived statuses on the recent rows
type DashboardSummary struct {
	dashboard.Summary
	Recent []*InvoiceView `json:"recent"`
}

// DashboardService computes period totals and the invoice register
type DashboardService interface {
	Summary(ctx context.Context, filter dashboard.Filter) (*DashboardSummary, error)
	// Register builds an XLSX of the invoices inside the filter window
	Register(ctx context.Context, filter dashboard.Filter) (*Document, error)
}

type dashboardServiceImpl struct {
	invoiceRepo port.InvoiceRepository
	aggregator  *dashboard.Aggregator
	register    port.RegisterWriter
	calendar    Calendar
	logger      Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	invoiceRepo port.InvoiceRepository,
	aggregator *dashboard.Aggregator,
	register port.RegisterWriter,
	calendar Calendar,
	logger Logger,
) DashboardService {
	return &dashboardServiceImpl{
		invoiceRepo: invoiceRepo,
		aggregator:  aggregator,
		register:    register,
		calendar:    calendar,
		logger:      logger,
	}
}

func (s *dashboardServiceImpl) Summary(ctx context.Context, filter dashboard.Filter) (*DashboardSummary, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.calendar.Time()
	today := s.calendar.Today()
	summary := s.aggregator.Aggregate(invoices, filter, now)

	recent := make([]*InvoiceView, 0, len(summary.Recent))
	for _, inv := range summary.Recent {
		recent = append(recent, NewInvoiceView(inv, today))
	}
	return &DashboardSummary{Summary: summary, Recent: recent}, nil
}

func (s *dashboardServiceImpl) Register(ctx context.Context, filter dashboard.Filter) (*Document, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	selected := dashboard.SortByDateDesc(dashboard.Select(invoices, filter, s.calendar.Time()))
	today := s.calendar.Today()

	content, err := s.register.Write(ctx, selected, today)
	if err != nil {
		s.logger.Error("Failed to build invoice register", "error", err)
		return nil, err
	}

	s.logger.Info("Invoice register built", "window", string(filter.Window), "invoices", len(selected))
	return &Document{
		FileName:    billing.RegisterFileName(today),
		ContentType: ContentTypeXLSX,
		Content:     content,
	}, nil
}
