package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/garyjia/gst-billing/internal/application/port"
	"github.com/garyjia/gst-billing/internal/domain/billing"
	"github.com/garyjia/gst-billing/internal/domain/dashboard"
	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/garyjia/gst-billing/pkg/utils"
)

// ListQuery selects invoices for the list view
type ListQuery struct {
	Status string // all, draft, paid, overdue, unpaid
	Search string // case-insensitive match on customer name or invoice number
}

// GenerateResult is the outcome of issuing a final invoice
type GenerateResult struct {
	Invoice  *InvoiceView
	Document *Document
}

// InvoiceService authors, stores and exports invoices
type InvoiceService interface {
	Preview(ctx context.Context, input billing.InvoiceDraftInput) (*InvoiceView, error)
	SaveDraft(ctx context.Context, input billing.InvoiceDraftInput) (*InvoiceView, error)
	// Generate saves a final invoice, then exports its PDF. When only the export
	// fails the result still carries the saved invoice alongside an *entity.ExportError.
	Generate(ctx context.Context, input billing.InvoiceDraftInput) (*GenerateResult, error)
	List(ctx context.Context, query ListQuery) ([]*InvoiceView, error)
	Get(ctx context.Context, invoiceNo string) (*InvoiceView, error)
	NextInvoiceNo(ctx context.Context) (string, error)
	MarkPaid(ctx context.Context, invoiceNo string, paid bool) (*InvoiceView, error)
	Delete(ctx context.Context, invoiceNo string) error
	ExportPDF(ctx context.Context, invoiceNo string) (*Document, error)
	PreviewImage(ctx context.Context, invoiceNo string) (*Document, error)
	ShareText(ctx context.Context, invoiceNo string) (string, error)
}

type invoiceServiceImpl struct {
	invoiceRepo port.InvoiceRepository
	companyRepo port.CompanyRepository
	calculator  *billing.Calculator
	renderer    port.InvoiceRenderer
	previewer   port.PreviewRenderer
	storage     port.FileStorage
	calendar    Calendar
	logger      Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo port.InvoiceRepository,
	companyRepo port.CompanyRepository,
	calculator *billing.Calculator,
	renderer port.InvoiceRenderer,
	previewer port.PreviewRenderer,
	storage port.FileStorage,
	calendar Calendar,
	logger Logger,
) InvoiceService {
	return &invoiceServiceImpl{
		invoiceRepo: invoiceRepo,
		companyRepo: companyRepo,
		calculator:  calculator,
		renderer:    renderer,
		previewer:   previewer,
		storage:     storage,
		calendar:    calendar,
		logger:      logger,
	}
}

// compute fills in today's date when none was given and runs the calculation engine
func (s *invoiceServiceImpl) compute(input billing.InvoiceDraftInput) (*entity.Invoice, error) {
	if input.Date == (civil.Date{}) {
		input.Date = s.calendar.Today()
	} else if !input.Date.IsValid() {
		return nil, entity.NewValidationError("date", fmt.Sprintf("invalid invoice date %s", input.Date))
	}
	return s.calculator.Compute(input)
}

// requireComplete checks what a final invoice needs: a customer and at least one item
func requireComplete(inv *entity.Invoice) error {
	if inv.CustomerName == "" {
		return entity.NewValidationError("customerName", "please enter customer name")
	}
	if len(inv.Items) == 0 {
		return entity.NewValidationError("items", "please add at least one item")
	}
	return nil
}

// Preview computes the invoice as it would be issued next, without saving it
func (s *invoiceServiceImpl) Preview(ctx context.Context, input billing.InvoiceDraftInput) (*InvoiceView, error) {
	inv, err := s.compute(input)
	if err != nil {
		return nil, err
	}
	if err := requireComplete(inv); err != nil {
		return nil, err
	}

	next, err := s.invoiceRepo.NextNumber(ctx)
	if err != nil {
		return nil, err
	}
	inv.InvoiceNo = billing.FormatInvoiceNo(next)
	return NewInvoiceView(inv, s.calendar.Today()), nil
}

// SaveDraft stores an unfinished invoice; it needs a customer name or one complete item
func (s *invoiceServiceImpl) SaveDraft(ctx context.Context, input billing.InvoiceDraftInput) (*InvoiceView, error) {
	inv, err := s.compute(input)
	if err != nil {
		return nil, err
	}
	if inv.CustomerName == "" && len(inv.Items) == 0 {
		return nil, entity.NewValidationError("", "please add some invoice details before saving draft")
	}

	saved, err := s.invoiceRepo.Create(ctx, inv, true)
	if err != nil {
		s.logger.Error("Failed to save draft", "error", err)
		return nil, err
	}

	s.logger.Info("Draft saved", "invoice_no", saved.InvoiceNo, "customer", saved.CustomerName)
	return NewInvoiceView(saved, s.calendar.Today()), nil
}

// Generate issues a final invoice. The record is durable before the PDF is attempted.
func (s *invoiceServiceImpl) Generate(ctx context.Context, input billing.InvoiceDraftInput) (*GenerateResult, error) {
	inv, err := s.compute(input)
	if err != nil {
		return nil, err
	}
	if err := requireComplete(inv); err != nil {
		return nil, err
	}

	company, err := s.companyRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := s.invoiceRepo.Create(ctx, inv, false)
	if err != nil {
		s.logger.Error("Failed to save invoice", "error", err)
		return nil, err
	}

	today := s.calendar.Today()
	result := &GenerateResult{Invoice: NewInvoiceView(saved, today)}
	s.logger.Info("Invoice saved",
		"invoice_no", saved.InvoiceNo,
		"customer", saved.CustomerName,
		"grand_total", saved.GrandTotal.StringFixed(2))

	doc, err := s.exportPDF(ctx, saved, company, today)
	if err != nil {
		s.logger.Error("Invoice saved but PDF export failed", "invoice_no", saved.InvoiceNo, "error", err)
		return result, &entity.ExportError{InvoiceNo: saved.InvoiceNo, Saved: true, Err: err}
	}
	result.Document = doc
	return result, nil
}

// exportPDF renders the invoice and files a copy in the month folder of the output directory
func (s *invoiceServiceImpl) exportPDF(ctx context.Context, inv *entity.Invoice, company *entity.CompanyProfile, today civil.Date) (*Document, error) {
	content, err := s.renderer.Render(ctx, inv, company)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	name := billing.InvoiceFileName(inv, today)
	rel := billing.ArchivePath(today, name)
	if err := s.storage.Save(ctx, rel, content); err != nil {
		return nil, fmt.Errorf("write %s: %w", name, err)
	}

	s.logger.Info("Invoice PDF exported", "invoice_no", inv.InvoiceNo, "file", name)
	return &Document{
		FileName:    name,
		ContentType: ContentTypePDF,
		Content:     content,
		SavedPath:   s.storage.GetFullPath(rel),
	}, nil
}

// List returns invoices newest first, filtered by derived status and search text
func (s *invoiceServiceImpl) List(ctx context.Context, query ListQuery) ([]*InvoiceView, error) {
	status, err := entity.ParseStatusFilter(strings.ToLower(strings.TrimSpace(query.Status)))
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	today := s.calendar.Today()
	search := strings.ToLower(strings.TrimSpace(query.Search))

	views := make([]*InvoiceView, 0, len(invoices))
	for _, inv := range dashboard.SortByDateDesc(invoices) {
		view := NewInvoiceView(inv, today)
		if status != entity.StatusFilterAll && string(view.Status) != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(inv.CustomerName), search) &&
			!strings.Contains(strings.ToLower(inv.InvoiceNo), search) {
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

// Get finds one invoice by number ("#00003" or "00003")
func (s *invoiceServiceImpl) Get(ctx context.Context, invoiceNo string) (*InvoiceView, error) {
	inv, err := s.find(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	return NewInvoiceView(inv, s.calendar.Today()), nil
}

func (s *invoiceServiceImpl) find(ctx context.Context, invoiceNo string) (*entity.Invoice, error) {
	return s.invoiceRepo.Find(ctx, billing.NormalizeInvoiceNo(invoiceNo))
}

// NextInvoiceNo returns the number the next saved invoice will receive
func (s *invoiceServiceImpl) NextInvoiceNo(ctx context.Context) (string, error) {
	next, err := s.invoiceRepo.NextNumber(ctx)
	if err != nil {
		return "", err
	}
	return billing.FormatInvoiceNo(next), nil
}

// MarkPaid sets or clears the paid flag
func (s *invoiceServiceImpl) MarkPaid(ctx context.Context, invoiceNo string, paid bool) (*InvoiceView, error) {
	inv, err := s.invoiceRepo.SetPaid(ctx, billing.NormalizeInvoiceNo(invoiceNo), paid)
	if err != nil {
		if !errors.Is(err, entity.ErrInvoiceNotFound) {
			s.logger.Error("Failed to update paid flag", "invoice_no", invoiceNo, "error", err)
		}
		return nil, err
	}
	return NewInvoiceView(inv, s.calendar.Today()), nil
}

// Delete removes an invoice; its number is never handed out again
func (s *invoiceServiceImpl) Delete(ctx context.Context, invoiceNo string) error {
	if err := s.invoiceRepo.Delete(ctx, billing.NormalizeInvoiceNo(invoiceNo)); err != nil {
		if !errors.Is(err, entity.ErrInvoiceNotFound) {
			s.logger.Error("Failed to delete invoice", "invoice_no", invoiceNo, "error", err)
		}
		return err
	}
	return nil
}

// ExportPDF renders a stored invoice again
func (s *invoiceServiceImpl) ExportPDF(ctx context.Context, invoiceNo string) (*Document, error) {
	inv, err := s.find(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := s.exportPDF(ctx, inv, company, s.calendar.Today())
	if err != nil {
		s.logger.Error("PDF export failed", "invoice_no", inv.InvoiceNo, "error", err)
		return nil, &entity.ExportError{InvoiceNo: inv.InvoiceNo, Saved: true, Err: err}
	}
	return doc, nil
}

// PreviewImage renders page 1 of a stored invoice as PNG
func (s *invoiceServiceImpl) PreviewImage(ctx context.Context, invoiceNo string) (*Document, error) {
	inv, err := s.find(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	pdf, err := s.renderer.Render(ctx, inv, company)
	if err == nil {
		var png []byte
		if png, err = s.previewer.RenderPNG(ctx, pdf); err == nil {
			name := strings.TrimSuffix(billing.InvoiceFileName(inv, s.calendar.Today()), ".pdf") + ".png"
			return &Document{FileName: name, ContentType: ContentTypePNG, Content: png}, nil
		}
	}

	s.logger.Error("Preview rendering failed", "invoice_no", inv.InvoiceNo, "error", err)
	return nil, &entity.ExportError{InvoiceNo: inv.InvoiceNo, Saved: true, Err: err}
}

// ShareText is the plain-text summary handed to messaging apps
func (s *invoiceServiceImpl) ShareText(ctx context.Context, invoiceNo string) (string, error) {
	inv, err := s.find(ctx, invoiceNo)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Invoice %s\nCustomer: %s\nAmount: %s\nDate: %s",
		inv.InvoiceNo,
		inv.CustomerName,
		utils.FormatINR(inv.GrandTotal),
		utils.FormatDate(inv.Date)), nil
}
