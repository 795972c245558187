package service

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/garyjia/gst-billing/internal/domain/billing"
	"github.com/garyjia/gst-billing/internal/domain/entity"
)

// mockInvoiceRepo keeps invoices in memory unless a func field overrides the call
type mockInvoiceRepo struct {
	invoices []*entity.Invoice
	next     int64

	createFunc     func(ctx context.Context, inv *entity.Invoice, isDraft bool) (*entity.Invoice, error)
	listFunc       func(ctx context.Context) ([]*entity.Invoice, error)
	setPaidFunc    func(ctx context.Context, invoiceNo string, paid bool) (*entity.Invoice, error)
	nextNumberFunc func(ctx context.Context) (int64, error)
}

func newMockInvoiceRepo(invoices ...*entity.Invoice) *mockInvoiceRepo {
	return &mockInvoiceRepo{invoices: invoices, next: int64(len(invoices)) + 1}
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv *entity.Invoice, isDraft bool) (*entity.Invoice, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, inv, isDraft)
	}
	saved := inv.Clone()
	saved.InvoiceNo = billing.FormatInvoiceNo(m.next)
	saved.IsDraft = isDraft
	saved.CreatedAt = time.Date(2024, 3, 15, 4, 30, 0, 0, time.UTC)
	m.next++
	m.invoices = append(m.invoices, saved)
	return saved.Clone(), nil
}

func (m *mockInvoiceRepo) List(ctx context.Context) ([]*entity.Invoice, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	out := make([]*entity.Invoice, len(m.invoices))
	for i, inv := range m.invoices {
		out[i] = inv.Clone()
	}
	return out, nil
}

func (m *mockInvoiceRepo) Find(ctx context.Context, invoiceNo string) (*entity.Invoice, error) {
	for _, inv := range m.invoices {
		if inv.InvoiceNo == invoiceNo {
			return inv.Clone(), nil
		}
	}
	return nil, entity.ErrInvoiceNotFound
}

func (m *mockInvoiceRepo) SetPaid(ctx context.Context, invoiceNo string, paid bool) (*entity.Invoice, error) {
	if m.setPaidFunc != nil {
		return m.setPaidFunc(ctx, invoiceNo, paid)
	}
	for _, inv := range m.invoices {
		if inv.InvoiceNo == invoiceNo {
			inv.IsPaid = paid
			return inv.Clone(), nil
		}
	}
	return nil, entity.ErrInvoiceNotFound
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, invoiceNo string) error {
	for i, inv := range m.invoices {
		if inv.InvoiceNo == invoiceNo {
			m.invoices = append(m.invoices[:i], m.invoices[i+1:]...)
			return nil
		}
	}
	return entity.ErrInvoiceNotFound
}

func (m *mockInvoiceRepo) NextNumber(ctx context.Context) (int64, error) {
	if m.nextNumberFunc != nil {
		return m.nextNumberFunc(ctx)
	}
	return m.next, nil
}

type mockCompanyRepo struct {
	company *entity.CompanyProfile
	saved   int

	getFunc  func(ctx context.Context) (*entity.CompanyProfile, error)
	saveFunc func(ctx context.Context, company *entity.CompanyProfile) error
}

func (m *mockCompanyRepo) Get(ctx context.Context) (*entity.CompanyProfile, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx)
	}
	if m.company == nil {
		return nil, entity.ErrCompanyNotConfigured
	}
	c := *m.company
	return &c, nil
}

func (m *mockCompanyRepo) Save(ctx context.Context, company *entity.CompanyProfile) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, company)
	}
	c := *company
	m.company = &c
	m.saved++
	return nil
}

type mockRenderer struct {
	renderFunc func(ctx context.Context, inv *entity.Invoice, company *entity.CompanyProfile) ([]byte, error)
}

func (m *mockRenderer) Render(ctx context.Context, inv *entity.Invoice, company *entity.CompanyProfile) ([]byte, error) {
	if m.renderFunc != nil {
		return m.renderFunc(ctx, inv, company)
	}
	return []byte("%PDF-1.3 " + inv.InvoiceNo), nil
}

type mockPreviewer struct {
	renderPNGFunc func(ctx context.Context, pdf []byte) ([]byte, error)
}

func (m *mockPreviewer) RenderPNG(ctx context.Context, pdf []byte) ([]byte, error) {
	if m.renderPNGFunc != nil {
		return m.renderPNGFunc(ctx, pdf)
	}
	return []byte("\x89PNG"), nil
}

type mockStorage struct {
	files    map[string][]byte
	saveFunc func(ctx context.Context, path string, content []byte) error
}

func newMockStorage() *mockStorage {
	return &mockStorage{files: map[string][]byte{}}
}

func (m *mockStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, path, content)
	}
	m.files[path] = content
	return nil
}

func (m *mockStorage) GetFullPath(relativePath string) string {
	return "/out/" + relativePath
}

type mockRegisterWriter struct {
	got       []*entity.Invoice
	writeFunc func(ctx context.Context, invoices []*entity.Invoice, today civil.Date) ([]byte, error)
}

func (m *mockRegisterWriter) Write(ctx context.Context, invoices []*entity.Invoice, today civil.Date) ([]byte, error) {
	m.got = invoices
	if m.writeFunc != nil {
		return m.writeFunc(ctx, invoices, today)
	}
	return []byte("PK"), nil
}

type mockLogoProcessor struct {
	normalizeFunc func(ctx context.Context, image []byte) (string, error)
}

func (m *mockLogoProcessor) Normalize(ctx context.Context, image []byte) (string, error) {
	if m.normalizeFunc != nil {
		return m.normalizeFunc(ctx, image)
	}
	return "data:image/png;base64,bG9nbw==", nil
}

type mockResetter struct {
	calls     int
	resetFunc func(ctx context.Context) error
}

func (m *mockResetter) Reset(ctx context.Context) error {
	m.calls++
	if m.resetFunc != nil {
		return m.resetFunc(ctx)
	}
	return nil
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

var ist = time.FixedZone("IST", 5*3600+1800)

// fixedCalendar pins "now" to 2024-03-15 10:00 IST
func fixedCalendar() Calendar {
	return NewCalendar(func() time.Time {
		return time.Date(2024, 3, 15, 10, 0, 0, 0, ist)
	}, ist)
}
