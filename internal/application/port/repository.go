package port

import (
	"context"

	"github.com/garyjia/gst-billing/internal/domain/entity"
)

// InvoiceRepository is the durable invoice collection plus its number counter.
// Every mutation is persisted before the call returns.
type InvoiceRepository interface {
	// Create assigns the next invoice number, stores the invoice and advances the counter
	Create(ctx context.Context, invoice *entity.Invoice, isDraft bool) (*entity.Invoice, error)
	List(ctx context.Context) ([]*entity.Invoice, error)
	// Find returns entity.ErrInvoiceNotFound when no invoice matches exactly
	Find(ctx context.Context, invoiceNo string) (*entity.Invoice, error)
	SetPaid(ctx context.Context, invoiceNo string, paid bool) (*entity.Invoice, error)
	// Delete never rewinds the counter
	Delete(ctx context.Context, invoiceNo string) error
	// NextNumber peeks at the counter without advancing it
	NextNumber(ctx context.Context) (int64, error)
}

// CompanyRepository persists the singleton company profile
type CompanyRepository interface {
	// Get returns entity.ErrCompanyNotConfigured before first setup
	Get(ctx context.Context) (*entity.CompanyProfile, error)
	Save(ctx context.Context, company *entity.CompanyProfile) error
}

// DataResetter clears every persisted slot in one step
type DataResetter interface {
	Reset(ctx context.Context) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
