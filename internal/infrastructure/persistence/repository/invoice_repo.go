package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/gst-billing/internal/application/port"
	"github.com/garyjia/gst-billing/internal/domain/billing"
	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/garyjia/gst-billing/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// InvoiceRepository implements port.InvoiceRepository over the invoices and
// invoice_number slots. Each mutation is a read-modify-write in one transaction.
type InvoiceRepository struct {
	slots  *sqlite.SlotStore
	logger *zap.Logger
	now    func() time.Time
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(slots *sqlite.SlotStore, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		slots:  slots,
		logger: logger,
		now:    time.Now,
	}
}

// Create stores a copy of invoice under the next number and advances the counter.
// Totals are rederived from the items before writing.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *entity.Invoice, isDraft bool) (*entity.Invoice, error) {
	var created *entity.Invoice

	err := r.slots.WithTransaction(ctx, func(ctx context.Context) error {
		// Read counter and collection inside the same transaction
		counter, err := r.loadCounter(ctx)
		if err != nil {
			return err
		}
		invoices, err := r.loadInvoices(ctx)
		if err != nil {
			return err
		}

		// Stamp the number and rederive totals on a private copy
		record := invoice.Clone()
		record.InvoiceNo = billing.FormatInvoiceNo(counter)
		record.IsDraft = isDraft
		if record.CreatedAt.IsZero() {
			record.CreatedAt = r.now().UTC()
		}
		billing.Recompute(record)

		if indexOf(invoices, record.InvoiceNo) >= 0 {
			return fmt.Errorf("invoice number %s already in use; counter is behind the collection", record.InvoiceNo)
		}

		// Append, then advance the counter; both commit together or not at all
		if err := r.saveInvoices(ctx, append(invoices, record)); err != nil {
			return err
		}
		if err := r.slots.Put(ctx, sqlite.SlotInvoiceNumber, strconv.FormatInt(counter+1, 10)); err != nil {
			return err
		}

		created = record
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to create invoice", zap.Bool("is_draft", isDraft), zap.Error(err))
		return nil, &entity.StorageError{Op: "create", Err: err}
	}

	r.logger.Info("Invoice created",
		zap.String("invoice_no", created.InvoiceNo),
		zap.Bool("is_draft", isDraft))
	return created.Clone(), nil
}

// List returns all invoices in stored order
func (r *InvoiceRepository) List(ctx context.Context) ([]*entity.Invoice, error) {
	invoices, err := r.loadInvoices(ctx)
	if err != nil {
		return nil, &entity.StorageError{Op: "list", Err: err}
	}
	return invoices, nil
}

// Find retrieves an invoice by exact number
func (r *InvoiceRepository) Find(ctx context.Context, invoiceNo string) (*entity.Invoice, error) {
	invoices, err := r.loadInvoices(ctx)
	if err != nil {
		return nil, &entity.StorageError{Op: "find", InvoiceNo: invoiceNo, Err: err}
	}
	i := indexOf(invoices, invoiceNo)
	if i < 0 {
		return nil, entity.ErrInvoiceNotFound
	}
	return invoices[i], nil
}

// SetPaid updates the paid flag in place
func (r *InvoiceRepository) SetPaid(ctx context.Context, invoiceNo string, paid bool) (*entity.Invoice, error) {
	var updated *entity.Invoice

	err := r.slots.WithTransaction(ctx, func(ctx context.Context) error {
		invoices, err := r.loadInvoices(ctx)
		if err != nil {
			return err
		}
		i := indexOf(invoices, invoiceNo)
		if i < 0 {
			return entity.ErrInvoiceNotFound
		}

		invoices[i].IsPaid = paid
		if err := r.saveInvoices(ctx, invoices); err != nil {
			return err
		}
		updated = invoices[i]
		return nil
	})
	if errors.Is(err, entity.ErrInvoiceNotFound) {
		return nil, err
	}
	if err != nil {
		r.logger.Error("Failed to update paid flag", zap.String("invoice_no", invoiceNo), zap.Error(err))
		return nil, &entity.StorageError{Op: "set paid", InvoiceNo: invoiceNo, Err: err}
	}

	r.logger.Info("Invoice paid flag updated", zap.String("invoice_no", invoiceNo), zap.Bool("paid", paid))
	return updated, nil
}

// Delete removes an invoice. The counter is left untouched.
func (r *InvoiceRepository) Delete(ctx context.Context, invoiceNo string) error {
	err := r.slots.WithTransaction(ctx, func(ctx context.Context) error {
		invoices, err := r.loadInvoices(ctx)
		if err != nil {
			return err
		}
		i := indexOf(invoices, invoiceNo)
		if i < 0 {
			return entity.ErrInvoiceNotFound
		}
		return r.saveInvoices(ctx, append(invoices[:i], invoices[i+1:]...))
	})
	if errors.Is(err, entity.ErrInvoiceNotFound) {
		return err
	}
	if err != nil {
		r.logger.Error("Failed to delete invoice", zap.String("invoice_no", invoiceNo), zap.Error(err))
		return &entity.StorageError{Op: "delete", InvoiceNo: invoiceNo, Err: err}
	}

	r.logger.Info("Invoice deleted", zap.String("invoice_no", invoiceNo))
	return nil
}

// NextNumber returns the counter value the next Create will use
func (r *InvoiceRepository) NextNumber(ctx context.Context) (int64, error) {
	n, err := r.loadCounter(ctx)
	if err != nil {
		return 0, &entity.StorageError{Op: "read counter", Err: err}
	}
	return n, nil
}

func (r *InvoiceRepository) loadInvoices(ctx context.Context) ([]*entity.Invoice, error) {
	raw, ok, err := r.slots.Get(ctx, sqlite.SlotInvoices)
	if err != nil {
		return nil, err
	}
	invoices := []*entity.Invoice{}
	if !ok || strings.TrimSpace(raw) == "" {
		return invoices, nil
	}
	if err := json.Unmarshal([]byte(raw), &invoices); err != nil {
		return nil, fmt.Errorf("failed to decode invoices slot: %w", err)
	}
	return invoices, nil
}

func (r *InvoiceRepository) saveInvoices(ctx context.Context, invoices []*entity.Invoice) error {
	data, err := json.Marshal(invoices)
	if err != nil {
		return fmt.Errorf("failed to encode invoices: %w", err)
	}
	return r.slots.Put(ctx, sqlite.SlotInvoices, string(data))
}

// loadCounter reads the next invoice number; an absent slot means a fresh store
func (r *InvoiceRepository) loadCounter(ctx context.Context) (int64, error) {
	raw, ok, err := r.slots.Get(ctx, sqlite.SlotInvoiceNumber)
	if err != nil {
		return 0, err
	}
	if !ok {
		return billing.FirstInvoiceNumber, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < billing.FirstInvoiceNumber {
		return 0, fmt.Errorf("corrupt invoice_number slot %q", raw)
	}
	return n, nil
}

func indexOf(invoices []*entity.Invoice, invoiceNo string) int {
	for i, inv := range invoices {
		if inv.InvoiceNo == invoiceNo {
			return i
		}
	}
	return -1
}

var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
