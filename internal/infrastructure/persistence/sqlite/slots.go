package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Slot keys of the persisted state
const (
	SlotCompany       = "company"
	SlotInvoices      = "invoices"
	SlotInvoiceNumber = "invoice_number"
)

// AllSlots lists every key cleared by a full reset
var AllSlots = []string{SlotCompany, SlotInvoices, SlotInvoiceNumber}

// SlotStore is a string key-value store over the slots table. Calls join a
// transaction started with DB.WithTransaction when one is on the context.
type SlotStore struct {
	db     *DB
	logger *zap.Logger
}

// NewSlotStore creates a slot store
func NewSlotStore(db *DB, logger *zap.Logger) *SlotStore {
	return &SlotStore{db: db, logger: logger}
}

// Get returns the slot value and whether the slot exists
func (s *SlotStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.getExecutor(ctx).QueryRowContext(ctx,
		"SELECT value FROM slots WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Error("Failed to read slot", zap.String("slot", key), zap.Error(err))
		return "", false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return value, true, nil
}

// Put creates or replaces a slot value
func (s *SlotStore) Put(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.getExecutor(ctx).ExecContext(ctx, query, key, value); err != nil {
		s.logger.Error("Failed to write slot", zap.String("slot", key), zap.Error(err))
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// Delete removes the given slots; missing keys are ignored
func (s *SlotStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.getExecutor(ctx).ExecContext(ctx, "DELETE FROM slots WHERE key = ?", key); err != nil {
			s.logger.Error("Failed to delete slot", zap.String("slot", key), zap.Error(err))
			return fmt.Errorf("failed to delete slot %s: %w", key, err)
		}
	}
	return nil
}

// WithTransaction delegates to the underlying DB
func (s *SlotStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.WithTransaction(ctx, fn)
}
