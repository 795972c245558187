package repository

import (
	"context"

	"github.com/garyjia/gst-billing/internal/application/port"
	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/garyjia/gst-billing/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// StateResetter clears the company, invoices and counter slots together
type StateResetter struct {
	slots  *sqlite.SlotStore
	logger *zap.Logger
}

// NewStateResetter creates a resetter
func NewStateResetter(slots *sqlite.SlotStore, logger *zap.Logger) *StateResetter {
	return &StateResetter{slots: slots, logger: logger}
}

// Reset deletes every slot in a single transaction
func (r *StateResetter) Reset(ctx context.Context) error {
	err := r.slots.WithTransaction(ctx, func(ctx context.Context) error {
		return r.slots.Delete(ctx, sqlite.AllSlots...)
	})
	if err != nil {
		r.logger.Error("Failed to reset data", zap.Error(err))
		return &entity.StorageError{Op: "reset", Err: err}
	}
	r.logger.Info("All billing data cleared")
	return nil
}

var _ port.DataResetter = (*StateResetter)(nil)
