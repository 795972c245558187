package service

import (
	"context"

	"github.com/garyjia/gst-billing/internal/application/port"
	"github.com/garyjia/gst-billing/internal/domain/entity"
)

// ResetService wipes the company profile, every invoice and the number counter
type ResetService interface {
	Reset(ctx context.Context, confirmed bool) error
}

type resetServiceImpl struct {
	resetter port.DataResetter
	logger   Logger
}

// NewResetService creates a new ResetService
func NewResetService(resetter port.DataResetter, logger Logger) ResetService {
	return &resetServiceImpl{resetter: resetter, logger: logger}
}

func (s *resetServiceImpl) Reset(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return entity.NewValidationError("confirm", "reset must be confirmed; all company and invoice data will be deleted")
	}

	if err := s.resetter.Reset(ctx); err != nil {
		s.logger.Error("Data reset failed", "error", err)
		return err
	}
	s.logger.Info("All billing data cleared")
	return nil
}
