package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/garyjia/gst-billing/internal/application/port"
	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/garyjia/gst-billing/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// CompanyRepository implements port.CompanyRepository over the company slot
type CompanyRepository struct {
	slots  *sqlite.SlotStore
	logger *zap.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(slots *sqlite.SlotStore, logger *zap.Logger) *CompanyRepository {
	return &CompanyRepository{slots: slots, logger: logger}
}

// Get loads the profile
func (r *CompanyRepository) Get(ctx context.Context) (*entity.CompanyProfile, error) {
	raw, ok, err := r.slots.Get(ctx, sqlite.SlotCompany)
	if err != nil {
		return nil, &entity.StorageError{Op: "load company", Err: err}
	}
	if !ok || raw == "" || raw == "null" {
		return nil, entity.ErrCompanyNotConfigured
	}

	var company entity.CompanyProfile
	if err := json.Unmarshal([]byte(raw), &company); err != nil {
		return nil, &entity.StorageError{Op: "load company", Err: fmt.Errorf("failed to decode company slot: %w", err)}
	}
	return &company, nil
}

// Save replaces the profile
func (r *CompanyRepository) Save(ctx context.Context, company *entity.CompanyProfile) error {
	data, err := json.Marshal(company)
	if err != nil {
		return &entity.StorageError{Op: "save company", Err: err}
	}
	if err := r.slots.Put(ctx, sqlite.SlotCompany, string(data)); err != nil {
		r.logger.Error("Failed to save company profile", zap.Error(err))
		return &entity.StorageError{Op: "save company", Err: err}
	}
	r.logger.Info("Company profile saved", zap.String("name", company.Name), zap.Bool("has_logo", company.HasLogo()))
	return nil
}

var _ port.CompanyRepository = (*CompanyRepository)(nil)
