package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/garyjia/gst-billing/internal/application/port"
	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/garyjia/gst-billing/pkg/utils"
	"github.com/go-playground/validator/v10"
)

// CompanyInput is the setup / settings form
type CompanyInput struct {
	Name    string `json:"name"`
	GSTIN   string `json:"gstin"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	// Logo is raw image bytes; nil keeps whatever logo is already stored
	Logo []byte `json:"-"`
}

// CompanyService manages the singleton company profile
type CompanyService interface {
	Get(ctx context.Context) (*entity.CompanyProfile, error)
	IsConfigured(ctx context.Context) (bool, error)
	// Setup creates or edits the profile
	Setup(ctx context.Context, input CompanyInput) (*entity.CompanyProfile, error)
	SetLogo(ctx context.Context, image []byte) (*entity.CompanyProfile, error)
	RemoveLogo(ctx context.Context) (*entity.CompanyProfile, error)
}

type companyServiceImpl struct {
	companyRepo port.CompanyRepository
	logos       port.LogoProcessor
	validate    *validator.Validate
	logger      Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo port.CompanyRepository, logos port.LogoProcessor, logger Logger) CompanyService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &companyServiceImpl{
		companyRepo: companyRepo,
		logos:       logos,
		validate:    v,
		logger:      logger,
	}
}

func (s *companyServiceImpl) Get(ctx context.Context) (*entity.CompanyProfile, error) {
	return s.companyRepo.Get(ctx)
}

func (s *companyServiceImpl) IsConfigured(ctx context.Context) (bool, error) {
	_, err := s.companyRepo.Get(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, entity.ErrCompanyNotConfigured):
		return false, nil
	default:
		return false, err
	}
}

// existing returns the stored profile, or nil before first setup
func (s *companyServiceImpl) existing(ctx context.Context) (*entity.CompanyProfile, error) {
	company, err := s.companyRepo.Get(ctx)
	if errors.Is(err, entity.ErrCompanyNotConfigured) {
		return nil, nil
	}
	return company, err
}

func (s *companyServiceImpl) Setup(ctx context.Context, input CompanyInput) (*entity.CompanyProfile, error) {
	company := &entity.CompanyProfile{
		Name:    utils.SanitizeString(strings.TrimSpace(input.Name)),
		GSTIN:   utils.NormalizeGSTIN(input.GSTIN),
		Address: utils.SanitizeString(strings.TrimSpace(input.Address)),
		Phone:   strings.TrimSpace(input.Phone),
		Email:   strings.TrimSpace(input.Email),
	}
	if err := s.check(company); err != nil {
		return nil, err
	}

	if input.Logo != nil {
		logo, err := s.logos.Normalize(ctx, input.Logo)
		if err != nil {
			return nil, err
		}
		company.Logo = logo
	} else {
		current, err := s.existing(ctx)
		if err != nil {
			return nil, err
		}
		if current != nil {
			company.Logo = current.Logo
		}
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		s.logger.Error("Failed to save company profile", "error", err)
		return nil, err
	}

	s.logger.Info("Company profile saved", "name", company.Name, "has_logo", company.HasLogo())
	return company, nil
}

func (s *companyServiceImpl) SetLogo(ctx context.Context, image []byte) (*entity.CompanyProfile, error) {
	company, err := s.companyRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	logo, err := s.logos.Normalize(ctx, image)
	if err != nil {
		return nil, err
	}
	company.Logo = logo

	if err := s.companyRepo.Save(ctx, company); err != nil {
		s.logger.Error("Failed to save company logo", "error", err)
		return nil, err
	}
	s.logger.Info("Company logo updated", "bytes", len(image))
	return company, nil
}

func (s *companyServiceImpl) RemoveLogo(ctx context.Context) (*entity.CompanyProfile, error) {
	company, err := s.companyRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !company.HasLogo() {
		return company, nil
	}

	company.Logo = ""
	if err := s.companyRepo.Save(ctx, company); err != nil {
		s.logger.Error("Failed to remove company logo", "error", err)
		return nil, err
	}
	s.logger.Info("Company logo removed")
	return company, nil
}

// check runs the struct tags and reports the first failure as a ValidationError
func (s *companyServiceImpl) check(company *entity.CompanyProfile) error {
	err := s.validate.Struct(company)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate company profile: %w", err)
	}

	fe := fieldErrs[0]
	return entity.NewValidationError(fe.Field(), describeFieldError(fe))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "alphanum":
		return fe.Field() + " must contain only letters and digits"
	case "email":
		return "invalid email address"
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
