package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvoiceNotFound is returned when no invoice carries the requested number
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrCompanyNotConfigured is returned before first-run company setup
	ErrCompanyNotConfigured = errors.New("company profile not configured")
)

// ValidationError is a user-correctable input problem. Nothing was mutated.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is or wraps a *ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError means a persistence write or read failed; the requested mutation
// may not be durable.
type StorageError struct {
	Op        string
	InvoiceNo string
	Err       error
}

func (e *StorageError) Error() string {
	if e.InvoiceNo != "" {
		return fmt.Sprintf("storage failure during %s of invoice %s: %v", e.Op, e.InvoiceNo, e.Err)
	}
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ExportError means document generation failed. When Saved is set the invoice
// record was already durable and must not be submitted again.
type ExportError struct {
	InvoiceNo string
	Saved     bool
	Err       error
}

func (e *ExportError) Error() string {
	if e.Saved {
		return fmt.Sprintf("invoice %s saved, but export failed: %v", e.InvoiceNo, e.Err)
	}
	return fmt.Sprintf("export of invoice %s failed: %v", e.InvoiceNo, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
