package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportError(t *testing.T) {
	cause := errors.New("font missing")
	err := fmt.Errorf("generate: %w", &ExportError{InvoiceNo: "#00004", Saved: true, Err: cause})

	var exportErr *ExportError
	assert.True(t, errors.As(err, &exportErr))
	assert.Contains(t, err.Error(), "#00004 saved, but export failed")
	assert.ErrorIs(t, err, cause)
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk full")
	err := &StorageError{Op: "create", InvoiceNo: "#00001", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage failure during create of invoice #00001: disk full", err.Error())
	assert.Equal(t, "storage failure during reset: disk full", (&StorageError{Op: "reset", Err: cause}).Error())
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("save draft: %w", NewValidationError("customerName", "customer name is required"))
	assert.True(t, IsValidation(err))
	assert.False(t, IsValidation(ErrInvoiceNotFound))
	assert.Contains(t, err.Error(), "customerName: customer name is required")
}

func TestInvoiceClone(t *testing.T) {
	inv := &Invoice{InvoiceNo: "#00001", Items: []LineItem{{Description: "Pen"}}}
	c := inv.Clone()
	c.Items[0].Description = "Pencil"
	assert.Equal(t, "Pen", inv.Items[0].Description)
}
