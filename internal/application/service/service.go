package service

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/garyjia/gst-billing/internal/domain/entity"
)

// Logger is the structured logger services write to
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Clock tells services the current time; tests substitute a fixed one
type Clock func() time.Time

// Calendar resolves "today" in the business's time zone
type Calendar struct {
	Now      Clock
	Location *time.Location
}

// NewCalendar creates a calendar; nil arguments default to time.Now and time.Local
func NewCalendar(now Clock, loc *time.Location) Calendar {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return Calendar{Now: now, Location: loc}
}

// Time returns the current instant in the business time zone
func (c Calendar) Time() time.Time {
	return c.Now().In(c.Location)
}

// Today returns the current calendar date in the business time zone
func (c Calendar) Today() civil.Date {
	return civil.DateOf(c.Time())
}

// InvoiceView is an invoice together with its derived status
type InvoiceView struct {
	*entity.Invoice
	Status      entity.Status `json:"status"`
	StatusLabel string        `json:"statusLabel"`
}

// NewInvoiceView derives the status of inv as of today
func NewInvoiceView(inv *entity.Invoice, today civil.Date) *InvoiceView {
	status := inv.Status(today)
	return &InvoiceView{Invoice: inv, Status: status, StatusLabel: status.Label()}
}

// Document is a generated file ready for download
type Document struct {
	FileName    string
	ContentType string
	Content     []byte
	// SavedPath is set when the document was also written to the output directory
	SavedPath string
}

const (
	ContentTypePDF  = "application/pdf"
	ContentTypePNG  = "image/png"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
