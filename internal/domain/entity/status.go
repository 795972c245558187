package entity

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// Status is the derived display state of an invoice. It is never persisted.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
	StatusUnpaid  Status = "unpaid"
)

// StatusFilterAll matches every status in list views
const StatusFilterAll = "all"

// DeriveStatus classifies an invoice. Draft overrides paid, paid overrides the date check.
// An invoice dated before today is overdue; the invoice date doubles as its due date.
func DeriveStatus(isDraft, isPaid bool, date, today civil.Date) Status {
	switch {
	case isDraft:
		return StatusDraft
	case isPaid:
		return StatusPaid
	case date.Before(today):
		return StatusOverdue
	default:
		return StatusUnpaid
	}
}

// Label returns the badge text shown next to an invoice
func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusPaid:
		return "Paid"
	case StatusOverdue:
		return "Overdue"
	case StatusUnpaid:
		return "Unpaid"
	default:
		return string(s)
	}
}

// ParseStatusFilter validates a list-view status filter. Empty means all.
func ParseStatusFilter(s string) (string, error) {
	switch s {
	case "", StatusFilterAll:
		return StatusFilterAll, nil
	case string(StatusDraft), string(StatusPaid), string(StatusOverdue), string(StatusUnpaid):
		return s, nil
	}
	return "", NewValidationError("status", fmt.Sprintf("unknown status filter %q", s))
}
