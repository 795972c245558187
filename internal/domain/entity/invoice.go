package entity

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// LineItem is one computed row of an invoice. Amount and GSTAmount are derived.
type LineItem struct {
	Description string          `json:"description"`
	HSN         string          `json:"hsn"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	GSTPercent  decimal.Decimal `json:"gstPercent"`
	Amount      decimal.Decimal `json:"amount"`
	GSTAmount   decimal.Decimal `json:"gstAmount"`
}

// Invoice is a GST invoice record as persisted in the invoices slot
type Invoice struct {
	InvoiceNo       string          `json:"invoiceNo"`
	Date            civil.Date      `json:"date"`
	CustomerName    string          `json:"customerName"`
	CustomerGSTIN   string          `json:"customerGSTIN"`
	CustomerAddress string          `json:"customerAddress"`
	Items           []LineItem      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TotalGST        decimal.Decimal `json:"totalGST"`
	GrandTotal      decimal.Decimal `json:"grandTotal"`
	CreatedAt       time.Time       `json:"createdAt"`
	IsDraft         bool            `json:"isDraft"`
	IsPaid          bool            `json:"isPaid"`
}

// Status derives the display status of the invoice as of the given calendar day
func (i *Invoice) Status(today civil.Date) Status {
	return DeriveStatus(i.IsDraft, i.IsPaid, i.Date, today)
}

// Clone returns a deep copy; the items slice is not shared
func (i *Invoice) Clone() *Invoice {
	if i == nil {
		return nil
	}
	c := *i
	if i.Items != nil {
		c.Items = make([]LineItem, len(i.Items))
		copy(c.Items, i.Items)
	}
	return &c
}
