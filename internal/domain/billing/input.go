package billing

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ItemInput is one raw line-item row as entered. Numeric fields that were left
// blank or failed to parse are represented as invalid NullDecimals.
type ItemInput struct {
	Description string              `json:"description"`
	HSN         string              `json:"hsn"`
	Quantity    decimal.NullDecimal `json:"quantity"`
	Rate        decimal.NullDecimal `json:"rate"`
	GSTPercent  decimal.NullDecimal `json:"gstPercent"`
}

// InvoiceDraftInput is the immutable snapshot of the invoice form for one operation
type InvoiceDraftInput struct {
	Date            civil.Date  `json:"date"`
	CustomerName    string      `json:"customerName"`
	CustomerGSTIN   string      `json:"customerGSTIN"`
	CustomerAddress string      `json:"customerAddress"`
	Items           []ItemInput `json:"items"`
}

// ParseNumber converts free-form text into a NullDecimal. Blank or unparsable
// text yields an invalid value, the same as an empty form field.
func ParseNumber(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
