package billing

import (
	"fmt"
	"strings"

	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/garyjia/gst-billing/pkg/utils"
	"github.com/shopspring/decimal"
)

// DefaultGSTPercent applies to rows that carry no GST rate
var DefaultGSTPercent = decimal.NewFromInt(18)

var hundred = decimal.NewFromInt(100)

// Calculator turns raw form input into a normalized invoice record
type Calculator struct {
	defaultGST decimal.Decimal
}

// NewCalculator creates a calculator using the given default GST rate
func NewCalculator(defaultGSTPercent decimal.Decimal) *Calculator {
	return &Calculator{defaultGST: defaultGSTPercent}
}

// Compute derives line amounts and totals. Incomplete rows (no description,
// quantity not above zero, or no rate) are dropped without error. The returned
// invoice has no number or creation time; the store assigns those.
func (c *Calculator) Compute(input InvoiceDraftInput) (*entity.Invoice, error) {
	gstin := utils.NormalizeGSTIN(input.CustomerGSTIN)
	if err := utils.ValidateGSTIN(gstin); err != nil {
		return nil, entity.NewValidationError("customerGSTIN", err.Error())
	}

	items := make([]entity.LineItem, 0, len(input.Items))
	for i, row := range input.Items {
		item, ok, err := c.computeItem(row)
		if err != nil {
			err.Field = fmt.Sprintf("items[%d].%s", i, err.Field)
			return nil, err
		}
		if ok {
			items = append(items, item)
		}
	}

	inv := &entity.Invoice{
		Date:            input.Date,
		CustomerName:    utils.SanitizeString(strings.TrimSpace(input.CustomerName)),
		CustomerGSTIN:   gstin,
		CustomerAddress: utils.SanitizeString(strings.TrimSpace(input.CustomerAddress)),
		Items:           items,
	}
	inv.Subtotal, inv.TotalGST, inv.GrandTotal = Totals(items)
	return inv, nil
}

func (c *Calculator) computeItem(row ItemInput) (entity.LineItem, bool, *entity.ValidationError) {
	description := utils.SanitizeString(strings.TrimSpace(row.Description))
	if description == "" || !row.Quantity.Valid || !row.Quantity.Decimal.IsPositive() || !row.Rate.Valid {
		return entity.LineItem{}, false, nil
	}

	if row.Rate.Decimal.IsNegative() {
		return entity.LineItem{}, false, entity.NewValidationError("rate", "rate must not be negative")
	}

	pct := c.defaultGST
	if row.GSTPercent.Valid {
		pct = row.GSTPercent.Decimal
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return entity.LineItem{}, false, entity.NewValidationError("gstPercent", "GST percentage must be between 0 and 100")
	}

	hsn := strings.TrimSpace(row.HSN)
	if err := utils.ValidateHSN(hsn); err != nil {
		return entity.LineItem{}, false, entity.NewValidationError("hsn", err.Error())
	}

	item := entity.LineItem{
		Description: description,
		HSN:         hsn,
		Quantity:    row.Quantity.Decimal,
		Rate:        row.Rate.Decimal,
		GSTPercent:  pct,
	}
	item.Amount, item.GSTAmount = LineAmounts(item.Quantity, item.Rate, item.GSTPercent)
	return item, true, nil
}

// LineAmounts computes amount = qty × rate and gstAmount = amount × pct / 100 exactly
func LineAmounts(quantity, rate, gstPercent decimal.Decimal) (amount, gstAmount decimal.Decimal) {
	amount = quantity.Mul(rate)
	gstAmount = amount.Mul(gstPercent).Shift(-2)
	return amount, gstAmount
}

// Totals sums item amounts without intermediate rounding
func Totals(items []entity.LineItem) (subtotal, totalGST, grandTotal decimal.Decimal) {
	subtotal = decimal.Zero
	totalGST = decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
		totalGST = totalGST.Add(item.GSTAmount)
	}
	return subtotal, totalGST, subtotal.Add(totalGST)
}

// Recompute rederives every line amount and the invoice totals from the items'
// quantities, rates and GST percentages.
func Recompute(inv *entity.Invoice) {
	for i := range inv.Items {
		item := &inv.Items[i]
		item.Amount, item.GSTAmount = LineAmounts(item.Quantity, item.Rate, item.GSTPercent)
	}
	inv.Subtotal, inv.TotalGST, inv.GrandTotal = Totals(inv.Items)
}
