package billing

import (
	"fmt"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(s string) decimal.NullDecimal {
	return ParseNumber(s)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func row(desc, qty, rate, gst string) ItemInput {
	return ItemInput{Description: desc, Quantity: num(qty), Rate: num(rate), GSTPercent: num(gst)}
}

func TestCompute_Totals(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)
	input := InvoiceDraftInput{
		Date:          civil.Date{Year: 2024, Month: 1, Day: 10},
		CustomerName:  "  Acme Traders ",
		CustomerGSTIN: "27aapfu0939f1zv",
		Items: []ItemInput{
			row("Widget", "2", "500", "18"),
			row("Service", "1", "1000", "5"),
		},
	}

	inv, err := calc.Compute(input)
	require.NoError(t, err)

	assert.Equal(t, "Acme Traders", inv.CustomerName)
	assert.Equal(t, "27AAPFU0939F1ZV", inv.CustomerGSTIN)
	require.Len(t, inv.Items, 2)
	assert.True(t, inv.Items[0].Amount.Equal(dec("1000")))
	assert.True(t, inv.Items[0].GSTAmount.Equal(dec("180")))
	assert.True(t, inv.Items[1].GSTAmount.Equal(dec("50")))
	assert.True(t, inv.Subtotal.Equal(dec("2000")))
	assert.True(t, inv.TotalGST.Equal(dec("230")))
	assert.True(t, inv.GrandTotal.Equal(dec("2230")))
	assert.Empty(t, inv.InvoiceNo)
}

func TestCompute_ExcludesIncompleteRows(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)

	tests := []struct {
		name string
		row  ItemInput
	}{
		{"blank description", row("   ", "1", "100", "18")},
		{"zero quantity", row("Pen", "0", "100", "18")},
		{"negative quantity", row("Pen", "-2", "100", "18")},
		{"missing quantity", row("Pen", "", "100", "18")},
		{"missing rate", row("Pen", "1", "", "18")},
		{"unparsable rate", row("Pen", "1", "abc", "18")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := calc.Compute(InvoiceDraftInput{
				CustomerName: "Acme",
				Items:        []ItemInput{tt.row, row("Book", "1", "50", "0")},
			})
			require.NoError(t, err)
			require.Len(t, inv.Items, 1)
			assert.Equal(t, "Book", inv.Items[0].Description)
			assert.True(t, inv.Subtotal.Equal(dec("50")))
			assert.True(t, inv.GrandTotal.Equal(dec("50")))
		})
	}
}

func TestCompute_DefaultGST(t *testing.T) {
	inv, err := NewCalculator(DefaultGSTPercent).Compute(InvoiceDraftInput{
		Items: []ItemInput{row("Chair", "1", "100", "")},
	})
	require.NoError(t, err)
	require.Len(t, inv.Items, 1)
	assert.True(t, inv.Items[0].GSTPercent.Equal(dec("18")))
	assert.True(t, inv.TotalGST.Equal(dec("18")))
}

func TestCompute_ZeroRateIncluded(t *testing.T) {
	inv, err := NewCalculator(DefaultGSTPercent).Compute(InvoiceDraftInput{
		Items: []ItemInput{row("Free sample", "3", "0", "18")},
	})
	require.NoError(t, err)
	require.Len(t, inv.Items, 1)
	assert.True(t, inv.GrandTotal.IsZero())
}

func TestCompute_ValidationErrors(t *testing.T) {
	calc := NewCalculator(DefaultGSTPercent)

	tests := []struct {
		name  string
		input InvoiceDraftInput
		field string
	}{
		{
			name:  "gst above 100",
			input: InvoiceDraftInput{Items: []ItemInput{row("Pen", "1", "10", "101")}},
			field: "items[0].gstPercent",
		},
		{
			name:  "negative gst",
			input: InvoiceDraftInput{Items: []ItemInput{row("Pen", "1", "10", "18"), row("Ink", "1", "10", "-5")}},
			field: "items[1].gstPercent",
		},
		{
			name:  "negative rate",
			input: InvoiceDraftInput{Items: []ItemInput{row("Pen", "1", "-10", "18")}},
			field: "items[0].rate",
		},
		{
			name: "hsn too long",
			input: InvoiceDraftInput{Items: []ItemInput{{
				Description: "Pen", HSN: "123456789", Quantity: num("1"), Rate: num("10"),
			}}},
			field: "items[0].hsn",
		},
		{
			name:  "bad gstin",
			input: InvoiceDraftInput{CustomerGSTIN: "27AAPF"},
			field: "customerGSTIN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Compute(tt.input)
			require.Error(t, err)
			var ve *entity.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestCompute_ManyItemsNoDrift(t *testing.T) {
	items := make([]ItemInput, 0, 500)
	for i := 0; i < 500; i++ {
		items = append(items, row(fmt.Sprintf("Item %d", i), "3", "0.10", "18"))
	}

	inv, err := NewCalculator(DefaultGSTPercent).Compute(InvoiceDraftInput{Items: items})
	require.NoError(t, err)

	assert.Equal(t, "150.00", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "27.00", inv.TotalGST.StringFixed(2))
	assert.True(t, inv.GrandTotal.Equal(inv.Subtotal.Add(inv.TotalGST)))
}

func TestRecompute(t *testing.T) {
	inv := &entity.Invoice{Items: []entity.LineItem{
		{Quantity: dec("2"), Rate: dec("12.5"), GSTPercent: dec("12"), Amount: dec("999")},
	}}
	Recompute(inv)
	assert.True(t, inv.Items[0].Amount.Equal(dec("25")))
	assert.True(t, inv.Items[0].GSTAmount.Equal(dec("3")))
	assert.True(t, inv.GrandTotal.Equal(dec("28")))
}

func TestInvoiceNumbers(t *testing.T) {
	assert.Equal(t, "#00001", FormatInvoiceNo(1))
	assert.Equal(t, "#00042", FormatInvoiceNo(42))
	assert.Equal(t, "#123456", FormatInvoiceNo(123456))
	assert.Equal(t, "00042", InvoiceNoDigits("#00042"))
	assert.Equal(t, "#00042", NormalizeInvoiceNo("00042"))
	assert.Equal(t, "#00042", NormalizeInvoiceNo(" #00042 "))
	assert.Equal(t, "", NormalizeInvoiceNo(""))

	tests := []struct {
		input    string
		expected string
	}{
		{"1", "#00001"},
		{"#7", "#00007"},
		{" 12 ", "#00012"},
		{"#0000042", "#00042"},
		{"123456", "#123456"},
		{"abc", "#abc"},
		{"#12a", "#12a"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeInvoiceNo(tt.input))
		})
	}
}

func TestInvoiceFileName(t *testing.T) {
	inv := &entity.Invoice{InvoiceNo: "#00012", CustomerName: "Shree Ganesh & Co."}
	exported := civil.Date{Year: 2024, Month: 3, Day: 9}

	assert.Equal(t, "GST_Invoice_00012_Shree_Ganesh___Co__2024-03-09.pdf", InvoiceFileName(inv, exported))
	assert.Equal(t, "2024-03/x.pdf", ArchivePath(exported, "x.pdf"))
	assert.Equal(t, "GST_Invoice_Register_2024-03-09.xlsx", RegisterFileName(exported))
}
