package export

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/garyjia/gst-billing/internal/application/port"
	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/garyjia/gst-billing/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const registerSheet = "Register"

var registerHeader = []interface{}{
	"Invoice No", "Date", "Customer", "Customer GSTIN", "Status", "Subtotal", "Total GST", "Grand Total",
}

// RegisterWriter writes the invoice register workbook with excelize
type RegisterWriter struct {
	logger *zap.Logger
}

// NewRegisterWriter creates a register writer
func NewRegisterWriter(logger *zap.Logger) *RegisterWriter {
	return &RegisterWriter{logger: logger}
}

// Write lays out one row per invoice, in the given order, followed by a totals row.
// Status is evaluated as of today.
func (w *RegisterWriter) Write(ctx context.Context, invoices []*entity.Invoice, today civil.Date) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", registerSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F0F0F0"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	moneyStyle, err := file.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("failed to create money style: %w", err)
	}
	totalStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("failed to create total style: %w", err)
	}

	if err := file.SetSheetRow(registerSheet, "A1", &registerHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := file.SetCellStyle(registerSheet, "A1", "H1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	subtotal, gst, grand := decimal.Zero, decimal.Zero, decimal.Zero
	for i, inv := range invoices {
		row := i + 2
		values := []interface{}{
			inv.InvoiceNo,
			utils.FormatDate(inv.Date),
			inv.CustomerName,
			inv.CustomerGSTIN,
			inv.Status(today).Label(),
			money(inv.Subtotal),
			money(inv.TotalGST),
			money(inv.GrandTotal),
		}
		if err := file.SetSheetRow(registerSheet, cellName(1, row), &values); err != nil {
			return nil, fmt.Errorf("failed to write invoice %s: %w", inv.InvoiceNo, err)
		}

		subtotal = subtotal.Add(inv.Subtotal)
		gst = gst.Add(inv.TotalGST)
		grand = grand.Add(inv.GrandTotal)
	}

	totalRow := len(invoices) + 2
	totals := []interface{}{"Total", "", "", "", fmt.Sprintf("%d invoices", len(invoices)), money(subtotal), money(gst), money(grand)}
	if err := file.SetSheetRow(registerSheet, cellName(1, totalRow), &totals); err != nil {
		return nil, fmt.Errorf("failed to write totals: %w", err)
	}

	if len(invoices) > 0 {
		if err := file.SetCellStyle(registerSheet, "F2", cellName(8, totalRow-1), moneyStyle); err != nil {
			return nil, fmt.Errorf("failed to style amounts: %w", err)
		}
	}
	if err := file.SetCellStyle(registerSheet, cellName(1, totalRow), cellName(8, totalRow), totalStyle); err != nil {
		return nil, fmt.Errorf("failed to style totals: %w", err)
	}

	for col, width := range map[string]float64{"A": 12, "B": 12, "C": 32, "D": 18, "E": 14, "F": 14, "G": 14, "H": 16} {
		if err := file.SetColWidth(registerSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}
	if err := file.SetPanes(registerSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Debug("Invoice register written",
		zap.Int("invoices", len(invoices)),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// money rounds for display; the cell keeps a numeric value so sheets can sum it
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

var _ port.RegisterWriter = (*RegisterWriter)(nil)
