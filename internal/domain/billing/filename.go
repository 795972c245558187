package billing

import (
	"fmt"
	"path"

	"cloud.google.com/go/civil"
	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/garyjia/gst-billing/pkg/utils"
)

// InvoiceFileName names the PDF for an invoice exported on the given day:
// GST_Invoice_<digits>_<customer>_<YYYY-MM-DD>.pdf
func InvoiceFileName(inv *entity.Invoice, exportDate civil.Date) string {
	return fmt.Sprintf("GST_Invoice_%s_%s_%s.pdf",
		InvoiceNoDigits(inv.InvoiceNo),
		utils.SanitizeFileComponent(inv.CustomerName),
		exportDate)
}

// ArchivePath places an exported file in a per-month folder, e.g. 2024-01/<name>
func ArchivePath(exportDate civil.Date, name string) string {
	return path.Join(fmt.Sprintf("%04d-%02d", exportDate.Year, int(exportDate.Month)), name)
}

// RegisterFileName names the invoice register workbook
func RegisterFileName(exportDate civil.Date) string {
	return fmt.Sprintf("GST_Invoice_Register_%s.xlsx", exportDate)
}
