package export

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/garyjia/gst-billing/internal/application/port"
	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/garyjia/gst-billing/pkg/utils"
	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

// Page geometry in millimetres (A4 portrait)
const (
	pageMargin    = 20.0
	logoSize      = 25.0
	footerReserve = 60.0
	rowHeight     = 6.0
	lineHeight    = 5.0
)

// column widths of the items table
var itemColumns = []struct {
	title string
	width float64
}{
	{"S.No", 12},
	{"Description", 55},
	{"HSN/SAC", 22},
	{"Qty", 15},
	{"Rate", 28},
	{"GST%", 18},
	{"Amount", 35},
}

var invoiceTerms = []string{
	"1. Goods once sold will not be taken back.",
	"2. Payment is due within 30 days.",
}

// PDFRenderer draws GST tax invoices with fpdf
type PDFRenderer struct {
	logger *zap.Logger
}

// NewPDFRenderer creates a PDF renderer
func NewPDFRenderer(logger *zap.Logger) *PDFRenderer {
	return &PDFRenderer{logger: logger}
}

// pdfPage carries the document and the UTF-8 to cp1252 translator used by the core fonts
type pdfPage struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	width  float64
	height float64
}

func (p *pdfPage) text(x, y float64, s string) {
	p.pdf.Text(x, y, p.tr(s))
}

func (p *pdfPage) textRight(right, y float64, s string) {
	s = p.tr(s)
	p.pdf.Text(right-p.pdf.GetStringWidth(s), y, s)
}

func (p *pdfPage) textCenter(center, y float64, s string) {
	s = p.tr(s)
	p.pdf.Text(center-p.pdf.GetStringWidth(s)/2, y, s)
}

// Render produces the PDF bytes for an invoice
func (r *PDFRenderer) Render(ctx context.Context, inv *entity.Invoice, company *entity.CompanyProfile) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("invoice is required")
	}
	if company == nil {
		return nil, entity.ErrCompanyNotConfigured
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetTitle("Tax Invoice "+inv.InvoiceNo, true)
	pdf.SetCreator(company.Name, true)
	if !inv.CreatedAt.IsZero() {
		pdf.SetCreationDate(inv.CreatedAt)
		pdf.SetModificationDate(inv.CreatedAt)
	}
	pdf.AddPage()

	w, h := pdf.GetPageSize()
	page := &pdfPage{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), width: w, height: h}

	y := r.drawHeader(page, company, pageMargin)
	y = r.drawTitle(page, inv, y)
	y = r.drawBillTo(page, inv, y)
	y = r.drawItems(page, inv, y)
	y = r.drawTotals(page, inv, y)
	r.drawFooter(page, company, y)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to draw invoice: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}

	r.logger.Debug("Invoice PDF rendered",
		zap.String("invoice_no", inv.InvoiceNo),
		zap.Int("pages", pdf.PageCount()),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func (r *PDFRenderer) drawHeader(p *pdfPage, company *entity.CompanyProfile, y float64) float64 {
	pdf := p.pdf

	if !r.drawLogo(p, company, y) {
		pdf.SetDrawColor(200, 200, 200)
		pdf.SetFillColor(245, 245, 245)
		pdf.Rect(pageMargin, y, logoSize, logoSize, "FD")
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(150, 150, 150)
		p.textCenter(pageMargin+logoSize/2, y+14, "Logo")
	}

	x := pageMargin + logoSize + 5
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	p.text(x, y+8, company.Name)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	p.text(x, y+14, company.Address)
	p.text(x, y+19, fmt.Sprintf("Email: %s | Phone: %s", company.Email, company.Phone))
	if company.GSTIN != "" {
		p.text(x, y+24, "GSTIN: "+company.GSTIN)
	}

	y += 35
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(pageMargin, y, p.width-pageMargin, y)
	return y + 10
}

// drawLogo places the company logo; it reports false when there is none or it cannot be read
func (r *PDFRenderer) drawLogo(p *pdfPage, company *entity.CompanyProfile, y float64) bool {
	if !company.HasLogo() {
		return false
	}

	raw, err := logoPNG(company.Logo)
	if err != nil {
		r.logger.Warn("Logo not added to invoice", zap.Error(err))
		return false
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	p.pdf.RegisterImageOptionsReader("company-logo", opts, bytes.NewReader(raw))
	if p.pdf.Err() {
		r.logger.Warn("Logo not added to invoice", zap.Error(p.pdf.Error()))
		p.pdf.ClearError()
		return false
	}
	p.pdf.ImageOptions("company-logo", pageMargin, y, logoSize, logoSize, false, opts, 0, "")
	return true
}

// logoPNG re-encodes a stored logo so JPEG or paletted uploads reach fpdf as plain PNG
func logoPNG(dataURL string) ([]byte, error) {
	raw, err := DecodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return encodePNG(img)
}

func (r *PDFRenderer) drawTitle(p *pdfPage, inv *entity.Invoice, y float64) float64 {
	pdf := p.pdf
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	p.text(pageMargin, y, "TAX INVOICE (GST)")

	pdf.SetFont("Helvetica", "", 9)
	p.textRight(p.width-pageMargin, y, "Invoice No: "+inv.InvoiceNo)
	p.textRight(p.width-pageMargin, y+5, "Date: "+utils.FormatDateLong(inv.Date))
	return y + 15
}

func (r *PDFRenderer) drawBillTo(p *pdfPage, inv *entity.Invoice, y float64) float64 {
	pdf := p.pdf
	pdf.SetFont("Helvetica", "B", 10)
	p.text(pageMargin, y, "Bill To:")

	pdf.SetFont("Helvetica", "", 10)
	y += 6
	p.text(pageMargin, y, inv.CustomerName)

	if inv.CustomerAddress != "" {
		y += lineHeight
		lines := pdf.SplitText(p.tr(inv.CustomerAddress), 80)
		for i, line := range lines {
			pdf.Text(pageMargin, y+float64(i)*lineHeight, line)
		}
		y += float64(len(lines)) * lineHeight
	}

	if inv.CustomerGSTIN != "" {
		y += lineHeight
		p.text(pageMargin, y, "GSTIN: "+inv.CustomerGSTIN)
	}
	return y + 10
}

func (r *PDFRenderer) drawItems(p *pdfPage, inv *entity.Invoice, y float64) float64 {
	pdf := p.pdf
	tableWidth := p.width - 2*pageMargin

	pdf.SetFillColor(240, 240, 240)
	pdf.Rect(pageMargin, y, tableWidth, 8, "F")
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	x := pageMargin + 2
	for _, col := range itemColumns {
		p.text(x, y+5.5, col.title)
		x += col.width
	}

	segmentTop := y
	y += 8

	// continueOnNewPage closes the frame of the current page at bottom and
	// returns the y where rows resume on the next one
	continueOnNewPage := func(bottom float64) float64 {
		r.drawTableFrame(p, segmentTop, bottom)
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 8)
		segmentTop = pageMargin
		return pageMargin
	}

	// rows start only above the footer reserve; a long description may run
	// past it but never below the bottom margin
	lastBaseline := p.height - pageMargin

	pdf.SetFont("Helvetica", "", 8)
	descWidth := itemColumns[1].width - 4
	descX := pageMargin + 2 + itemColumns[0].width
	for i, item := range inv.Items {
		if y > p.height-footerReserve {
			y = continueOnNewPage(y)
		}

		y += rowHeight
		descLines := pdf.SplitText(p.tr(item.Description), descWidth)

		hsn := item.HSN
		if hsn == "" {
			hsn = "-"
		}
		cells := []string{
			strconv.Itoa(i + 1),
			"",
			hsn,
			item.Quantity.String(),
			utils.FormatRupees(item.Rate),
			utils.FormatPercent(item.GSTPercent),
			utils.FormatRupees(item.Amount.Add(item.GSTAmount)),
		}

		x = pageMargin + 2
		for c, col := range itemColumns {
			if c != 1 {
				p.text(x, y, cells[c])
			}
			x += col.width
		}

		// the description wraps line by line and continues on the next page
		// when it reaches the bottom margin
		rowTop := y
		lineY := y
		for _, line := range descLines {
			if lineY > lastBaseline {
				rowTop = continueOnNewPage(lineY-lineHeight+2) + rowHeight
				lineY = rowTop
			}
			pdf.Text(descX, lineY, line)
			lineY += lineHeight
		}

		y = lineY
		if y < rowTop+rowHeight {
			y = rowTop + rowHeight
		}
	}

	y += 5
	r.drawTableFrame(p, segmentTop, y)
	return y + 10
}

// drawTableFrame outlines one page's part of the items table with column rules
func (r *PDFRenderer) drawTableFrame(p *pdfPage, top, bottom float64) {
	pdf := p.pdf
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(pageMargin, top, p.width-2*pageMargin, bottom-top, "D")

	x := pageMargin
	for _, col := range itemColumns[:len(itemColumns)-1] {
		x += col.width
		pdf.Line(x, top, x, bottom)
	}
}

func (r *PDFRenderer) drawTotals(p *pdfPage, inv *entity.Invoice, y float64) float64 {
	pdf := p.pdf
	if y > p.height-footerReserve {
		pdf.AddPage()
		y = pageMargin
	}

	right := p.width - pageMargin
	labelX := right - 80

	pdf.SetFont("Helvetica", "", 9)
	p.text(labelX, y, "Subtotal:")
	p.textRight(right, y, utils.FormatRupees(inv.Subtotal))
	y += 6

	p.text(labelX, y, "Total GST:")
	p.textRight(right, y, utils.FormatRupees(inv.TotalGST))
	y += 8

	pdf.SetFont("Helvetica", "B", 11)
	p.text(labelX, y, "Grand Total:")
	p.textRight(right, y, utils.FormatRupees(inv.GrandTotal))
	return y + 15
}

func (r *PDFRenderer) drawFooter(p *pdfPage, company *entity.CompanyProfile, y float64) {
	pdf := p.pdf
	if y > p.height-footerReserve {
		pdf.AddPage()
		y = pageMargin
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)
	p.text(pageMargin, y, "Terms & Conditions:")
	pdf.SetFont("Helvetica", "", 7)
	for i, term := range invoiceTerms {
		p.text(pageMargin, y+float64(i+1)*5, term)
	}

	signatureX := p.width - pageMargin - 50
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 8)
	p.text(signatureX, y+5, "For "+company.Name)

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.3)
	pdf.Line(signatureX, y+15, p.width-pageMargin, y+15)

	pdf.SetFont("Helvetica", "", 8)
	p.text(signatureX+10, y+20, "Authorized Signature")
}

var _ port.InvoiceRenderer = (*PDFRenderer)(nil)
