package http

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/garyjia/gst-billing/internal/application/service"
	"github.com/garyjia/gst-billing/internal/domain/billing"
	"github.com/garyjia/gst-billing/internal/domain/entity"
)

// FormNumber accepts a JSON number, a numeric string, an empty string or null.
// Anything that does not parse is kept as "not entered".
type FormNumber struct {
	decimal.NullDecimal
}

func (n *FormNumber) UnmarshalJSON(data []byte) error {
	text := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if text == "null" {
		n.NullDecimal = decimal.NullDecimal{}
		return nil
	}
	n.NullDecimal = billing.ParseNumber(strings.TrimSpace(text))
	return nil
}

// ItemRequest is one line-item row of the invoice form
type ItemRequest struct {
	Description string     `json:"description"`
	HSN         string     `json:"hsn"`
	Quantity    FormNumber `json:"quantity"`
	Rate        FormNumber `json:"rate"`
	GSTPercent  FormNumber `json:"gstPercent"`
}

// InvoiceRequest is the invoice form. Date is YYYY-MM-DD; empty means today.
type InvoiceRequest struct {
	Date            string        `json:"date"`
	CustomerName    string        `json:"customerName"`
	CustomerGSTIN   string        `json:"customerGSTIN"`
	CustomerAddress string        `json:"customerAddress"`
	Items           []ItemRequest `json:"items"`
}

// toInput snapshots the form into the calculation engine's input
func (r InvoiceRequest) toInput() (billing.InvoiceDraftInput, error) {
	input := billing.InvoiceDraftInput{
		CustomerName:    r.CustomerName,
		CustomerGSTIN:   r.CustomerGSTIN,
		CustomerAddress: r.CustomerAddress,
		Items:           make([]billing.ItemInput, 0, len(r.Items)),
	}

	if date := strings.TrimSpace(r.Date); date != "" {
		d, err := civil.ParseDate(date)
		if err != nil {
			return input, entity.NewValidationError("date", "invalid date, expected YYYY-MM-DD")
		}
		input.Date = d
	}

	for _, item := range r.Items {
		input.Items = append(input.Items, billing.ItemInput{
			Description: item.Description,
			HSN:         item.HSN,
			Quantity:    item.Quantity.NullDecimal,
			Rate:        item.Rate.NullDecimal,
			GSTPercent:  item.GSTPercent.NullDecimal,
		})
	}
	return input, nil
}

func (h *Handlers) bindInvoice(c *gin.Context) (billing.InvoiceDraftInput, bool) {
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return billing.InvoiceDraftInput{}, false
	}
	input, err := req.toInput()
	if err != nil {
		h.writeError(c, err)
		return input, false
	}
	return input, true
}

// PreviewInvoice handles POST /api/invoices/preview
func (h *Handlers) PreviewInvoice(c *gin.Context) {
	input, ok := h.bindInvoice(c)
	if !ok {
		return
	}

	view, err := h.invoices.Preview(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// SaveDraft handles POST /api/invoices/drafts
func (h *Handlers) SaveDraft(c *gin.Context) {
	input, ok := h.bindInvoice(c)
	if !ok {
		return
	}

	view, err := h.invoices.SaveDraft(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: view})
}

// GenerateInvoice handles POST /api/invoices. The PDF is written to the output
// directory; download it with GET /api/invoices/:no/pdf.
func (h *Handlers) GenerateInvoice(c *gin.Context) {
	input, ok := h.bindInvoice(c)
	if !ok {
		return
	}

	result, err := h.invoices.Generate(c.Request.Context(), input)
	var exportErr *entity.ExportError
	if errors.As(err, &exportErr) && result != nil {
		h.logger.Error("Invoice saved without PDF", "invoice_no", result.Invoice.InvoiceNo, "error", err)
		c.JSON(http.StatusBadGateway, Response{
			Success: false,
			Data:    GenerateResponse{Invoice: result.Invoice},
			Error:   err.Error(),
		})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data: GenerateResponse{
			Invoice:   result.Invoice,
			FileName:  result.Document.FileName,
			SavedPath: result.Document.SavedPath,
		},
	})
}

// ListInvoices handles GET /api/invoices?status=&q=
func (h *Handlers) ListInvoices(c *gin.Context) {
	views, err := h.invoices.List(c.Request.Context(), service.ListQuery{
		Status: c.Query("status"),
		Search: c.Query("q"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: views})
}

// NextInvoiceNumber handles GET /api/invoices/next-number
func (h *Handlers) NextInvoiceNumber(c *gin.Context) {
	next, err := h.invoices.NextInvoiceNo(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"invoiceNo": next}})
}

// GetInvoice handles GET /api/invoices/:no
func (h *Handlers) GetInvoice(c *gin.Context) {
	view, err := h.invoices.Get(c.Request.Context(), c.Param("no"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// SetPaid handles PUT /api/invoices/:no/paid
func (h *Handlers) SetPaid(c *gin.Context) {
	var req PaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, `body must be {"paid": true|false}`)
		return
	}

	view, err := h.invoices.MarkPaid(c.Request.Context(), c.Param("no"), *req.Paid)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// DeleteInvoice handles DELETE /api/invoices/:no
func (h *Handlers) DeleteInvoice(c *gin.Context) {
	if err := h.invoices.Delete(c.Request.Context(), c.Param("no")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// DownloadPDF handles GET /api/invoices/:no/pdf
func (h *Handlers) DownloadPDF(c *gin.Context) {
	doc, err := h.invoices.ExportPDF(c.Request.Context(), c.Param("no"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	sendDocument(c, doc, false)
}

// PreviewImage handles GET /api/invoices/:no/preview.png
func (h *Handlers) PreviewImage(c *gin.Context) {
	doc, err := h.invoices.PreviewImage(c.Request.Context(), c.Param("no"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	sendDocument(c, doc, true)
}

// ShareText handles GET /api/invoices/:no/share
func (h *Handlers) ShareText(c *gin.Context) {
	text, err := h.invoices.ShareText(c.Request.Context(), c.Param("no"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"text": text}})
}
