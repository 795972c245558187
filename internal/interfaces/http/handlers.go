package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/gst-billing/internal/application/service"
	"github.com/garyjia/gst-billing/internal/domain/dashboard"
	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/garyjia/gst-billing/internal/infrastructure/export"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	invoices      service.InvoiceService
	company       service.CompanyService
	dashboard     service.DashboardService
	reset         service.ResetService
	defaultWindow dashboard.Window
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, defaultWindow dashboard.Window, logger Logger) *Handlers {
	if defaultWindow == "" {
		defaultWindow = dashboard.DefaultWindow
	}
	return &Handlers{
		invoices:      services.Invoice,
		company:       services.Company,
		dashboard:     services.Dashboard,
		reset:         services.Reset,
		defaultWindow: defaultWindow,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	// Field names the offending input on validation failures
	Field string `json:"field,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// CompanyRequest is the setup / settings form. Logo is a data URL; leaving it
// out keeps the stored logo.
type CompanyRequest struct {
	Name    string `json:"name"`
	GSTIN   string `json:"gstin"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Logo    string `json:"logo"`
}

// PaidRequest toggles the paid flag
type PaidRequest struct {
	Paid *bool `json:"paid" binding:"required"`
}

// ResetRequest must carry confirm=true
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// GenerateResponse is the body of a successful or partially successful generate
type GenerateResponse struct {
	Invoice   *service.InvoiceView `json:"invoice"`
	FileName  string               `json:"fileName,omitempty"`
	SavedPath string               `json:"savedPath,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// GetCompany handles GET /api/company
func (h *Handlers) GetCompany(c *gin.Context) {
	company, err := h.company.Get(c.Request.Context())
	if errors.Is(err, entity.ErrCompanyNotConfigured) {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: company})
}

// SetupCompany handles PUT /api/company
func (h *Handlers) SetupCompany(c *gin.Context) {
	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	input := service.CompanyInput{
		Name:    req.Name,
		GSTIN:   req.GSTIN,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	}
	if req.Logo != "" {
		logo, err := export.DecodeDataURL(req.Logo)
		if err != nil {
			h.writeError(c, entity.NewValidationError("logo", err.Error()))
			return
		}
		input.Logo = logo
	}

	company, err := h.company.Setup(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: company})
}

// UploadLogo handles PUT /api/company/logo (multipart field "logo")
func (h *Handlers) UploadLogo(c *gin.Context) {
	header, err := c.FormFile("logo")
	if err != nil {
		h.badRequest(c, "multipart field 'logo' is required")
		return
	}
	if header.Size > export.MaxLogoUploadBytes {
		h.writeError(c, entity.NewValidationError("logo", fmt.Sprintf("logo image exceeds %d bytes", export.MaxLogoUploadBytes)))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, export.MaxLogoUploadBytes+1))
	if err != nil {
		h.writeError(c, err)
		return
	}

	company, err := h.company.SetLogo(c.Request.Context(), data)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: company})
}

// RemoveLogo handles DELETE /api/company/logo
func (h *Handlers) RemoveLogo(c *gin.Context) {
	company, err := h.company.RemoveLogo(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: company})
}

// Reset handles POST /api/reset
func (h *Handlers) Reset(c *gin.Context) {
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	if err := h.reset.Reset(c.Request.Context(), req.Confirm); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// sendDocument writes a generated file. Attachments prompt a download; inline
// documents (previews) display in the browser.
func sendDocument(c *gin.Context, doc *service.Document, inline bool) {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, doc.FileName))
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// writeError maps the error taxonomy onto HTTP statuses
func (h *Handlers) writeError(c *gin.Context, err error) {
	var (
		validationErr *entity.ValidationError
		exportErr     *entity.ExportError
		storageErr    *entity.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: validationErr.Message, Field: validationErr.Field})
	case errors.Is(err, entity.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, entity.ErrCompanyNotConfigured):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.As(err, &exportErr):
		h.logger.Error("Export failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: err.Error()})
	case errors.As(err, &storageErr):
		h.logger.Error("Storage failure", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "invoice data could not be saved or read: " + storageErr.Err.Error()})
	default:
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
