package port

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/garyjia/gst-billing/internal/domain/entity"
)

// InvoiceRenderer draws a finalized invoice as a PDF document
type InvoiceRenderer interface {
	Render(ctx context.Context, invoice *entity.Invoice, company *entity.CompanyProfile) ([]byte, error)
}

// PreviewRenderer rasterizes the first page of a PDF to PNG
type PreviewRenderer interface {
	RenderPNG(ctx context.Context, pdf []byte) ([]byte, error)
}

// RegisterWriter produces a spreadsheet listing invoices with their totals
type RegisterWriter interface {
	Write(ctx context.Context, invoices []*entity.Invoice, today civil.Date) ([]byte, error)
}

// LogoProcessor decodes an uploaded image and returns it as a normalized data URL
type LogoProcessor interface {
	Normalize(ctx context.Context, image []byte) (string, error)
}
