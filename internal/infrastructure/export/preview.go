package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/garyjia/gst-billing/internal/application/port"
	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// PreviewRenderer rasterizes the first page of a rendered invoice with MuPDF
type PreviewRenderer struct {
	dpi      float64
	maxWidth int
	logger   *zap.Logger
}

// NewPreviewRenderer creates a preview renderer. Pages wider than maxWidth
// pixels are scaled down; zero disables scaling.
func NewPreviewRenderer(dpi float64, maxWidth int, logger *zap.Logger) *PreviewRenderer {
	if dpi <= 0 {
		dpi = 96
	}
	return &PreviewRenderer{dpi: dpi, maxWidth: maxWidth, logger: logger}
}

// RenderPNG returns page 1 of the PDF as PNG bytes
func (r *PreviewRenderer) RenderPNG(ctx context.Context, pdf []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	img, err := doc.ImageDPI(0, r.dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize page: %w", err)
	}

	var buf bytes.Buffer
	if r.maxWidth > 0 && img.Bounds().Dx() > r.maxWidth {
		err = imaging.Encode(&buf, imaging.Resize(img, r.maxWidth, 0, imaging.Lanczos), imaging.PNG)
	} else {
		err = imaging.Encode(&buf, img, imaging.PNG)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	r.logger.Debug("Invoice preview rendered",
		zap.Int("pages", doc.NumPage()),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

var _ port.PreviewRenderer = (*PreviewRenderer)(nil)
