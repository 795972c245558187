package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/garyjia/gst-billing/internal/application/port"
	"github.com/garyjia/gst-billing/internal/domain/entity"
	"go.uber.org/zap"
)

const pngDataURLPrefix = "data:image/png;base64,"

// MaxLogoUploadBytes caps the size of an uploaded logo before decoding
const MaxLogoUploadBytes = 5 << 20

// MaxLogoSourcePixels caps width × height of an upload. Compressed files can
// declare huge canvases, so the header is checked before any pixel is decoded.
const MaxLogoSourcePixels = 25_000_000

// LogoProcessor shrinks uploaded logos and stores them as PNG data URLs
type LogoProcessor struct {
	maxPx  int
	logger *zap.Logger
}

// NewLogoProcessor creates a processor fitting logos within maxPx × maxPx
func NewLogoProcessor(maxPx int, logger *zap.Logger) *LogoProcessor {
	if maxPx <= 0 {
		maxPx = 512
	}
	return &LogoProcessor{maxPx: maxPx, logger: logger}
}

// Normalize decodes any supported image (PNG, JPEG, GIF, BMP, TIFF), applies
// EXIF orientation, fits it within the size limit and re-encodes it as PNG.
func (p *LogoProcessor) Normalize(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", entity.NewValidationError("logo", "logo image is empty")
	}
	if len(data) > MaxLogoUploadBytes {
		return "", entity.NewValidationError("logo", fmt.Sprintf("logo image exceeds %d bytes", MaxLogoUploadBytes))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", entity.NewValidationError("logo", "unsupported or corrupt image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxLogoSourcePixels {
		return "", entity.NewValidationError("logo",
			fmt.Sprintf("logo image is %dx%d pixels, at most %d pixels allowed", cfg.Width, cfg.Height, MaxLogoSourcePixels))
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", entity.NewValidationError("logo", "unsupported or corrupt image")
	}

	bounds := img.Bounds()
	if bounds.Dx() > p.maxPx || bounds.Dy() > p.maxPx {
		img = imaging.Fit(img, p.maxPx, p.maxPx, imaging.Lanczos)
	}

	encoded, err := encodePNG(img)
	if err != nil {
		return "", fmt.Errorf("failed to encode logo: %w", err)
	}

	p.logger.Debug("Logo normalized",
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Int("bytes", len(encoded)))
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(encoded), nil
}

// DecodeDataURL extracts the payload of a base64 data URL
func DecodeDataURL(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("data URL is not base64 encoded")
	}
	return base64.StdEncoding.DecodeString(payload)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ port.LogoProcessor = (*LogoProcessor)(nil)
