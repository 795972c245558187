package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/garyjia/gst-billing/internal/domain/billing"
	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func testInvoice(items int) *entity.Invoice {
	inv := &entity.Invoice{
		InvoiceNo:       "#00007",
		Date:            civil.Date{Year: 2024, Month: 1, Day: 5},
		CustomerName:    "Acme Pvt. Ltd.",
		CustomerGSTIN:   "27AAPFU0939F1ZV",
		CustomerAddress: "Plot 12, MIDC Industrial Area, Bhosari, Pune, Maharashtra 411026",
		CreatedAt:       time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
	}
	for i := 0; i < items; i++ {
		inv.Items = append(inv.Items, entity.LineItem{
			Description: fmt.Sprintf("Annual maintenance contract for equipment lot %d including spares", i+1),
			HSN:         "998714",
			Quantity:    decimal.NewFromInt(2),
			Rate:        decimal.RequireFromString("1250.50"),
			GSTPercent:  decimal.NewFromInt(18),
		})
	}
	billing.Recompute(inv)
	return inv
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: 80, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// pngWithDeclaredSize encodes a 1x1 PNG, then rewrites its IHDR to claim w x h
func pngWithDeclaredSize(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := testPNG(t, 1, 1)
	require.Equal(t, "IHDR", string(data[12:16]))
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestPDFRenderer_Render(t *testing.T) {
	r := NewPDFRenderer(zap.NewNop())
	company := &entity.CompanyProfile{
		Name: "Sharma Traders", GSTIN: "27AAPFU0939F1ZV", Address: "MG Road, Pune",
		Phone: "9800000000", Email: "accounts@sharma.in",
	}

	t.Run("without logo", func(t *testing.T) {
		out, err := r.Render(context.Background(), testInvoice(2), company)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	})

	t.Run("with logo and many items", func(t *testing.T) {
		withLogo := *company
		withLogo.Logo = pngDataURLPrefix + base64.StdEncoding.EncodeToString(testPNG(t, 40, 40))

		out, err := r.Render(context.Background(), testInvoice(60), &withLogo)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
		// one /Type /Pages node plus a /Type /Page per page
		assert.Greater(t, bytes.Count(out, []byte("/Type /Page")), 2)
	})

	t.Run("long description breaks across pages", func(t *testing.T) {
		inv := testInvoice(1)
		inv.Items[0].Description = strings.Repeat("preventive maintenance visit with spares ", 120)

		out, err := r.Render(context.Background(), inv, company)
		require.NoError(t, err)
		// the wrapped lines alone fill more than two pages, so at least three
		// /Type /Page nodes follow the /Type /Pages node
		assert.GreaterOrEqual(t, bytes.Count(out, []byte("/Type /Page")), 4)
	})

	t.Run("unreadable logo falls back to placeholder", func(t *testing.T) {
		broken := *company
		broken.Logo = "data:image/png;base64,AAAA"
		out, err := r.Render(context.Background(), testInvoice(1), &broken)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	})

	t.Run("requires company", func(t *testing.T) {
		_, err := r.Render(context.Background(), testInvoice(1), nil)
		assert.ErrorIs(t, err, entity.ErrCompanyNotConfigured)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.Render(ctx, testInvoice(1), company)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPreviewRenderer_RenderPNG(t *testing.T) {
	pdf, err := NewPDFRenderer(zap.NewNop()).Render(context.Background(), testInvoice(3),
		&entity.CompanyProfile{Name: "Sharma Traders"})
	require.NoError(t, err)

	out, err := NewPreviewRenderer(72, 400, zap.NewNop()).RenderPNG(context.Background(), pdf)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 400)

	_, err = NewPreviewRenderer(72, 0, zap.NewNop()).RenderPNG(context.Background(), []byte("not a pdf"))
	assert.Error(t, err)
}

func TestRegisterWriter_Write(t *testing.T) {
	paid := testInvoice(1)
	paid.IsPaid = true
	overdue := testInvoice(2)
	overdue.InvoiceNo = "#00008"

	out, err := NewRegisterWriter(zap.NewNop()).Write(context.Background(),
		[]*entity.Invoice{paid, overdue}, civil.Date{Year: 2024, Month: 2, Day: 1})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(registerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Invoice No", rows[0][0])
	assert.Equal(t, "#00007", rows[1][0])
	assert.Equal(t, "05/01/2024", rows[1][1])
	assert.Equal(t, "Paid", rows[1][4])
	assert.Equal(t, "Overdue", rows[2][4])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "2 invoices", rows[3][4])

	raw, err := f.GetCellValue(registerSheet, "H4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "8853.54", raw)
}

func TestRegisterWriter_Empty(t *testing.T) {
	out, err := NewRegisterWriter(zap.NewNop()).Write(context.Background(), nil, civil.Date{Year: 2024, Month: 2, Day: 1})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(registerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "0 invoices", rows[1][4])
}

func TestLogoProcessor_Normalize(t *testing.T) {
	p := NewLogoProcessor(64, zap.NewNop())
	ctx := context.Background()

	t.Run("shrinks large images", func(t *testing.T) {
		dataURL, err := p.Normalize(ctx, testPNG(t, 256, 128))
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(dataURL, pngDataURLPrefix))

		raw, err := DecodeDataURL(dataURL)
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(raw))
		require.NoError(t, err)
		assert.Equal(t, 64, img.Bounds().Dx())
		assert.Equal(t, 32, img.Bounds().Dy())
	})

	t.Run("converts jpeg to png", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10)), nil))
		dataURL, err := p.Normalize(ctx, buf.Bytes())
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(dataURL, pngDataURLPrefix))
	})

	t.Run("rejects oversized canvas before decoding", func(t *testing.T) {
		_, err := p.Normalize(ctx, pngWithDeclaredSize(t, 20000, 20000))
		require.Error(t, err)
		assert.True(t, entity.IsValidation(err))
		assert.Contains(t, err.Error(), "20000x20000")
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := p.Normalize(ctx, []byte("definitely not an image"))
		assert.True(t, entity.IsValidation(err))

		_, err = p.Normalize(ctx, nil)
		assert.True(t, entity.IsValidation(err))
	})
}

func TestDecodeDataURL(t *testing.T) {
	raw, err := DecodeDataURL("data:text/plain;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(raw))

	_, err = DecodeDataURL("https://example.com/logo.png")
	assert.Error(t, err)
	_, err = DecodeDataURL("data:text/plain,hello")
	assert.Error(t, err)
}
