package repository

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/garyjia/gst-billing/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/gst-billing/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupSlots(t *testing.T) (*sqlite.SlotStore, *database.DB) {
	t.Helper()
	logger := zap.NewNop()
	conn, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "billing.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, database.NewMigrator(conn, logger).RunMigrations(database.Migrations()))
	return sqlite.NewSlotStore(sqlite.NewDB(conn.DB, logger), logger), conn
}

func sampleInvoice(customer string, d civil.Date) *entity.Invoice {
	return &entity.Invoice{
		Date:          d,
		CustomerName:  customer,
		CustomerGSTIN: "27AAPFU0939F1ZV",
		Items: []entity.LineItem{
			{
				Description: "Consulting",
				HSN:         "998314",
				Quantity:    decimal.RequireFromString("1.5"),
				Rate:        decimal.RequireFromString("1000.10"),
				GSTPercent:  decimal.NewFromInt(18),
			},
			{
				Description: "Travel",
				Quantity:    decimal.NewFromInt(1),
				Rate:        decimal.RequireFromString("333.33"),
				GSTPercent:  decimal.RequireFromString("12.5"),
			},
		},
	}
}

func TestInvoiceRepository_CreateAssignsNumbers(t *testing.T) {
	ctx := context.Background()
	slots, _ := setupSlots(t)
	repo := NewInvoiceRepository(slots, zap.NewNop())
	d := civil.Date{Year: 2024, Month: 1, Day: 10}

	next, err := repo.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)

	first, err := repo.Create(ctx, sampleInvoice("Acme", d), false)
	require.NoError(t, err)
	assert.Equal(t, "#00001", first.InvoiceNo)
	assert.False(t, first.IsDraft)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, "2145.17", first.GrandTotal.StringFixed(2))

	draft, err := repo.Create(ctx, sampleInvoice("Beta", d), true)
	require.NoError(t, err)
	assert.Equal(t, "#00002", draft.InvoiceNo)
	assert.True(t, draft.IsDraft)

	next, err = repo.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), next)
}

func TestInvoiceRepository_DeleteNeverReusesNumbers(t *testing.T) {
	ctx := context.Background()
	slots, _ := setupSlots(t)
	repo := NewInvoiceRepository(slots, zap.NewNop())
	d := civil.Date{Year: 2024, Month: 1, Day: 10}

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, sampleInvoice("Acme", d), false)
		require.NoError(t, err)
	}

	require.NoError(t, repo.Delete(ctx, "#00003"))
	_, err := repo.Find(ctx, "#00003")
	assert.ErrorIs(t, err, entity.ErrInvoiceNotFound)

	created, err := repo.Create(ctx, sampleInvoice("Acme", d), false)
	require.NoError(t, err)
	assert.Equal(t, "#00004", created.InvoiceNo)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	nos := make([]string, 0, len(list))
	for _, inv := range list {
		nos = append(nos, inv.InvoiceNo)
	}
	assert.Equal(t, []string{"#00001", "#00002", "#00004"}, nos)
}

func TestInvoiceRepository_MissingInvoiceIsNoOp(t *testing.T) {
	ctx := context.Background()
	slots, _ := setupSlots(t)
	repo := NewInvoiceRepository(slots, zap.NewNop())

	_, err := repo.Create(ctx, sampleInvoice("Acme", civil.Date{Year: 2024, Month: 2, Day: 1}), false)
	require.NoError(t, err)
	before, _, err := slots.Get(ctx, sqlite.SlotInvoices)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, "#00099"), entity.ErrInvoiceNotFound)
	_, err = repo.SetPaid(ctx, "#00099", true)
	assert.ErrorIs(t, err, entity.ErrInvoiceNotFound)

	after, _, err := slots.Get(ctx, sqlite.SlotInvoices)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	next, err := repo.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)
}

func TestInvoiceRepository_SetPaid(t *testing.T) {
	ctx := context.Background()
	slots, _ := setupSlots(t)
	repo := NewInvoiceRepository(slots, zap.NewNop())

	created, err := repo.Create(ctx, sampleInvoice("Acme", civil.Date{Year: 2024, Month: 2, Day: 1}), false)
	require.NoError(t, err)

	updated, err := repo.SetPaid(ctx, created.InvoiceNo, true)
	require.NoError(t, err)
	assert.True(t, updated.IsPaid)

	found, err := repo.Find(ctx, created.InvoiceNo)
	require.NoError(t, err)
	assert.True(t, found.IsPaid)

	_, err = repo.SetPaid(ctx, created.InvoiceNo, false)
	require.NoError(t, err)
	found, err = repo.Find(ctx, created.InvoiceNo)
	require.NoError(t, err)
	assert.False(t, found.IsPaid)
}

func TestInvoiceRepository_RoundTripIsLossless(t *testing.T) {
	ctx := context.Background()
	slots, _ := setupSlots(t)
	repo := NewInvoiceRepository(slots, zap.NewNop())
	repo.now = func() time.Time { return time.Date(2024, 3, 1, 10, 30, 15, 123456789, time.UTC) }

	created, err := repo.Create(ctx, sampleInvoice("Acme & Sons", civil.Date{Year: 2024, Month: 2, Day: 29}), true)
	require.NoError(t, err)

	found, err := repo.Find(ctx, created.InvoiceNo)
	require.NoError(t, err)

	want, err := json.Marshal(created)
	require.NoError(t, err)
	got, err := json.Marshal(found)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))

	assert.Equal(t, created.Date, found.Date)
	assert.True(t, created.CreatedAt.Equal(found.CreatedAt))
	require.Len(t, found.Items, 2)
	assert.True(t, created.Items[1].GSTAmount.Equal(found.Items[1].GSTAmount))
	assert.True(t, created.TotalGST.Equal(found.TotalGST))
}

func TestInvoiceRepository_ReadsNumericLegacyValues(t *testing.T) {
	ctx := context.Background()
	slots, _ := setupSlots(t)
	repo := NewInvoiceRepository(slots, zap.NewNop())

	legacy := `[{"invoiceNo":"#00001","date":"2024-01-05","customerName":"Old",
		"customerGSTIN":"","customerAddress":"","items":[{"description":"Pen","hsn":"",
		"quantity":2,"rate":10.5,"gstPercent":18,"amount":21,"gstAmount":3.78}],
		"subtotal":21,"totalGST":3.78,"grandTotal":24.78,"createdAt":"2024-01-05T08:00:00.000Z",
		"isDraft":false,"isPaid":false}]`
	require.NoError(t, slots.Put(ctx, sqlite.SlotInvoices, legacy))
	require.NoError(t, slots.Put(ctx, sqlite.SlotInvoiceNumber, "2"))

	inv, err := repo.Find(ctx, "#00001")
	require.NoError(t, err)
	assert.Equal(t, "24.78", inv.GrandTotal.StringFixed(2))
	assert.Equal(t, civil.Date{Year: 2024, Month: 1, Day: 5}, inv.Date)
}

func TestInvoiceRepository_CorruptSlotsSurfaceStorageErrors(t *testing.T) {
	ctx := context.Background()
	slots, _ := setupSlots(t)
	repo := NewInvoiceRepository(slots, zap.NewNop())

	require.NoError(t, slots.Put(ctx, sqlite.SlotInvoiceNumber, "not-a-number"))
	_, err := repo.Create(ctx, sampleInvoice("Acme", civil.Date{Year: 2024, Month: 1, Day: 1}), false)
	var storageErr *entity.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "create", storageErr.Op)

	require.NoError(t, slots.Put(ctx, sqlite.SlotInvoiceNumber, "1"))
	require.NoError(t, slots.Put(ctx, sqlite.SlotInvoices, "{broken"))
	_, err = repo.List(ctx)
	assert.True(t, errors.As(err, &storageErr))
}

func TestInvoiceRepository_ClosedDatabase(t *testing.T) {
	ctx := context.Background()
	slots, conn := setupSlots(t)
	repo := NewInvoiceRepository(slots, zap.NewNop())
	require.NoError(t, conn.Close())

	_, err := repo.Create(ctx, sampleInvoice("Acme", civil.Date{Year: 2024, Month: 1, Day: 1}), false)
	var storageErr *entity.StorageError
	assert.True(t, errors.As(err, &storageErr))
}

func TestCompanyRepository(t *testing.T) {
	ctx := context.Background()
	slots, _ := setupSlots(t)
	repo := NewCompanyRepository(slots, zap.NewNop())

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, entity.ErrCompanyNotConfigured)

	profile := &entity.CompanyProfile{Name: "Sharma Traders", GSTIN: "27AAPFU0939F1ZV", Address: "Pune", Email: "a@b.in"}
	require.NoError(t, repo.Save(ctx, profile))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, profile, got)
}

func TestStateResetter(t *testing.T) {
	ctx := context.Background()
	slots, _ := setupSlots(t)
	invoices := NewInvoiceRepository(slots, zap.NewNop())
	company := NewCompanyRepository(slots, zap.NewNop())

	require.NoError(t, company.Save(ctx, &entity.CompanyProfile{Name: "Sharma Traders"}))
	_, err := invoices.Create(ctx, sampleInvoice("Acme", civil.Date{Year: 2024, Month: 1, Day: 1}), false)
	require.NoError(t, err)

	require.NoError(t, NewStateResetter(slots, zap.NewNop()).Reset(ctx))

	_, err = company.Get(ctx)
	assert.ErrorIs(t, err, entity.ErrCompanyNotConfigured)
	list, err := invoices.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	next, err := invoices.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)
}
