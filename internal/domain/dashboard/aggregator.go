package dashboard

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DefaultRecentLimit is the number of invoices in the recent view
const DefaultRecentLimit = 5

// Summary is the dashboard for one filter selection
type Summary struct {
	Window          Window            `json:"window"`
	PeriodLabel     string            `json:"periodLabel"`
	TotalSales      decimal.Decimal   `json:"totalSales"`
	TotalGSTPayable decimal.Decimal   `json:"totalGSTPayable"`
	InvoiceCount    int               `json:"invoiceCount"`
	OverdueCount    int               `json:"overdueCount"`
	Outstanding     decimal.Decimal   `json:"outstanding"`
	Recent          []*entity.Invoice `json:"recent"`
}

// Aggregator computes dashboard summaries over an invoice collection
type Aggregator struct {
	recentLimit int
}

// NewAggregator creates an aggregator; non-positive limits use DefaultRecentLimit
func NewAggregator(recentLimit int) *Aggregator {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &Aggregator{recentLimit: recentLimit}
}

// Select returns the invoices inside the filter window, in collection order
func Select(invoices []*entity.Invoice, f Filter, now time.Time) []*entity.Invoice {
	selected := make([]*entity.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if f.Includes(inv.Date, now) {
			selected = append(selected, inv)
		}
	}
	return selected
}

// Aggregate filters the collection and totals it. Drafts count like any other
// invoice. GST is reported as one combined figure.
func (a *Aggregator) Aggregate(invoices []*entity.Invoice, f Filter, now time.Time) Summary {
	selected := Select(invoices, f, now)
	today := civil.DateOf(now)

	s := Summary{
		Window:          f.Window,
		PeriodLabel:     f.Label(),
		TotalSales:      decimal.Zero,
		TotalGSTPayable: decimal.Zero,
		Outstanding:     decimal.Zero,
		InvoiceCount:    len(selected),
	}
	for _, inv := range selected {
		s.TotalSales = s.TotalSales.Add(inv.GrandTotal)
		s.TotalGSTPayable = s.TotalGSTPayable.Add(inv.TotalGST)

		switch inv.Status(today) {
		case entity.StatusOverdue:
			s.OverdueCount++
			s.Outstanding = s.Outstanding.Add(inv.GrandTotal)
		case entity.StatusUnpaid:
			s.Outstanding = s.Outstanding.Add(inv.GrandTotal)
		}
	}

	s.Recent = Recent(selected, a.recentLimit)
	return s
}

// Recent returns the newest n invoices by date. Equal dates keep collection order.
func Recent(invoices []*entity.Invoice, n int) []*entity.Invoice {
	sorted := SortByDateDesc(invoices)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// SortByDateDesc returns a copy sorted newest first; the sort is stable
func SortByDateDesc(invoices []*entity.Invoice) []*entity.Invoice {
	sorted := make([]*entity.Invoice, len(invoices))
	copy(sorted, invoices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted
}
