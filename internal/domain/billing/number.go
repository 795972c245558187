package billing

import (
	"fmt"
	"strconv"
	"strings"
)

const invoiceNoPrefix = "#"

// FirstInvoiceNumber is the counter value of a fresh store
const FirstInvoiceNumber int64 = 1

// FormatInvoiceNo renders a counter value as "#00042"
func FormatInvoiceNo(n int64) string {
	return fmt.Sprintf("%s%05d", invoiceNoPrefix, n)
}

// InvoiceNoDigits strips the leading '#' for use in file names and URLs
func InvoiceNoDigits(invoiceNo string) string {
	return strings.TrimPrefix(invoiceNo, invoiceNoPrefix)
}

// NormalizeInvoiceNo maps what a user types ("7", "00007", "#7") onto the
// stored form "#00007". Anything that is not a plain number keeps its text
// and gets the '#' prefix, so lookups fail with not-found rather than matching
// a different invoice.
func NormalizeInvoiceNo(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	digits := strings.TrimPrefix(s, invoiceNoPrefix)
	if isDigits(digits) {
		if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
			return FormatInvoiceNo(n)
		}
	}
	return invoiceNoPrefix + digits
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
