package utils

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

var shortMonths = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FormatINR formats an amount in Indian Rupee format (₹12,34,567.89).
// Rounds half away from zero to two places; grouping is last 3 digits, then 2s.
func FormatINR(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	formatted := "₹" + groupIndian(intPart) + "." + fracPart
	if amount.Round(2).IsNegative() {
		return "-" + formatted
	}
	return formatted
}

// FormatRupees formats an amount the way printed documents show it: "Rs. 1234.50".
// The PDF core fonts carry no rupee glyph.
func FormatRupees(amount decimal.Decimal) string {
	return "Rs. " + amount.StringFixed(2)
}

// FormatPercent formats a GST rate without trailing zeros: 18 → "18%", 2.5 → "2.5%"
func FormatPercent(pct decimal.Decimal) string {
	return pct.String() + "%"
}

// FormatDate formats a calendar date as dd/mm/yyyy
func FormatDate(d civil.Date) string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

// FormatDateLong formats a calendar date as dd-Mon-yyyy, e.g. 05-Jan-2024
func FormatDateLong(d civil.Date) string {
	month := "???"
	if d.Month >= 1 && d.Month <= 12 {
		month = shortMonths[d.Month-1]
	}
	return fmt.Sprintf("%02d-%s-%04d", d.Day, month, d.Year)
}

// groupIndian inserts separators using the Indian numbering system.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	result := digits[len(digits)-3:]
	remaining := digits[:len(digits)-3]
	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	return remaining + "," + result
}
