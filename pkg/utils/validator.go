package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	gstinRegex       = regexp.MustCompile(`^[0-9A-Z]{15}$`)
	controlRegex     = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	nonFileRuneRegex = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// MaxHSNLength is the longest HSN/SAC classification code accepted on a line item
const MaxHSNLength = 8

// NormalizeGSTIN trims and uppercases a GST identification number
func NormalizeGSTIN(gstin string) string {
	return strings.ToUpper(strings.TrimSpace(gstin))
}

// ValidateGSTIN checks a normalized GSTIN is 15 uppercase alphanumerics.
// An empty GSTIN is valid; the field is optional everywhere.
func ValidateGSTIN(gstin string) error {
	if gstin == "" {
		return nil
	}
	if !gstinRegex.MatchString(gstin) {
		return fmt.Errorf("GSTIN must be 15 letters or digits: %s", gstin)
	}
	return nil
}

// ValidateHSN checks the HSN/SAC code length
func ValidateHSN(hsn string) error {
	if len([]rune(hsn)) > MaxHSNLength {
		return fmt.Errorf("HSN/SAC code must be at most %d characters: %s", MaxHSNLength, hsn)
	}
	return nil
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlRegex.ReplaceAllString(s, "")
}

// SanitizeFileComponent replaces every character outside [A-Za-z0-9] with '_'
func SanitizeFileComponent(s string) string {
	return nonFileRuneRegex.ReplaceAllString(s, "_")
}
