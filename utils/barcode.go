package utils

import "strings"

const (
	minBarcodeLen = 8
	maxBarcodeLen = 14
)

// NormalizeBarcode trims b and reports whether it is 8 to 14 ASCII digits.
func NormalizeBarcode(b string) (string, bool) {
	b = strings.TrimSpace(b)
	if len(b) < minBarcodeLen || len(b) > maxBarcodeLen {
		return b, false
	}
	for i := 0; i < len(b); i++ {
		if b[i] < '0' || b[i] > '9' {
			return b, false
		}
	}
	return b, true
}
