// Package normalize converts heterogeneous monetary text into decimal values.
//
// Marketplace and bank exports mix plain numbers with currency-marked text
// ("Rs. 1,000", "INR 250.50", "₹99"). ParseAmount absorbs all of these and
// never fails: unparsable input normalizes to zero so a reconciliation run
// always covers the full dataset, surfacing bad cells as unmatched or
// large-difference rows instead of aborting the whole run.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numeralPattern matches the first signed decimal numeral in cleaned text.
var numeralPattern = regexp.MustCompile(`[-+]?\d+(\.\d+)?`)

// currencyMarkers are stripped before numeral extraction. "â¹" is the UTF-8
// rupee sign read back as Latin-1, common in exports that went through a
// mis-configured spreadsheet round trip.
var currencyMarkers = []string{",", "Rs", "INR", "₹", "â¹"}

// ParseAmount parses a raw cell value into a decimal amount.
//
// Already-numeric input is returned verbatim as a decimal. Otherwise the
// text is cleaned of thousands separators and currency markers and the
// first signed numeral is extracted. Empty input, a missing numeral, or any
// other failure yields decimal.Zero; ParseAmount never returns an error.
func ParseAmount(raw string) decimal.Decimal {
	txt := strings.TrimSpace(raw)
	if txt == "" {
		return decimal.Zero
	}

	if d, err := decimal.NewFromString(txt); err == nil {
		return d
	}

	for _, marker := range currencyMarkers {
		txt = strings.ReplaceAll(txt, marker, "")
	}
	txt = strings.TrimSpace(txt)

	numeral := numeralPattern.FindString(txt)
	if numeral == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(numeral)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Identifier trims surrounding whitespace from an identifier. Identifiers
// are compared byte-for-byte after trimming.
func Identifier(id string) string {
	return strings.TrimSpace(id)
}
