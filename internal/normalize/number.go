// Package normalize converts locale-ambiguous numeric, date, currency and
// country values into canonical forms, and finalizes extracted invoice
// records.
package normalize

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmbiguousNumber parses a numeric string of unknown locale into a
// float64. Currency tokens, whitespace and apostrophe thousands separators
// are stripped; whichever of ',' and '.' occurs last in the cleaned string
// is taken as the decimal separator and every earlier grouping separator is
// dropped. Returns 0 for empty or unparseable input, never an error.
//
// "2,378.02" parses to 2378.02 and "6 834,99" parses to 6834.99.
func ParseAmbiguousNumber(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" || s == "-" {
		return 0
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	decimalIdx := lastComma
	if lastDot > lastComma {
		decimalIdx = lastDot
	}

	var cleaned strings.Builder
	for i, r := range s {
		switch r {
		case ',', '.':
			if i == decimalIdx {
				cleaned.WriteByte('.')
			}
			// earlier separators are thousands groupings
		default:
			cleaned.WriteRune(r)
		}
	}

	val, err := strconv.ParseFloat(cleaned.String(), 64)
	if err != nil {
		return 0
	}
	return val
}

// Round2 rounds a value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
