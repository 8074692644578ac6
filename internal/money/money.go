// Package money parses loosely-formatted price text and keeps cart
// arithmetic in integer cents so repeated additions never drift.
package money

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// epsilon nudges values whose binary representation sits just under the
// true decimal (e.g. 19.99) onto the right side of the rounding boundary.
const epsilon = 2.220446049250313e-16

var (
	junkRe          = regexp.MustCompile(`[^\d.,-]`)
	trailingDecimal = regexp.MustCompile(`,(\d{1,2})$`)
)

// NormalizePrice parses a price string that may mix thousands and decimal
// separators, currency symbols, and non-breaking spaces. It reports false
// when no finite number can be recovered.
//
// A trailing ",dd" is promoted to a decimal separator before thousands
// separators are stripped; doing it the other way around misparses
// "1.234,56" — both European and US groupings must land on 1234.56.
func NormalizePrice(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}

	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, raw)
	cleaned = junkRe.ReplaceAllString(cleaned, "")
	cleaned = trailingDecimal.ReplaceAllString(cleaned, ".$1")
	cleaned = stripThousands(cleaned)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// stripThousands removes every '.' or ',' that follows a digit and is
// followed by exactly three digits ending at a non-digit or the end of
// the string.
func stripThousands(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c == '.' || c == ',') && i > 0 && isDigit(s[i-1]) && groupFollows(s, i+1) {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// groupFollows reports whether s[i:] starts with exactly three digits
// followed by a non-digit or the end of the string.
func groupFollows(s string, i int) bool {
	if i+3 > len(s) {
		return false
	}
	for j := i; j < i+3; j++ {
		if !isDigit(s[j]) {
			return false
		}
	}
	return i+3 == len(s) || !isDigit(s[i+3])
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ToCents converts a major-unit amount to integer cents.
func ToCents(n float64) int64 {
	return int64(math.Round((n + epsilon) * 100))
}

// FromCents converts integer cents back to a major-unit amount.
func FromCents(c int64) float64 {
	return float64(c) / 100
}

// Format renders an amount with exactly two decimals after cent rounding.
func Format(n float64) string {
	return strconv.FormatFloat(FromCents(ToCents(n)), 'f', 2, 64)
}

// LineTotalCents is the cent total of one cart line.
func LineTotalCents(unit float64, qty int) int64 {
	if qty < 1 {
		qty = 1
	}
	return ToCents(unit) * int64(qty)
}
