// Package core holds the ledger domain: accounts, entries, transactions,
// the chart classifier, and the time-series builder.
//
// This file contains the lenient parsers used by CSV import. The defaults
// here are deliberate: imports are best-effort and a sloppy month or
// balance cell degrades to a usable value instead of failing the row.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var monthNames = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6, "jul": 7,
	"aug": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
	// common misspellings seen in real import files
	"janurary": 1, "feburary": 2,
}

// ParseMonth accepts an integer 1-12 or a case-insensitive month name
// (full, abbreviated, or a known misspelling). Anything unparseable
// defaults to January; callers wanting strict validation must pre-validate.
func ParseMonth(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 12 {
		return n
	}
	if n, ok := monthNames[s]; ok {
		return n
	}
	return 1
}

// ParseYear accepts an integer year in [1900, 2100]. Unlike month and
// balance, a bad year is a row-level error: there is no sane default.
func ParseYear(s string) (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidYear
	}
	if y < 1900 || y > 2100 {
		return 0, ErrInvalidYear
	}
	return y, nil
}

// ParseBalance accepts plain numbers, thousands separators, currency
// symbols, and accounting notation: "(1,234.56)" means -1234.56. The
// second return reports whether the cell parsed; on failure the balance is
// zero and the caller should record a warning rather than fail the row.
func ParseBalance(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+':
			b.WriteRune(r)
		case r == ',', r == '$', r == '€', r == '£', r == ' ':
			// separators and currency symbols are noise
		default:
			return decimal.Zero, false
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}
