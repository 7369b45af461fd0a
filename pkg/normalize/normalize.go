// Package normalize converts Brazilian-formatted statement values into the
// canonical forms used by the Koinly ledger.
//
// Every function is total: malformed input degrades to a documented default
// instead of an error, so a single bad cell never drops a transaction.
package normalize

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// InvalidDate is returned by Date when the input is not a valid dd/mm/yyyy date.
const InvalidDate = "Invalid Date"

// ZeroAmount is the CurrencyMajor result for empty or unparseable input.
const ZeroAmount = "0.00"

const (
	// statementDateLayout accepts one or two digit day and month.
	statementDateLayout = "2/1/2006"
	ledgerDateLayout    = "2006-01-02 15:04 MST"
	currencyMarker      = "R$"
)

var (
	nonAmountChars   = regexp.MustCompile(`[^\d.]`)
	nonQuantityChars = regexp.MustCompile(`[^0-9,.\-]+`)
)

// Text strips diacritics and lower-cases s. It is meant for comparing
// operation names, never for display.
func Text(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return ""
	}
	return strings.ToLower(out)
}

// Date converts a dd/mm/yyyy statement date to "yyyy-mm-dd 00:00 UTC".
// Statements carry no time of day. Anything that does not parse as a real
// calendar date yields InvalidDate.
func Date(s string) string {
	t, err := time.ParseInLocation(statementDateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return InvalidDate
	}
	return t.Format(ledgerDateLayout)
}

// CurrencyMajor converts an amount such as "R$ 30.000,00" to "30000.00".
// Dots are thousands separators and the comma is the decimal separator.
// The result always has two fractional digits; empty or malformed input
// yields ZeroAmount. Signs are discarded.
func CurrencyMajor(s string) string {
	v := strings.TrimSpace(strings.ReplaceAll(s, currencyMarker, ""))
	v = strings.ReplaceAll(v, ".", "")
	v = strings.ReplaceAll(v, ",", ".")
	v = nonAmountChars.ReplaceAllString(v, "")
	if v == "" {
		return ZeroAmount
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return ZeroAmount
	}
	return d.StringFixed(2)
}

// CryptoQuantity converts a comma-decimal quantity such as "1,714000" to
// "1.714000", keeping every digit the statement printed. Stray characters
// are removed and a minus sign survives only in leading position.
// Empty input yields "", which callers must keep distinct from a zero amount.
func CryptoQuantity(s string) string {
	v := nonQuantityChars.ReplaceAllString(strings.TrimSpace(s), "")
	if v == "" {
		return ""
	}

	negative := strings.HasPrefix(v, "-")
	v = strings.ReplaceAll(v, "-", "")
	if v == "" {
		return ""
	}
	if negative {
		v = "-" + v
	}
	return strings.ReplaceAll(v, ",", ".")
}

// IsPositive reports whether a CurrencyMajor result is strictly greater than zero.
func IsPositive(amount string) bool {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return false
	}
	return d.IsPositive()
}
