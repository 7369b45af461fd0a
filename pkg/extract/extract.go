// Package extract recognizes transaction lines in Mynt statement text and
// pulls out their raw field values.
package extract

import (
	"regexp"
	"strings"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
)

// SaleOperation is the operation kind reported for every sale line,
// whatever spelling the statement used for its first token.
const SaleOperation = "Venda"

// Keywords are the operation spellings that make a line a candidate.
var Keywords = []string{"Depósito", "Deposito", "Venda", "Vend"}

const (
	salePrefix     = "Vend"
	currencyMarker = "R$"
)

// depositPattern captures operation, date, asset, quantity, unit price,
// fee and total, in that order. Tickers may contain any letter or digit,
// not only ASCII.
var depositPattern = regexp.MustCompile(
	`(Depósito|Deposito)\s+(\d{2}/\d{2}/\d{4})\s+([\p{L}\p{N}_]+)\s+([\d,]+)` +
		`\s+R\$\s*([\d.,]+)\s+R\$\s*([\d.,]+)\s+R\$\s*([\d.,]+)`,
)

// IsCandidate reports whether line contains any of Keywords. The check is
// case-sensitive and runs on the raw line.
func IsCandidate(line string) bool {
	for _, k := range Keywords {
		if strings.Contains(line, k) {
			return true
		}
	}
	return false
}

// CollapseSpaces trims line and replaces every run of whitespace with a
// single space.
func CollapseSpaces(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// Classify decides whether line encodes a deposit or a sale and returns its
// raw fields. The deposit shape is tried first. ok is false when neither
// shape matches; that is a normal outcome and not an error.
func Classify(line string) (fields api.Fields, ok bool) {
	line = CollapseSpaces(line)

	if m := depositPattern.FindStringSubmatch(line); m != nil {
		return api.Fields{
			Operation: m[1],
			Date:      m[2],
			Asset:     m[3],
			Quantity:  m[4],
			UnitPrice: m[5],
			Fee:       m[6],
			Total:     m[7],
		}, true
	}

	if strings.HasPrefix(line, salePrefix) {
		return classifySale(strings.Fields(line))
	}
	return api.Fields{}, false
}

// saleAmounts are the currency-tagged values of a sale line. A sale line
// lists its amounts as "R$ <value>" pairs and the first three pairs are
// always unit price, fee and total, in that order. Any further pairs are
// ignored.
type saleAmounts struct {
	UnitPrice string
	Fee       string
	Total     string
}

// requiredSaleAmounts is the number of currency-tagged tokens a sale line
// must carry to be accepted.
const requiredSaleAmounts = 3

func classifySale(tokens []string) (api.Fields, bool) {
	// operation, date, asset, quantity
	if len(tokens) < 4 {
		return api.Fields{}, false
	}

	amounts, ok := scanSaleAmounts(tokens)
	if !ok {
		return api.Fields{}, false
	}

	return api.Fields{
		Operation: SaleOperation,
		Date:      tokens[1],
		Asset:     tokens[2],
		Quantity:  tokens[3],
		UnitPrice: amounts.UnitPrice,
		Fee:       amounts.Fee,
		Total:     amounts.Total,
	}, true
}

// scanSaleAmounts collects the token following each standalone currency
// marker. It fails closed when fewer than requiredSaleAmounts are found.
func scanSaleAmounts(tokens []string) (saleAmounts, bool) {
	var found []string
	for i, tok := range tokens {
		if tok == currencyMarker && i+1 < len(tokens) {
			found = append(found, tokens[i+1])
		}
	}
	if len(found) < requiredSaleAmounts {
		return saleAmounts{}, false
	}
	return saleAmounts{UnitPrice: found[0], Fee: found[1], Total: found[2]}, true
}
