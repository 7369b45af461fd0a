// Package koinly maps extracted statement fields onto Koinly's universal
// ledger format.
package koinly

import (
	"strings"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
	"github.com/ArionMiles/mynt2koinly/pkg/normalize"
)

// FiatCurrency is the currency of every fee and sale proceeds on a Mynt statement.
const FiatCurrency = "BRL"

// DepositLabel is the Koinly label attached to deposits.
const DepositLabel = "deposit"

const (
	saleMarker    = "vend"
	depositMarker = "deposit"
)

// Kind is the ledger classification of an operation.
type Kind int

const (
	// KindUnknown operations keep empty sent and received legs.
	KindUnknown Kind = iota
	KindSale
	KindDeposit
)

func (k Kind) String() string {
	switch k {
	case KindSale:
		return "sale"
	case KindDeposit:
		return "deposit"
	default:
		return "unknown"
	}
}

// KindOf classifies a raw operation name by substring after removing
// accents and case. Sale wins when both markers are present.
func KindOf(operation string) Kind {
	op := normalize.Text(operation)
	switch {
	case strings.Contains(op, saleMarker):
		return KindSale
	case strings.Contains(op, depositMarker):
		return KindDeposit
	default:
		return KindUnknown
	}
}

// Map normalizes f and lays it out as a ledger record. It never fails: bad
// values degrade to the defaults documented in package normalize. A fee that
// is not strictly positive is left empty together with its currency.
func Map(f api.Fields) api.Record {
	rec := api.Record{
		Date:        normalize.Date(f.Date),
		Description: f.Operation,
	}

	if fee := normalize.CurrencyMajor(f.Fee); normalize.IsPositive(fee) {
		rec.FeeAmount = fee
		rec.FeeCurrency = FiatCurrency
	}

	quantity := normalize.CryptoQuantity(f.Quantity)

	switch KindOf(f.Operation) {
	case KindSale:
		rec.SentAmount = quantity
		rec.SentCurrency = f.Asset
		rec.ReceivedAmount = normalize.CurrencyMajor(f.Total)
		rec.ReceivedCurrency = FiatCurrency
	case KindDeposit:
		rec.ReceivedAmount = quantity
		rec.ReceivedCurrency = f.Asset
		rec.Label = DepositLabel
	}

	return rec
}
