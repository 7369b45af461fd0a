// Package api defines the core interfaces and data structures for mynt2koinly.
package api

import "context"

// Header is the fixed Koinly universal-format header row.
var Header = []string{
	"Date",
	"Sent Amount",
	"Sent Currency",
	"Received Amount",
	"Received Currency",
	"Fee Amount",
	"Fee Currency",
	"Net Worth Amount",
	"Net Worth Currency",
	"Label",
	"Description",
	"TxHash",
}

// Fields holds the raw values pulled out of one statement line that was
// recognized as a transaction. Nothing here is normalized yet.
type Fields struct {
	Operation string
	Date      string
	Asset     string
	Quantity  string
	UnitPrice string
	Fee       string
	Total     string
}

// Values returns the fields in statement column order.
func (f Fields) Values() []string {
	return []string{f.Operation, f.Date, f.Asset, f.Quantity, f.UnitPrice, f.Fee, f.Total}
}

// Record is one normalized ledger row in Koinly's universal format.
type Record struct {
	Date             string `json:"Date"`
	SentAmount       string `json:"Sent Amount"`
	SentCurrency     string `json:"Sent Currency"`
	ReceivedAmount   string `json:"Received Amount"`
	ReceivedCurrency string `json:"Received Currency"`
	FeeAmount        string `json:"Fee Amount"`
	FeeCurrency      string `json:"Fee Currency"`
	// NetWorthAmount, NetWorthCurrency and TxHash are never populated from
	// a Mynt statement but are part of the import format.
	NetWorthAmount   string `json:"Net Worth Amount"`
	NetWorthCurrency string `json:"Net Worth Currency"`
	Label            string `json:"Label"`
	Description      string `json:"Description"`
	TxHash           string `json:"TxHash"`
}

// Row returns the record as a slice ordered like Header.
func (r Record) Row() []string {
	return []string{
		r.Date,
		r.SentAmount,
		r.SentCurrency,
		r.ReceivedAmount,
		r.ReceivedCurrency,
		r.FeeAmount,
		r.FeeCurrency,
		r.NetWorthAmount,
		r.NetWorthCurrency,
		r.Label,
		r.Description,
		r.TxHash,
	}
}

// Page is the ordered text of one document page, one entry per line.
type Page struct {
	Number int
	Lines  []string
}

// Reader turns the raw bytes of a statement document into pages of text.
type Reader interface {
	Read(ctx context.Context, data []byte) ([]Page, error)
}

// Writer persists a complete, already sorted set of ledger records.
// Implementations must emit their header (or schema) even when records is empty.
type Writer interface {
	Write(ctx context.Context, records []Record) error
}
