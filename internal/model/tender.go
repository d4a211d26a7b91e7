package model

import "github.com/shopspring/decimal"

// TenderMethod identifies how the buyer pays.  Values match the
// strings the backend expects on the sale record.
type TenderMethod string

const (
	TenderCash     TenderMethod = "CASH"
	TenderCard     TenderMethod = "CARD"
	TenderTransfer TenderMethod = "TRANSFER"
)

// Valid reports whether m is one of the known tender methods.
func (m TenderMethod) Valid() bool {
	switch m {
	case TenderCash, TenderCard, TenderTransfer:
		return true
	}
	return false
}

// TenderResult is the derived outcome of evaluating a tender against
// a ticket total.  It is recomputed on demand and never stored.
type TenderResult struct {
	Sufficient bool            `json:"sufficient"`
	ChangeDue  decimal.Decimal `json:"change_due"`
}
