package model

import "github.com/shopspring/decimal"

// LineItem is one line of an open ticket.  Name and UnitPrice are
// captured at the moment the item was first added; later catalog
// changes do not leak into an open ticket.
type LineItem struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Buyer carries the optional customer details attached to a sale.
// All fields may be empty; the gateway substitutes a walk-in identity
// at submission time when no name was entered.
type Buyer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// Ticket is the single mutable aggregate of the engine: the sale being
// assembled at a register.  Lines are kept most-recently-added first,
// which is both the display order and the deterministic iteration
// order relied on by tests.  Subtotal and Total are recomputed from
// the lines after every successful mutation rather than adjusted
// incrementally.
type Ticket struct {
	Lines    []LineItem      `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Total    decimal.Decimal `json:"total"`
	Buyer    Buyer           `json:"buyer"`
}

// NewTicket returns an empty open ticket with zeroed totals.
func NewTicket() Ticket {
	return Ticket{
		Lines:    []LineItem{},
		Subtotal: decimal.Zero,
		Total:    decimal.Zero,
	}
}

// Line returns a pointer to the line referencing itemID, or nil when
// the ticket holds no such line.
func (t *Ticket) Line(itemID string) *LineItem {
	for i := range t.Lines {
		if t.Lines[i].ItemID == itemID {
			return &t.Lines[i]
		}
	}
	return nil
}

// IsEmpty reports whether the ticket has no lines.
func (t *Ticket) IsEmpty() bool { return len(t.Lines) == 0 }

// Clone returns a deep copy of the ticket so callers can render or
// snapshot it without racing later mutations.
func (t *Ticket) Clone() Ticket {
	cp := *t
	cp.Lines = make([]LineItem, len(t.Lines))
	copy(cp.Lines, t.Lines)
	return cp
}
