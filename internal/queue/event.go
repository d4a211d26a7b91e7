// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records committed sales.
package queue

// SaleLine is the per-line summary carried on a committed-sale event.
type SaleLine struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// SaleCommittedEvent is published after the backend confirms a sale.
// It carries enough for downstream consumers (receipt log, analytics,
// notifications) without calling the backend again.  Monetary fields
// are decimal strings to keep the wire format exact.
type SaleCommittedEvent struct {
	ReferenceID    string     `json:"reference_id"`
	ConfirmationID string     `json:"confirmation_id"`
	TenantID       string     `json:"tenant_id"`
	RegisterID     string     `json:"register_id"`
	Operator       string     `json:"operator"`
	BuyerName      string     `json:"buyer_name"`
	Method         string     `json:"method"`
	Total          string     `json:"total"`
	AmountTendered string     `json:"amount_tendered,omitempty"`
	ChangeDue      string     `json:"change_due,omitempty"`
	Lines          []SaleLine `json:"lines"`
	CommittedAt    string     `json:"committed_at"`
}
