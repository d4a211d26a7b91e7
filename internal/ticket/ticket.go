// Package ticket implements the quick-sale cart engine: it owns the
// mutations of an open ticket, enforces snapshot stock ceilings and
// the merge-on-add rule, and recomputes totals after every change.
package ticket

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/pos-quick-sale/internal/model"
)

// ErrInvalidQuantity is returned when AddItem is asked to add fewer
// than one unit.  SetQuantity never returns it: a non-positive target
// quantity there means removal.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// ErrLineNotFound is returned by SetQuantity when the ticket has no
// line for the requested item.  RemoveItem deliberately does not use
// it; removal is idempotent.
var ErrLineNotFound = errors.New("no ticket line for item")

// StockError reports that a mutation would push a line past the
// stock recorded in the current catalog snapshot.  The ticket is left
// untouched when it is returned; the operator corrects the quantity
// and retries.
type StockError struct {
	ItemID    string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: requested %d, available %d",
		e.ItemID, e.Requested, e.Available)
}

// AddItem adds qty units of item to the ticket.
//
// When a line for the item already exists the quantities merge: the
// candidate quantity is the existing quantity plus qty, checked as a
// whole against the snapshot stock, so a failed add leaves the ticket
// exactly as it was.  The line's unit price is never re-captured on a
// merge.  When no line exists yet the item's current snapshot price
// is captured and a new line is inserted at the front, keeping the
// most-recently-added-first order the register displays.
func AddItem(t *model.Ticket, item model.CatalogItem, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if line := t.Line(item.ID); line != nil {
		candidate := line.Quantity + qty
		if candidate > item.Stock {
			return &StockError{ItemID: item.ID, Requested: candidate, Available: item.Stock}
		}
		line.Quantity = candidate
		line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(candidate)))
		recompute(t)
		return nil
	}
	if qty > item.Stock {
		return &StockError{ItemID: item.ID, Requested: qty, Available: item.Stock}
	}
	line := model.LineItem{
		ItemID:    item.ID,
		Name:      item.Name,
		Quantity:  qty,
		UnitPrice: item.UnitPrice,
		Subtotal:  item.UnitPrice.Mul(decimal.NewFromInt(int64(qty))),
	}
	t.Lines = append([]model.LineItem{line}, t.Lines...)
	recompute(t)
	return nil
}

// SetQuantity replaces the quantity of an existing line.  A target of
// zero or less removes the line and counts as success.  A target over
// the snapshot stock fails with StockError and leaves the ticket
// unchanged.  The line's captured unit price is kept.
func SetQuantity(t *model.Ticket, item model.CatalogItem, qty int) error {
	line := t.Line(item.ID)
	if qty <= 0 {
		RemoveItem(t, item.ID)
		return nil
	}
	if line == nil {
		return ErrLineNotFound
	}
	if qty > item.Stock {
		return &StockError{ItemID: item.ID, Requested: qty, Available: item.Stock}
	}
	line.Quantity = qty
	line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
	recompute(t)
	return nil
}

// RemoveItem deletes the line for itemID.  Removing an absent id is a
// no-op; the operation is idempotent by contract.
func RemoveItem(t *model.Ticket, itemID string) {
	for i := range t.Lines {
		if t.Lines[i].ItemID == itemID {
			t.Lines = append(t.Lines[:i], t.Lines[i+1:]...)
			recompute(t)
			return
		}
	}
}

// Clear resets the ticket to empty.  It always succeeds and is used
// both for the explicit "clear sale" action and after a committed
// submission.
func Clear(t *model.Ticket) {
	*t = model.NewTicket()
}

// recompute rebuilds the ticket totals from scratch by summing the
// line subtotals.  Totals are never patched incrementally, so partial
// updates or accumulated rounding cannot drift them.
func recompute(t *model.Ticket) {
	sum := decimal.Zero
	for i := range t.Lines {
		sum = sum.Add(t.Lines[i].Subtotal)
	}
	t.Subtotal = sum
	t.Total = sum // no tax or discount model on the quick-sale path
}
