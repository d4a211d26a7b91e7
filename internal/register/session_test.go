package register

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/pos-quick-sale/internal/catalog"
	"github.com/iliyamo/pos-quick-sale/internal/model"
	"github.com/iliyamo/pos-quick-sale/internal/ticket"
)

func testItem() model.CatalogItem {
	return model.CatalogItem{ID: "a", Name: "Coffee", UnitPrice: decimal.RequireFromString("10.00"), Stock: 5}
}

func TestMutateWhileOpen(t *testing.T) {
	s := NewSession("t1", "r1")
	err := s.Mutate(func(tk *model.Ticket) error {
		return ticket.AddItem(tk, testItem(), 2)
	})
	require.NoError(t, err)

	tk, state := s.View()
	assert.Equal(t, model.StateOpen, state)
	require.Len(t, tk.Lines, 1)
	assert.Equal(t, 2, tk.Lines[0].Quantity)
}

func TestMutateRejectedWhileSubmitting(t *testing.T) {
	s := NewSession("t1", "r1")
	require.NoError(t, s.Mutate(func(tk *model.Ticket) error {
		return ticket.AddItem(tk, testItem(), 1)
	}))

	_, err := s.BeginSubmit(nil)
	require.NoError(t, err)

	err = s.Mutate(func(tk *model.Ticket) error {
		return ticket.AddItem(tk, testItem(), 1)
	})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	// After the submission window closes the register mutates again.
	s.FinishSubmit(false)
	assert.NoError(t, s.Mutate(func(tk *model.Ticket) error {
		return ticket.AddItem(tk, testItem(), 1)
	}))
}

func TestBeginSubmitGuardsDoubleEntry(t *testing.T) {
	s := NewSession("t1", "r1")
	_, err := s.BeginSubmit(nil)
	require.NoError(t, err)

	_, err = s.BeginSubmit(nil)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
}

func TestBeginSubmitCheckFailureStaysOpen(t *testing.T) {
	s := NewSession("t1", "r1")
	wantErr := assert.AnError
	_, err := s.BeginSubmit(func(tk *model.Ticket) error { return wantErr })
	assert.ErrorIs(t, err, wantErr)

	_, state := s.View()
	assert.Equal(t, model.StateOpen, state)
}

func TestBeginSubmitReturnsDeepCopy(t *testing.T) {
	s := NewSession("t1", "r1")
	require.NoError(t, s.Mutate(func(tk *model.Ticket) error {
		return ticket.AddItem(tk, testItem(), 2)
	}))

	snapshot, err := s.BeginSubmit(nil)
	require.NoError(t, err)
	snapshot.Lines[0].Quantity = 99

	s.FinishSubmit(false)
	tk, _ := s.View()
	assert.Equal(t, 2, tk.Lines[0].Quantity, "mutating the snapshot must not touch the session ticket")
}

func TestFinishSubmitCommittedResetsTicket(t *testing.T) {
	s := NewSession("t1", "r1")
	require.NoError(t, s.Mutate(func(tk *model.Ticket) error {
		return ticket.AddItem(tk, testItem(), 2)
	}))
	require.NoError(t, s.SetBuyer(model.Buyer{Name: "Ada"}))
	s.ResetSelection(catalog.MatchSet{testItem()})

	_, err := s.BeginSubmit(nil)
	require.NoError(t, err)
	s.FinishSubmit(true)

	tk, state := s.View()
	assert.Equal(t, model.StateOpen, state)
	assert.True(t, tk.IsEmpty())
	assert.True(t, tk.Total.IsZero())
	assert.Equal(t, model.Buyer{}, tk.Buyer)

	_, _, ok := s.SelectionNext()
	assert.False(t, ok, "selection resets with the ticket")
}

func TestFinishSubmitFailureKeepsTicket(t *testing.T) {
	s := NewSession("t1", "r1")
	require.NoError(t, s.Mutate(func(tk *model.Ticket) error {
		return ticket.AddItem(tk, testItem(), 2)
	}))

	_, err := s.BeginSubmit(nil)
	require.NoError(t, err)
	s.FinishSubmit(false)

	tk, state := s.View()
	assert.Equal(t, model.StateOpen, state)
	require.Len(t, tk.Lines, 1)
	assert.Equal(t, 2, tk.Lines[0].Quantity, "no data loss on a failed submission")
}

func TestRegistryReturnsSameSession(t *testing.T) {
	r := NewRegistry()
	a := r.Get("t1", "r1")
	b := r.Get("t1", "r1")
	assert.Same(t, a, b)

	other := r.Get("t1", "r2")
	assert.NotSame(t, a, other)

	r.Drop("t1", "r1")
	assert.NotSame(t, a, r.Get("t1", "r1"))
}
