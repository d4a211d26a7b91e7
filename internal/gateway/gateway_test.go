package gateway

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/pos-quick-sale/internal/backend"
	"github.com/iliyamo/pos-quick-sale/internal/catalog"
	"github.com/iliyamo/pos-quick-sale/internal/model"
	"github.com/iliyamo/pos-quick-sale/internal/queue"
	"github.com/iliyamo/pos-quick-sale/internal/register"
	"github.com/iliyamo/pos-quick-sale/internal/tender"
	"github.com/iliyamo/pos-quick-sale/internal/ticket"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// fakeSubmitter scripts the backend sale endpoint.  block, when set,
// holds every call until released so tests can observe the
// Submitting window.
type fakeSubmitter struct {
	confirmation string
	err          error
	calls        atomic.Int64
	lastReq      model.SaleRequest
	block        chan struct{}
}

func (f *fakeSubmitter) SubmitSale(_ context.Context, req model.SaleRequest) (string, error) {
	f.calls.Add(1)
	f.lastReq = req
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return "", f.err
	}
	return f.confirmation, nil
}

// fakeFetcher backs the catalog store used to verify the post-commit
// refresh.
type fakeFetcher struct {
	calls atomic.Int64
}

func (f *fakeFetcher) FetchCatalog(_ context.Context, _ string) ([]model.CatalogItem, error) {
	f.calls.Add(1)
	return []model.CatalogItem{{ID: "a", Name: "Coffee", UnitPrice: dec("10.00"), Stock: 3}}, nil
}

func sessionWithLines(t *testing.T) *register.Session {
	t.Helper()
	sess := register.NewSession("t1", "r1")
	a := model.CatalogItem{ID: "a", Name: "Coffee", UnitPrice: dec("10.00"), Stock: 5}
	b := model.CatalogItem{ID: "b", Name: "Tea", UnitPrice: dec("3.50"), Stock: 1}
	require.NoError(t, sess.Mutate(func(tk *model.Ticket) error {
		if err := ticket.AddItem(tk, a, 2); err != nil {
			return err
		}
		return ticket.AddItem(tk, b, 1)
	}))
	return sess
}

func TestSubmitCommittedClearsTicketAndRefreshes(t *testing.T) {
	submitter := &fakeSubmitter{confirmation: "conf-42"}
	fetcher := &fakeFetcher{}
	store := catalog.NewStore(fetcher, 0, zaptest.NewLogger(t))

	var published []queue.SaleCommittedEvent
	publish := func(_ context.Context, ev queue.SaleCommittedEvent) error {
		published = append(published, ev)
		return nil
	}

	g := New(submitter, store, publish, zaptest.NewLogger(t))
	sess := sessionWithLines(t)

	outcome, err := g.Submit(context.Background(), sess, "op-1", model.TenderCash, decPtr("25.00"), model.Buyer{})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeCommitted, outcome.Kind)
	assert.Equal(t, "conf-42", outcome.ConfirmationID)

	tk, state := sess.View()
	assert.True(t, tk.IsEmpty(), "committed submission clears the ticket")
	assert.Equal(t, model.StateOpen, state)
	assert.Equal(t, int64(1), fetcher.calls.Load(), "stock refresh after commit")

	require.Len(t, published, 1)
	assert.Equal(t, "conf-42", published[0].ConfirmationID)
	assert.Equal(t, "23.50", published[0].Total)
	assert.Equal(t, "1.50", published[0].ChangeDue)
	assert.Equal(t, "Walk-in customer", published[0].BuyerName)
}

func TestSubmitBuildsRequestFromCapturedTicket(t *testing.T) {
	submitter := &fakeSubmitter{confirmation: "conf-1"}
	g := New(submitter, nil, nil, zaptest.NewLogger(t))
	sess := sessionWithLines(t)

	_, err := g.Submit(context.Background(), sess, "op-1", model.TenderCash, decPtr("25.00"), model.Buyer{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	req := submitter.lastReq
	assert.NotEmpty(t, req.ReferenceID)
	assert.Equal(t, "t1", req.TenantID)
	assert.Equal(t, "r1", req.RegisterID)
	assert.Equal(t, "op-1", req.Operator)
	assert.Equal(t, "Ada", req.Buyer.Name)
	require.Len(t, req.Lines, 2)
	// Most-recently-added first, prices as captured on the ticket.
	assert.Equal(t, "b", req.Lines[0].ItemID)
	assert.Equal(t, "a", req.Lines[1].ItemID)
	assert.True(t, req.Total.Equal(dec("23.50")))
	require.NotNil(t, req.AmountTendered)
	assert.True(t, req.AmountTendered.Equal(dec("25.00")))
	require.NotNil(t, req.ChangeDue)
	assert.True(t, req.ChangeDue.Equal(dec("1.50")))
}

func TestSubmitCardOmitsCashFields(t *testing.T) {
	submitter := &fakeSubmitter{confirmation: "conf-1"}
	g := New(submitter, nil, nil, zaptest.NewLogger(t))
	sess := sessionWithLines(t)

	_, err := g.Submit(context.Background(), sess, "op-1", model.TenderCard, nil, model.Buyer{})
	require.NoError(t, err)
	assert.Nil(t, submitter.lastReq.AmountTendered)
	assert.Nil(t, submitter.lastReq.ChangeDue)
}

func TestSubmitRejectedKeepsTicket(t *testing.T) {
	submitter := &fakeSubmitter{err: &backend.Error{Reason: "stock conflict", Status: 409, Retryable: false}}
	g := New(submitter, nil, nil, zaptest.NewLogger(t))
	sess := sessionWithLines(t)

	outcome, err := g.Submit(context.Background(), sess, "op-1", model.TenderCard, nil, model.Buyer{})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeRejected, outcome.Kind)
	assert.Equal(t, "stock conflict", outcome.Reason)
	assert.False(t, outcome.Retryable)

	tk, state := sess.View()
	assert.Equal(t, model.StateOpen, state)
	assert.Len(t, tk.Lines, 2, "rejected submission loses no lines")
}

func TestSubmitTransientFailureIsRetryable(t *testing.T) {
	submitter := &fakeSubmitter{err: &backend.Error{Reason: "gateway timeout", Status: 504, Retryable: true}}
	g := New(submitter, nil, nil, zaptest.NewLogger(t))
	sess := sessionWithLines(t)

	outcome, err := g.Submit(context.Background(), sess, "op-1", model.TenderCard, nil, model.Buyer{})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeTransientFailure, outcome.Kind)
	assert.True(t, outcome.Retryable)

	// Retrying the same submission unchanged succeeds.
	submitter.err = nil
	submitter.confirmation = "conf-2"
	outcome, err = g.Submit(context.Background(), sess, "op-1", model.TenderCard, nil, model.Buyer{})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeCommitted, outcome.Kind)
}

func TestSubmitEmptyTicket(t *testing.T) {
	submitter := &fakeSubmitter{}
	g := New(submitter, nil, nil, zaptest.NewLogger(t))
	sess := register.NewSession("t1", "r1")

	_, err := g.Submit(context.Background(), sess, "op-1", model.TenderCard, nil, model.Buyer{})
	assert.ErrorIs(t, err, ErrEmptyTicket)
	assert.Zero(t, submitter.calls.Load())
}

func TestSubmitInsufficientCash(t *testing.T) {
	submitter := &fakeSubmitter{}
	g := New(submitter, nil, nil, zaptest.NewLogger(t))
	sess := sessionWithLines(t)

	_, err := g.Submit(context.Background(), sess, "op-1", model.TenderCash, decPtr("20.00"), model.Buyer{})
	var verr *tender.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, submitter.calls.Load(), "validation failure must not reach the backend")

	_, state := sess.View()
	assert.Equal(t, model.StateOpen, state)
}

func TestSubmitGuardAllowsExactlyOneBackendCall(t *testing.T) {
	submitter := &fakeSubmitter{confirmation: "conf-1", block: make(chan struct{})}
	g := New(submitter, nil, nil, zaptest.NewLogger(t))
	sess := sessionWithLines(t)

	var wg sync.WaitGroup
	wg.Add(1)
	firstDone := make(chan model.SubmissionOutcome, 1)
	go func() {
		defer wg.Done()
		outcome, err := g.Submit(context.Background(), sess, "op-1", model.TenderCard, nil, model.Buyer{})
		require.NoError(t, err)
		firstDone <- outcome
	}()

	// Wait until the first submission is inside the backend call.
	require.Eventually(t, func() bool { return submitter.calls.Load() == 1 },
		time.Second, time.Millisecond)

	// The double click: rejected immediately, no second call.
	_, err := g.Submit(context.Background(), sess, "op-1", model.TenderCard, nil, model.Buyer{})
	assert.ErrorIs(t, err, register.ErrSubmissionInFlight)

	close(submitter.block)
	wg.Wait()
	assert.Equal(t, int64(1), submitter.calls.Load())
	assert.Equal(t, model.OutcomeCommitted, (<-firstDone).Kind)
}
