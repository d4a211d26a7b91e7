// Package gateway drives the sale submission state machine: it turns
// an open ticket plus a validated tender into exactly one backend
// call and maps the outcome back onto the register session.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/pos-quick-sale/internal/backend"
	"github.com/iliyamo/pos-quick-sale/internal/catalog"
	"github.com/iliyamo/pos-quick-sale/internal/model"
	"github.com/iliyamo/pos-quick-sale/internal/queue"
	"github.com/iliyamo/pos-quick-sale/internal/register"
	"github.com/iliyamo/pos-quick-sale/internal/tender"
)

// ErrEmptyTicket is returned when submit is attempted on a ticket
// with no lines.  It belongs to the operator-correctable class of
// errors: add an item and try again.
var ErrEmptyTicket = errors.New("cannot submit an empty ticket")

// walkInName is the buyer identity used when the operator entered no
// customer details.
const walkInName = "Walk-in customer"

// Submitter is the backend call the gateway makes exactly once per
// submission attempt.
type Submitter interface {
	SubmitSale(ctx context.Context, req model.SaleRequest) (string, error)
}

// Publisher sends a committed-sale event to the broker.  Publishing
// is best-effort; a nil Publisher disables it.
type Publisher func(ctx context.Context, event queue.SaleCommittedEvent) error

// Gateway builds and submits finalized sales.  It owns no ticket
// state of its own: the session's state machine is the single source
// of truth for whether a submission is in flight.
type Gateway struct {
	backend Submitter
	catalog *catalog.Store
	publish Publisher
	logger  *zap.Logger
}

// New constructs a Gateway.  catalogStore may be nil in tests that do
// not care about the post-commit stock refresh.
func New(submitter Submitter, catalogStore *catalog.Store, publish Publisher, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{backend: submitter, catalog: catalogStore, publish: publish, logger: logger}
}

// Submit runs the Open -> Submitting -> terminal transition for the
// session's ticket.
//
// The transition into Submitting happens atomically with the
// preconditions (non-empty ticket, sufficient tender), so a duplicate
// submit while one is in flight gets ErrSubmissionInFlight and causes
// no second backend call.  Validation failures are returned as errors
// and leave the session Open.  Backend outcomes are returned as a
// tagged SubmissionOutcome: Committed clears the ticket, resets the
// session and refreshes the catalog snapshot; Rejected and
// TransientFailure leave the ticket untouched so the operator can
// correct or retry.
// The operator argument is the authenticated identity supplied by the
// surrounding session layer (the JWT subject); the engine itself
// stores no such state.
func (g *Gateway) Submit(ctx context.Context, sess *register.Session, operator string, method model.TenderMethod, amountTendered *decimal.Decimal, buyer model.Buyer) (model.SubmissionOutcome, error) {
	snapshot, err := sess.BeginSubmit(func(t *model.Ticket) error {
		if t.IsEmpty() {
			return ErrEmptyTicket
		}
		if buyer != (model.Buyer{}) {
			t.Buyer = buyer
		}
		// Authoritative tender check, on every path, regardless of
		// what the amount field previewed.
		_, err := tender.Evaluate(t.Total, method, amountTendered)
		return err
	})
	if err != nil {
		return model.SubmissionOutcome{}, err
	}

	req := g.buildRequest(sess, snapshot, operator, method, amountTendered)
	confirmationID, submitErr := g.backend.SubmitSale(ctx, req)

	if submitErr != nil {
		sess.FinishSubmit(false)
		var be *backend.Error
		if errors.As(submitErr, &be) {
			kind := model.OutcomeRejected
			if be.Retryable {
				kind = model.OutcomeTransientFailure
			}
			g.logger.Warn("sale submission failed",
				zap.String("tenant", sess.TenantID),
				zap.String("register", sess.RegisterID),
				zap.String("reference_id", req.ReferenceID),
				zap.Bool("retryable", be.Retryable),
				zap.String("reason", be.Reason))
			return model.SubmissionOutcome{Kind: kind, Reason: be.Reason, Retryable: be.Retryable}, nil
		}
		return model.SubmissionOutcome{}, submitErr
	}

	sess.FinishSubmit(true)
	g.logger.Info("sale committed",
		zap.String("tenant", sess.TenantID),
		zap.String("register", sess.RegisterID),
		zap.String("reference_id", req.ReferenceID),
		zap.String("confirmation_id", confirmationID),
		zap.String("total", req.Total.String()))

	// Stock changed server-side; pull a fresh snapshot so the next
	// ticket checks against current numbers.  Best-effort: a failed
	// refresh only means slightly staler advisory checks.
	if g.catalog != nil {
		if _, err := g.catalog.Refresh(ctx, sess.TenantID); err != nil {
			g.logger.Warn("post-commit catalog refresh failed",
				zap.String("tenant", sess.TenantID), zap.Error(err))
		}
	}
	if g.publish != nil {
		if err := g.publish(ctx, committedEvent(req, confirmationID)); err != nil {
			g.logger.Warn("sale.committed publish failed",
				zap.String("reference_id", req.ReferenceID), zap.Error(err))
		}
	}

	return model.SubmissionOutcome{
		Kind:           model.OutcomeCommitted,
		ConfirmationID: confirmationID,
		ChangeDue:      req.ChangeDue,
	}, nil
}

// buildRequest assembles the immutable sale snapshot from captured
// ticket data.  Line names, prices and subtotals come from the ticket
// alone; the catalog is not consulted.
func (g *Gateway) buildRequest(sess *register.Session, t model.Ticket, operator string, method model.TenderMethod, amountTendered *decimal.Decimal) model.SaleRequest {
	buyer := t.Buyer
	if buyer.Name == "" {
		buyer.Name = walkInName
	}
	req := model.SaleRequest{
		ReferenceID: uuid.NewString(),
		TenantID:    sess.TenantID,
		RegisterID:  sess.RegisterID,
		Operator:    operator,
		Buyer:       buyer,
		Method:      method,
		Lines:       t.Lines,
		Subtotal:    t.Subtotal,
		Total:       t.Total,
		CreatedAt:   time.Now().UTC(),
	}
	if method == model.TenderCash && amountTendered != nil {
		amt := *amountTendered
		change := amt.Sub(t.Total).Round(2)
		req.AmountTendered = &amt
		req.ChangeDue = &change
	}
	return req
}

// committedEvent converts a confirmed sale request into the broker
// event payload.
func committedEvent(req model.SaleRequest, confirmationID string) queue.SaleCommittedEvent {
	lines := make([]queue.SaleLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, queue.SaleLine{
			ItemID:    l.ItemID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.String(),
			Subtotal:  l.Subtotal.String(),
		})
	}
	ev := queue.SaleCommittedEvent{
		ReferenceID:    req.ReferenceID,
		ConfirmationID: confirmationID,
		TenantID:       req.TenantID,
		RegisterID:     req.RegisterID,
		Operator:       req.Operator,
		BuyerName:      req.Buyer.Name,
		Method:         string(req.Method),
		Total:          req.Total.String(),
		Lines:          lines,
		CommittedAt:    req.CreatedAt.Format(time.RFC3339),
	}
	if req.AmountTendered != nil {
		ev.AmountTendered = req.AmountTendered.String()
	}
	if req.ChangeDue != nil {
		ev.ChangeDue = req.ChangeDue.String()
	}
	return ev
}
