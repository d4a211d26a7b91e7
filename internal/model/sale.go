package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmissionState tracks where a register session is in the sale
// submission state machine.  A session is either open for mutation or
// in the middle of exactly one backend call; terminal outcomes return
// the session to StateOpen (after clearing the ticket on a commit).
type SubmissionState string

const (
	StateOpen       SubmissionState = "OPEN"
	StateSubmitting SubmissionState = "SUBMITTING"
)

// SaleRequest is the immutable snapshot sent to the backend when a
// ticket is submitted.  Every monetary figure and line is copied from
// the ticket as captured; the catalog is never re-read while building
// it.  ReferenceID is generated client-side so the backend can detect
// an accidental duplicate submission of the same ticket.
type SaleRequest struct {
	ReferenceID    string           `json:"reference_id"`
	TenantID       string           `json:"tenant_id"`
	RegisterID     string           `json:"register_id"`
	Operator       string           `json:"operator"`
	Buyer          Buyer            `json:"buyer"`
	Method         TenderMethod     `json:"method"`
	AmountTendered *decimal.Decimal `json:"amount_tendered,omitempty"`
	ChangeDue      *decimal.Decimal `json:"change_due,omitempty"`
	Lines          []LineItem       `json:"lines"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	Total          decimal.Decimal  `json:"total"`
	CreatedAt      time.Time        `json:"created_at"`
}

// OutcomeKind tags a SubmissionOutcome.
type OutcomeKind string

const (
	OutcomeCommitted        OutcomeKind = "COMMITTED"
	OutcomeRejected         OutcomeKind = "REJECTED"
	OutcomeTransientFailure OutcomeKind = "TRANSIENT_FAILURE"
)

// SubmissionOutcome is the tagged result of one submission attempt.
// Committed carries the backend confirmation id; the two failure
// outcomes carry the reason, with Retryable distinguishing a backend
// hiccup (safe to resend the same submission) from a business
// rejection that needs operator attention first.
type SubmissionOutcome struct {
	Kind           OutcomeKind      `json:"kind"`
	ConfirmationID string           `json:"confirmation_id,omitempty"`
	ChangeDue      *decimal.Decimal `json:"change_due,omitempty"`
	Reason         string           `json:"reason,omitempty"`
	Retryable      bool             `json:"retryable"`
}
