// Package register holds the per-register, in-memory POS sessions.  A
// session ties an open ticket and its submission state to a tenant
// and register id; it lives only as long as the process and is simply
// discarded when abandoned.
package register

import (
	"errors"
	"sync"

	"github.com/iliyamo/pos-quick-sale/internal/catalog"
	"github.com/iliyamo/pos-quick-sale/internal/model"
)

// ErrSubmissionInFlight is returned when a ticket mutation or a
// second submit arrives while the session is already Submitting.  The
// duplicate action is dropped, it is not queued.
var ErrSubmissionInFlight = errors.New("a submission is already in flight for this register")

// Session is one register's live state.  All access goes through the
// mutex: the POS screen itself is a single logical actor, but the
// HTTP surface in front of it is not, and the Submitting guard is the
// concurrency contract that keeps a double-clicked submit down to one
// backend call.
type Session struct {
	TenantID   string
	RegisterID string

	mu        sync.Mutex
	ticket    model.Ticket
	state     model.SubmissionState
	selection catalog.Selection
}

// NewSession creates an open session with an empty ticket.
func NewSession(tenantID, registerID string) *Session {
	return &Session{
		TenantID:   tenantID,
		RegisterID: registerID,
		ticket:     model.NewTicket(),
		state:      model.StateOpen,
		selection:  catalog.NewSelection(nil),
	}
}

// Mutate runs fn against the ticket under the session lock.  While a
// submission is in flight every mutation is rejected with
// ErrSubmissionInFlight so the snapshot being submitted cannot drift.
func (s *Session) Mutate(fn func(t *model.Ticket) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != model.StateOpen {
		return ErrSubmissionInFlight
	}
	return fn(&s.ticket)
}

// View returns a copy of the ticket and the current submission state
// for rendering.  The copy is deep, so callers can serialize it while
// the register keeps working.
func (s *Session) View() (model.Ticket, model.SubmissionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticket.Clone(), s.state
}

// BeginSubmit transitions the session from Open to Submitting and
// returns the ticket snapshot the submission will be built from.  The
// check callback runs under the lock before the transition so the
// non-empty and tender-sufficiency preconditions are evaluated
// against exactly the ticket being submitted.  A session already
// Submitting returns ErrSubmissionInFlight without invoking check, so
// a double-clicked submit never reaches the backend twice.
func (s *Session) BeginSubmit(check func(t *model.Ticket) error) (model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != model.StateOpen {
		return model.Ticket{}, ErrSubmissionInFlight
	}
	if check != nil {
		if err := check(&s.ticket); err != nil {
			return model.Ticket{}, err
		}
	}
	s.state = model.StateSubmitting
	return s.ticket.Clone(), nil
}

// FinishSubmit ends the Submitting window.  On a committed sale the
// ticket, buyer fields and selection are reset; on any failure the
// ticket is returned to Open untouched so no entered line is lost.
func (s *Session) FinishSubmit(committed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if committed {
		s.ticket = model.NewTicket()
		s.selection.Reset(nil)
	}
	s.state = model.StateOpen
}

// SetBuyer stores buyer details on the open ticket.
func (s *Session) SetBuyer(b model.Buyer) error {
	return s.Mutate(func(t *model.Ticket) error {
		t.Buyer = b
		return nil
	})
}

// ResetSelection replaces the interactive match list and clears the
// keyboard cursor; called whenever the query text changes or the list
// is dismissed.
func (s *Session) ResetSelection(matches catalog.MatchSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Reset(matches)
}

// SelectionNext advances the keyboard cursor circularly and returns
// the newly highlighted item, if any.
func (s *Session) SelectionNext() (model.CatalogItem, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Next()
	item, ok := s.selection.Current()
	return item, s.selection.Index(), ok
}

// SelectionPrev moves the keyboard cursor backwards circularly and
// returns the newly highlighted item, if any.
func (s *Session) SelectionPrev() (model.CatalogItem, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Prev()
	item, ok := s.selection.Current()
	return item, s.selection.Index(), ok
}
