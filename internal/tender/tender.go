// Package tender validates a payment against a ticket total and
// computes the change due.  Evaluation is pure: it runs on every
// keystroke of the amount field and again, authoritatively, right
// before submission, with no side effects either time.
package tender

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/pos-quick-sale/internal/model"
)

// minorUnits is the currency's minor-unit precision used when
// rounding change.
const minorUnits = 2

// ValidationError describes an operator-correctable tender problem.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid tender: %s", e.Reason)
}

// Reasons used in ValidationError.  Kept as constants so handlers and
// tests can match on them without parsing messages.
const (
	ReasonUnknownMethod      = "unknown tender method"
	ReasonAmountRequired     = "amount tendered is required for cash"
	ReasonInsufficientAmount = "amount tendered is less than the total"
)

// Evaluate computes the TenderResult for paying total with the given
// method.  Non-cash methods ignore amountTendered entirely and are
// always sufficient with zero change.  Cash requires amountTendered;
// a nil or insufficient amount yields a ValidationError.  Change is
// rounded half-up to the currency's minor-unit precision.
func Evaluate(total decimal.Decimal, method model.TenderMethod, amountTendered *decimal.Decimal) (model.TenderResult, error) {
	switch method {
	case model.TenderCard, model.TenderTransfer:
		return model.TenderResult{Sufficient: true, ChangeDue: decimal.Zero}, nil
	case model.TenderCash:
		if amountTendered == nil {
			return model.TenderResult{}, &ValidationError{Reason: ReasonAmountRequired}
		}
		if amountTendered.LessThan(total) {
			return model.TenderResult{}, &ValidationError{Reason: ReasonInsufficientAmount}
		}
		change := amountTendered.Sub(total).Round(minorUnits)
		return model.TenderResult{Sufficient: true, ChangeDue: change}, nil
	default:
		return model.TenderResult{}, &ValidationError{Reason: ReasonUnknownMethod}
	}
}
