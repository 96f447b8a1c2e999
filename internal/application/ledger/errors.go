package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrAllocationNotFound = errors.New("Position budget not found")
	ErrInvalidTxType      = errors.New("Invalid transaction type")
)

// InsufficientBudgetError rejects an encumbrance that would exceed the
// available amount. Carries both sides so the caller can act without a
// follow-up query.
type InsufficientBudgetError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBudgetError) Error() string {
	return fmt.Sprintf("Insufficient budget: available %s, requested %s", e.Available, e.Requested)
}

// OverReleaseError rejects a release that would exceed the consumed amount.
type OverReleaseError struct {
	Consumed  decimal.Decimal
	Requested decimal.Decimal
}

func (e *OverReleaseError) Error() string {
	return fmt.Sprintf("Release exceeds consumed amount: consumed %s, requested %s", e.Consumed, e.Requested)
}
