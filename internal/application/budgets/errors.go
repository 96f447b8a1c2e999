package budgets

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrPositionBudgetNotFound  = errors.New("Position budget not found")
	ErrPositionNotFound        = errors.New("Position not found")
	ErrPositionWrongDepartment = errors.New("Position belongs to a different department")
)

// AllocationExceedsBudgetError rejects an allocation change that, together
// with its siblings, would exceed the parent department budget.
type AllocationExceedsBudgetError struct {
	DepartmentTotal  decimal.Decimal
	SiblingAllocated decimal.Decimal
	Requested        decimal.Decimal
}

func (e *AllocationExceedsBudgetError) Error() string {
	return fmt.Sprintf("Allocation exceeds department budget: department total %s, sibling allocations %s, requested %s",
		e.DepartmentTotal, e.SiblingAllocated, e.Requested)
}

// AllocationBelowConsumedError rejects lowering an allocation under what the
// ledger has already consumed.
type AllocationBelowConsumedError struct {
	Consumed  decimal.Decimal
	Requested decimal.Decimal
}

func (e *AllocationBelowConsumedError) Error() string {
	return fmt.Sprintf("Allocation below consumed amount: consumed %s, requested %s", e.Consumed, e.Requested)
}

// HasDependentsError blocks deletion while positions or ledger history exist.
type HasDependentsError struct {
	Positions    int64
	Transactions int64
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf("Position budget has dependents: %d positions, %d transactions", e.Positions, e.Transactions)
}
