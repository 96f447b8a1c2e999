package assignments

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmployeeNotFound   = errors.New("Employee not found")
	ErrPositionNotFound   = errors.New("Position not found")
	ErrAssignmentNotFound = errors.New("Assignment not found")
	ErrPositionFrozen     = errors.New("Position is frozen")
)

// PrimaryConflictError rejects a PRIMARY assignment whose interval overlaps
// an existing PRIMARY on the same position. The caller must end the existing
// assignment first; there is no automatic supersession.
type PrimaryConflictError struct {
	ConflictingAssignmentID uuid.UUID
	ValidFrom               time.Time
	ValidTo                 time.Time
}

func (e *PrimaryConflictError) Error() string {
	return fmt.Sprintf("Position already has a primary assignment from %s to %s",
		e.ValidFrom.Format("2006-01-02"), e.ValidTo.Format("2006-01-02"))
}

// EndOutsideWindowError rejects an end date outside the assignment's current
// interval. Ending may only shrink the window; an end past the current
// validTo would re-open a period the primary and allocation checks never
// validated.
type EndOutsideWindowError struct {
	ValidFrom time.Time
	ValidTo   time.Time
}

func (e *EndOutsideWindowError) Error() string {
	return fmt.Sprintf("endDate must fall within the assignment window %s to %s",
		e.ValidFrom.Format("2006-01-02"), e.ValidTo.Format("2006-01-02"))
}

// OverAllocationError rejects an assignment that would push the employee's
// summed allocation over 100%% somewhere in the proposed window.
type OverAllocationError struct {
	CurrentTotal int
	Requested    int
}

func (e *OverAllocationError) Error() string {
	return fmt.Sprintf("Employee allocation would exceed 100%%: current %d%%, requested %d%%", e.CurrentTotal, e.Requested)
}
