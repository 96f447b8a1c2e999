package workforce

import (
	"errors"
	"fmt"
)

var (
	ErrPlanNotFound     = errors.New("Workforce plan not found")
	ErrScenarioNotFound = errors.New("Scenario not found")
)

// PlanNotEditableError rejects entry mutations against a LOCKED or APPROVED plan.
type PlanNotEditableError struct {
	Status string
}

func (e *PlanNotEditableError) Error() string {
	return fmt.Sprintf("Workforce plan is %s and cannot be edited", e.Status)
}
