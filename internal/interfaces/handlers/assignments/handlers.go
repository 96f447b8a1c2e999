package assignments

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	assignsvc "planora-backend/internal/application/assignments"
	"planora-backend/internal/domain"
	"planora-backend/internal/pkg/response"
	"planora-backend/internal/pkg/validation"
)

// Handlers serves the assignment endpoints.
type Handlers struct {
	Service *assignsvc.Service
}

// GetAssignments GET /api/v1/assignments
func (h *Handlers) GetAssignments(c *fiber.Ctx) error {
	var f assignsvc.ListFilter

	if v := c.Query("empId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid UUID format for empId", fiber.StatusBadRequest, nil)
		}
		f.EmployeeID = &id
	}
	if v := c.Query("positionId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid UUID format for positionId", fiber.StatusBadRequest, nil)
		}
		f.PositionID = &id
	}
	if v := c.Query("assignmentType"); v != "" {
		if !validation.IsValidAssignmentType(v) {
			return response.Error(c, "Invalid assignmentType", fiber.StatusBadRequest, nil)
		}
		f.AssignmentType = v
	}
	var err error
	if f.AsOf, err = validation.ParseOptionalDate(c.Query("asOf")); err != nil {
		return response.Error(c, "Invalid asOf", fiber.StatusBadRequest, nil)
	}
	f.ActiveOnly = c.Query("activeOnly") == "true"

	views, err := h.Service.List(c.Context(), f)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Assignments retrieved", views, nil)
}

// CreateAssignment POST /api/v1/assignments
func (h *Handlers) CreateAssignment(c *fiber.Ctx) error {
	var body struct {
		EmpID          string `json:"empId"`
		PositionID     string `json:"positionId"`
		AssignmentType string `json:"assignmentType"`
		AllocationPct  *int   `json:"allocationPct"`
		ValidFrom      string `json:"validFrom"`
		ValidTo        string `json:"validTo"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "empId, positionId and validFrom are required", fiber.StatusBadRequest, nil)
	}
	if body.EmpID == "" || body.PositionID == "" || body.ValidFrom == "" {
		return response.Error(c, "empId, positionId and validFrom are required", fiber.StatusBadRequest, nil)
	}

	empID, err := uuid.Parse(body.EmpID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for empId", fiber.StatusBadRequest, nil)
	}
	positionID, err := uuid.Parse(body.PositionID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for positionId", fiber.StatusBadRequest, nil)
	}

	assignmentType := body.AssignmentType
	if assignmentType == "" {
		assignmentType = domain.AssignmentPrimary
	}
	if !validation.IsValidAssignmentType(assignmentType) {
		return response.Error(c, "Invalid assignmentType", fiber.StatusBadRequest, nil)
	}

	allocationPct := 100
	if body.AllocationPct != nil {
		allocationPct = *body.AllocationPct
	}
	if !validation.IsValidAllocationPct(allocationPct) {
		return response.Error(c, "allocationPct must be between 1 and 100", fiber.StatusBadRequest, nil)
	}

	validFrom, err := validation.ParseDate(body.ValidFrom)
	if err != nil {
		return response.Error(c, "Invalid validFrom", fiber.StatusBadRequest, nil)
	}
	validTo, err := validation.ParseOptionalDate(body.ValidTo)
	if err != nil {
		return response.Error(c, "Invalid validTo", fiber.StatusBadRequest, nil)
	}
	if validTo != nil && validTo.Before(validFrom) {
		return response.Error(c, "validTo must not precede validFrom", fiber.StatusBadRequest, nil)
	}

	created, err := h.Service.Propose(c.Context(), assignsvc.ProposeInput{
		EmployeeID:     empID,
		PositionID:     positionID,
		AssignmentType: assignmentType,
		AllocationPct:  allocationPct,
		ValidFrom:      validFrom,
		ValidTo:        validTo,
	})
	if err != nil {
		return proposeError(c, err)
	}
	return response.SuccessCreated(c, "Assignment created", created, nil)
}

// EndAssignment PATCH /api/v1/assignments/:id/end
func (h *Handlers) EndAssignment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		EndDate string `json:"endDate"`
	}
	if err := c.BodyParser(&body); err != nil || body.EndDate == "" {
		return response.Error(c, "endDate is required", fiber.StatusBadRequest, nil)
	}
	endDate, err := validation.ParseDate(body.EndDate)
	if err != nil {
		return response.Error(c, "Invalid endDate", fiber.StatusBadRequest, nil)
	}

	ended, err := h.Service.End(c.Context(), id, endDate)
	if err != nil {
		var outside *assignsvc.EndOutsideWindowError
		switch {
		case errors.Is(err, assignsvc.ErrAssignmentNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, fiber.Map{"reason": "NotFound"})
		case errors.As(err, &outside):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{
				"reason":    "EndOutsideWindow",
				"validFrom": outside.ValidFrom,
				"validTo":   outside.ValidTo,
			})
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Assignment ended", ended, nil)
}

func proposeError(c *fiber.Ctx, err error) error {
	var conflict *assignsvc.PrimaryConflictError
	var overAlloc *assignsvc.OverAllocationError
	switch {
	case errors.Is(err, assignsvc.ErrEmployeeNotFound), errors.Is(err, assignsvc.ErrPositionNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, fiber.Map{"reason": "NotFound"})
	case errors.Is(err, assignsvc.ErrPositionFrozen):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{"reason": "PositionFrozen"})
	case errors.As(err, &conflict):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{
			"reason":                  "PrimaryConflict",
			"conflictingAssignmentId": conflict.ConflictingAssignmentID,
			"validFrom":               conflict.ValidFrom,
			"validTo":                 conflict.ValidTo,
		})
	case errors.As(err, &overAlloc):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{
			"reason":       "OverAllocation",
			"currentTotal": overAlloc.CurrentTotal,
			"requested":    overAlloc.Requested,
		})
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
