package budgets

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	budgetsvc "planora-backend/internal/application/budgets"
	"planora-backend/internal/middleware"
	"planora-backend/internal/pkg/response"
)

// Handlers serves the position-budget endpoints.
type Handlers struct {
	Service *budgetsvc.Service
}

// GetPositionBudget GET /api/v1/position-budgets/:id
func (h *Handlers) GetPositionBudget(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for id", fiber.StatusBadRequest, nil)
	}
	view, err := h.Service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, budgetsvc.ErrPositionBudgetNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, fiber.Map{"reason": "NotFound"})
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Position budget retrieved", view, nil)
}

// UpdatePositionBudget PUT /api/v1/position-budgets/:id
func (h *Handlers) UpdatePositionBudget(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		AllocatedAmount   *decimal.Decimal `json:"allocatedAmount"`
		AddPositionIDs    []string         `json:"addPositionIds"`
		RemovePositionIDs []string         `json:"removePositionIds"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Request body is required", fiber.StatusBadRequest, nil)
	}
	if body.AllocatedAmount == nil && len(body.AddPositionIDs) == 0 && len(body.RemovePositionIDs) == 0 {
		return response.Error(c, "Nothing to update", fiber.StatusBadRequest, nil)
	}
	if body.AllocatedAmount != nil && body.AllocatedAmount.IsNegative() {
		return response.Error(c, "allocatedAmount must not be negative", fiber.StatusBadRequest, nil)
	}

	in := budgetsvc.UpdateInput{
		AllocatedAmount: body.AllocatedAmount,
		ActorUserID:     middleware.GetUserID(c),
	}
	if in.AddPositionIDs, err = parseIDs(body.AddPositionIDs); err != nil {
		return response.Error(c, "Invalid UUID format in addPositionIds", fiber.StatusBadRequest, nil)
	}
	if in.RemovePositionIDs, err = parseIDs(body.RemovePositionIDs); err != nil {
		return response.Error(c, "Invalid UUID format in removePositionIds", fiber.StatusBadRequest, nil)
	}

	updated, err := h.Service.Update(c.Context(), id, in)
	if err != nil {
		return updateError(c, err)
	}
	return response.Success(c, "Position budget updated", updated, nil)
}

// DeletePositionBudget DELETE /api/v1/position-budgets/:id
func (h *Handlers) DeletePositionBudget(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		var dependents *budgetsvc.HasDependentsError
		switch {
		case errors.Is(err, budgetsvc.ErrPositionBudgetNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, fiber.Map{"reason": "NotFound"})
		case errors.As(err, &dependents):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{
				"reason":       "HasDependents",
				"positions":    dependents.Positions,
				"transactions": dependents.Transactions,
			})
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Position budget deleted", nil, nil)
}

func updateError(c *fiber.Ctx, err error) error {
	var exceeds *budgetsvc.AllocationExceedsBudgetError
	var below *budgetsvc.AllocationBelowConsumedError
	switch {
	case errors.Is(err, budgetsvc.ErrPositionBudgetNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, fiber.Map{"reason": "NotFound"})
	case errors.Is(err, budgetsvc.ErrPositionNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, fiber.Map{"reason": "NotFound"})
	case errors.Is(err, budgetsvc.ErrPositionWrongDepartment):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.As(err, &exceeds):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{
			"reason":           "AllocationExceedsBudget",
			"departmentTotal":  exceeds.DepartmentTotal,
			"siblingAllocated": exceeds.SiblingAllocated,
			"requested":        exceeds.Requested,
		})
	case errors.As(err, &below):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{
			"reason":    "AllocationBelowConsumed",
			"consumed":  below.Consumed,
			"requested": below.Requested,
		})
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}

func parseIDs(in []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(in))
	for _, s := range in {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
