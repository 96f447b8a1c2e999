package workforce

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	wfsvc "planora-backend/internal/application/workforce"
	"planora-backend/internal/pkg/response"
)

// Handlers serves the workforce-plan entry endpoints.
type Handlers struct {
	Service *wfsvc.Service
}

// GetEntries GET /api/v1/workforce-plans/:id/entries?scenarioId=
func (h *Handlers) GetEntries(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for id", fiber.StatusBadRequest, nil)
	}
	scenarioID, err := uuid.Parse(c.Query("scenarioId"))
	if err != nil {
		return response.Error(c, "scenarioId is required", fiber.StatusBadRequest, nil)
	}

	entries, totals, err := h.Service.ListEntries(c.Context(), planID, scenarioID)
	if err != nil {
		return entriesError(c, err)
	}
	return response.Success(c, "Entries retrieved", fiber.Map{
		"entries": entries,
		"totals":  totals,
	}, nil)
}

// UpsertEntries PUT /api/v1/workforce-plans/:id/entries
func (h *Handlers) UpsertEntries(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		ScenarioID string             `json:"scenarioId"`
		Entries    []wfsvc.EntryInput `json:"entries"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "scenarioId and entries are required", fiber.StatusBadRequest, nil)
	}
	if body.ScenarioID == "" || len(body.Entries) == 0 {
		return response.Error(c, "scenarioId and entries are required", fiber.StatusBadRequest, nil)
	}
	scenarioID, err := uuid.Parse(body.ScenarioID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for scenarioId", fiber.StatusBadRequest, nil)
	}
	for _, e := range body.Entries {
		if e.CurrentHeadcount < 0 || e.Q1Hires < 0 || e.Q2Hires < 0 || e.Q3Hires < 0 || e.Q4Hires < 0 || e.PlannedExits < 0 {
			return response.Error(c, "Counts must not be negative", fiber.StatusBadRequest, nil)
		}
		if e.AverageCompensation.IsNegative() {
			return response.Error(c, "averageCompensation must not be negative", fiber.StatusBadRequest, nil)
		}
	}

	entries, totals, err := h.Service.UpsertEntries(c.Context(), planID, scenarioID, body.Entries)
	if err != nil {
		return entriesError(c, err)
	}
	return response.Success(c, "Entries updated", fiber.Map{
		"entries": entries,
		"totals":  totals,
	}, nil)
}

func entriesError(c *fiber.Ctx, err error) error {
	var notEditable *wfsvc.PlanNotEditableError
	switch {
	case errors.Is(err, wfsvc.ErrPlanNotFound), errors.Is(err, wfsvc.ErrScenarioNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, fiber.Map{"reason": "NotFound"})
	case errors.As(err, &notEditable):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{
			"reason": "PlanNotEditable",
			"status": notEditable.Status,
		})
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
