package ledger

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ledgersvc "planora-backend/internal/application/ledger"
	"planora-backend/internal/middleware"
	"planora-backend/internal/pkg/response"
	"planora-backend/internal/pkg/validation"
)

// Handlers serves the budget-transaction endpoints.
type Handlers struct {
	Service *ledgersvc.Service
}

// GetTransactions GET /api/v1/budget-transactions
func (h *Handlers) GetTransactions(c *fiber.Ctx) error {
	var f ledgersvc.TxFilter

	if v := c.Query("allocationId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid UUID format for allocationId", fiber.StatusBadRequest, nil)
		}
		f.AllocationID = &id
	}
	if v := c.Query("txType"); v != "" {
		if !validation.IsValidTxType(v) {
			return response.Error(c, "Invalid txType", fiber.StatusBadRequest, nil)
		}
		f.TxType = v
	}
	var err error
	if f.StartDate, err = validation.ParseOptionalDate(c.Query("startDate")); err != nil {
		return response.Error(c, "Invalid startDate", fiber.StatusBadRequest, nil)
	}
	if f.EndDate, err = validation.ParseOptionalDate(c.Query("endDate")); err != nil {
		return response.Error(c, "Invalid endDate", fiber.StatusBadRequest, nil)
	}
	if v := c.Query("referenceId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid UUID format for referenceId", fiber.StatusBadRequest, nil)
		}
		f.ReferenceID = &id
	}

	txs, err := h.Service.ListTransactions(c.Context(), f)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Transactions retrieved", txs, nil)
}

// CreateTransaction POST /api/v1/budget-transactions
func (h *Handlers) CreateTransaction(c *fiber.Ctx) error {
	var body struct {
		AllocationID string          `json:"allocationId"`
		Amount       decimal.Decimal `json:"amount"`
		TxType       string          `json:"txType"`
		TxDate       string          `json:"txDate"`
		ReferenceID  *string         `json:"referenceId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "allocationId, amount, txType and txDate are required", fiber.StatusBadRequest, nil)
	}
	if body.AllocationID == "" || body.TxType == "" || body.TxDate == "" {
		return response.Error(c, "allocationId, amount, txType and txDate are required", fiber.StatusBadRequest, nil)
	}
	allocationID, err := uuid.Parse(body.AllocationID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for allocationId", fiber.StatusBadRequest, nil)
	}
	if !validation.IsValidTxType(body.TxType) {
		return response.Error(c, "Invalid txType", fiber.StatusBadRequest, nil)
	}
	if body.Amount.IsZero() {
		return response.Error(c, "Amount must be non-zero", fiber.StatusBadRequest, nil)
	}
	if body.TxType != "ADJUST" && body.Amount.IsNegative() {
		return response.Error(c, "Amount must be a positive number", fiber.StatusBadRequest, nil)
	}
	txDate, err := validation.ParseDate(body.TxDate)
	if err != nil {
		return response.Error(c, "Invalid txDate", fiber.StatusBadRequest, nil)
	}

	in := ledgersvc.CommitInput{
		AllocationID: allocationID,
		Amount:       body.Amount,
		TxType:       body.TxType,
		TxDate:       txDate,
		ActorUserID:  middleware.GetUserID(c),
	}
	if body.ReferenceID != nil && *body.ReferenceID != "" {
		refID, err := uuid.Parse(*body.ReferenceID)
		if err != nil {
			return response.Error(c, "Invalid UUID format for referenceId", fiber.StatusBadRequest, nil)
		}
		in.ReferenceID = &refID
	}

	created, balance, err := h.Service.Commit(c.Context(), in)
	if err != nil {
		return commitError(c, err)
	}
	return response.SuccessCreated(c, "Transaction recorded", fiber.Map{
		"transaction": created,
		"newBalance":  balance,
	}, nil)
}

func commitError(c *fiber.Ctx, err error) error {
	var insufficient *ledgersvc.InsufficientBudgetError
	var overRelease *ledgersvc.OverReleaseError
	switch {
	case errors.Is(err, ledgersvc.ErrAllocationNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, fiber.Map{"reason": "NotFound"})
	case errors.Is(err, ledgersvc.ErrInvalidTxType):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.As(err, &insufficient):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{
			"reason":    "InsufficientBudget",
			"available": insufficient.Available,
			"requested": insufficient.Requested,
		})
	case errors.As(err, &overRelease):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{
			"reason":    "OverRelease",
			"consumed":  overRelease.Consumed,
			"requested": overRelease.Requested,
		})
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
