package budgets

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"planora-backend/internal/application/ledger"
	"planora-backend/internal/domain"
)

// Service reads and mutates position budgets. Ledger writes live in the
// ledger package; this one covers the allocation record itself.
type Service struct {
	DB *gorm.DB
}

// PositionView annotates a position with its derived state at a reference
// instant. Vacancy is computed from the PRIMARY assignment intervals.
type PositionView struct {
	domain.Position
	IsVacant            bool             `json:"isVacant"`
	CurrentEmployee     *domain.Employee `json:"currentEmployee"`
	CurrentCompensation decimal.Decimal  `json:"currentCompensation"`
}

// PositionBudgetView is the GET /position-budgets/:id payload.
type PositionBudgetView struct {
	domain.PositionBudget
	ConsumedAmount  decimal.Decimal  `json:"consumedAmount"`
	AvailableAmount decimal.Decimal  `json:"availableAmount"`
	Metrics         ledger.Breakdown `json:"metrics"`
	Positions       []PositionView   `json:"positions"`
}

// Get returns the allocation with derived amounts, the per-type breakdown
// and its positions annotated as of now.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*PositionBudgetView, error) {
	var alloc domain.PositionBudget
	if err := s.DB.WithContext(ctx).Where("position_budget_id = ?", id).First(&alloc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPositionBudgetNotFound
		}
		return nil, err
	}

	var txs []domain.BudgetTransaction
	if err := s.DB.WithContext(ctx).Where("position_budget_id = ?", id).Find(&txs).Error; err != nil {
		return nil, err
	}
	balance := ledger.FoldBalance(alloc.AllocatedAmount, txs)

	var positions []domain.Position
	if err := s.DB.WithContext(ctx).Where("position_budget_id = ?", id).Find(&positions).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]PositionView, len(positions))
	for i, p := range positions {
		view, err := s.annotatePosition(ctx, p, now)
		if err != nil {
			return nil, err
		}
		views[i] = view
	}

	return &PositionBudgetView{
		PositionBudget:  alloc,
		ConsumedAmount:  balance.Consumed,
		AvailableAmount: balance.Available,
		Metrics:         ledger.FoldBreakdown(txs),
		Positions:       views,
	}, nil
}

func (s *Service) annotatePosition(ctx context.Context, p domain.Position, at time.Time) (PositionView, error) {
	view := PositionView{Position: p, IsVacant: true, CurrentCompensation: decimal.Zero}

	var assignments []domain.Assignment
	if err := s.DB.WithContext(ctx).
		Where("position_id = ? AND assignment_type = ?", p.PositionID, domain.AssignmentPrimary).
		Find(&assignments).Error; err != nil {
		return view, err
	}
	for _, a := range assignments {
		if !a.ActiveAt(at) {
			continue
		}
		view.IsVacant = false

		var emp domain.Employee
		if err := s.DB.WithContext(ctx).Where("employee_id = ?", a.EmployeeID).First(&emp).Error; err == nil {
			view.CurrentEmployee = &emp
		}

		var snaps []domain.CompensationSnapshot
		if err := s.DB.WithContext(ctx).Where("assignment_id = ?", a.AssignmentID).Find(&snaps).Error; err != nil {
			return view, err
		}
		for _, sn := range snaps {
			if sn.ActiveAt(at) {
				view.CurrentCompensation = view.CurrentCompensation.Add(sn.Amount)
			}
		}
		break
	}
	return view, nil
}

// UpdateInput for Update; nil fields are left untouched.
type UpdateInput struct {
	AllocatedAmount   *decimal.Decimal
	AddPositionIDs    []uuid.UUID
	RemovePositionIDs []uuid.UUID
	ActorUserID       string
}

// Update changes the allocation ceiling and/or attaches/detaches positions,
// transactionally. A new ceiling is validated against sibling allocations vs
// the parent department total and against what the ledger already consumed.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*domain.PositionBudget, error) {
	var alloc domain.PositionBudget

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("position_budget_id = ?", id).First(&alloc).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrPositionBudgetNotFound
			}
			return err
		}

		var parent domain.DepartmentBudget
		if err := tx.Where("department_budget_id = ?", alloc.DepartmentBudgetID).First(&parent).Error; err != nil {
			return err
		}

		if in.AllocatedAmount != nil {
			requested := *in.AllocatedAmount

			var siblings []domain.PositionBudget
			if err := tx.Where("department_budget_id = ? AND position_budget_id <> ?", alloc.DepartmentBudgetID, id).
				Find(&siblings).Error; err != nil {
				return err
			}
			siblingTotal := decimal.Zero
			for _, sib := range siblings {
				siblingTotal = siblingTotal.Add(sib.AllocatedAmount)
			}
			if siblingTotal.Add(requested).GreaterThan(parent.TotalAmount) {
				return &AllocationExceedsBudgetError{
					DepartmentTotal:  parent.TotalAmount,
					SiblingAllocated: siblingTotal,
					Requested:        requested,
				}
			}

			var txs []domain.BudgetTransaction
			if err := tx.Where("position_budget_id = ?", id).Find(&txs).Error; err != nil {
				return err
			}
			consumed := ledger.FoldBalance(alloc.AllocatedAmount, txs).Consumed
			if requested.LessThan(consumed) {
				return &AllocationBelowConsumedError{Consumed: consumed, Requested: requested}
			}

			eventData, _ := json.Marshal(map[string]interface{}{
				"oldAllocatedAmount": alloc.AllocatedAmount,
				"newAllocatedAmount": requested,
			})
			event := domain.BudgetEvent{
				PositionBudgetID: id,
				EventType:        domain.EventAllocationChanged,
				EventData:        datatypes.JSON(eventData),
			}
			if in.ActorUserID != "" {
				event.ActorUserID = &in.ActorUserID
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}

			alloc.AllocatedAmount = requested
			if err := tx.Model(&domain.PositionBudget{}).Where("position_budget_id = ?", id).
				Update("allocated_amount", requested).Error; err != nil {
				return err
			}
		}

		for _, pid := range in.AddPositionIDs {
			var pos domain.Position
			if err := tx.Where("position_id = ?", pid).First(&pos).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return ErrPositionNotFound
				}
				return err
			}
			if pos.DepartmentID != parent.DepartmentID {
				return ErrPositionWrongDepartment
			}
			if err := tx.Model(&domain.Position{}).Where("position_id = ?", pid).
				Update("position_budget_id", id).Error; err != nil {
				return err
			}
		}

		if len(in.RemovePositionIDs) > 0 {
			if err := tx.Model(&domain.Position{}).
				Where("position_id IN ? AND position_budget_id = ?", in.RemovePositionIDs, id).
				Update("position_budget_id", nil).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &alloc, nil
}

// Delete removes an allocation that has no linked positions and no ledger
// history. History is never discarded: any transaction blocks deletion.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var alloc domain.PositionBudget
		if err := tx.Where("position_budget_id = ?", id).First(&alloc).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrPositionBudgetNotFound
			}
			return err
		}

		var positions, transactions int64
		if err := tx.Model(&domain.Position{}).Where("position_budget_id = ?", id).Count(&positions).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.BudgetTransaction{}).Where("position_budget_id = ?", id).Count(&transactions).Error; err != nil {
			return err
		}
		if positions > 0 || transactions > 0 {
			return &HasDependentsError{Positions: positions, Transactions: transactions}
		}

		if err := tx.Where("position_budget_id = ?", id).Delete(&domain.BudgetEvent{}).Error; err != nil {
			return err
		}
		return tx.Where("position_budget_id = ?", id).Delete(&domain.PositionBudget{}).Error
	})
}
