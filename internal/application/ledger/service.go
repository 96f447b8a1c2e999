package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"planora-backend/internal/domain"
)

// Service is the position-budget ledger: an append-only transaction log per
// allocation, with balances always derived by folding, never cached.
type Service struct {
	DB *gorm.DB
}

// Balance is the derived view of one allocation.
type Balance struct {
	Allocated decimal.Decimal `json:"allocated"`
	Consumed  decimal.Decimal `json:"consumed"`
	Available decimal.Decimal `json:"available"`
}

// Breakdown splits consumption by transaction type.
type Breakdown struct {
	Encumbered  decimal.Decimal `json:"encumbered"`
	Released    decimal.Decimal `json:"released"`
	Adjustments decimal.Decimal `json:"adjustments"`
}

// FoldBalance derives the balance from a transaction set. Pure and
// order-independent: encumbrances count by absolute value, releases
// subtract, adjustments add with their sign.
func FoldBalance(allocated decimal.Decimal, txs []domain.BudgetTransaction) Balance {
	consumed := decimal.Zero
	for _, t := range txs {
		switch t.TxType {
		case domain.TxEncumber:
			consumed = consumed.Add(t.Amount.Abs())
		case domain.TxRelease:
			consumed = consumed.Sub(t.Amount)
		case domain.TxAdjust:
			consumed = consumed.Add(t.Amount)
		}
	}
	return Balance{Allocated: allocated, Consumed: consumed, Available: allocated.Sub(consumed)}
}

// FoldBreakdown sums each transaction type separately for the metrics view.
func FoldBreakdown(txs []domain.BudgetTransaction) Breakdown {
	b := Breakdown{Encumbered: decimal.Zero, Released: decimal.Zero, Adjustments: decimal.Zero}
	for _, t := range txs {
		switch t.TxType {
		case domain.TxEncumber:
			b.Encumbered = b.Encumbered.Add(t.Amount.Abs())
		case domain.TxRelease:
			b.Released = b.Released.Add(t.Amount)
		case domain.TxAdjust:
			b.Adjustments = b.Adjustments.Add(t.Amount)
		}
	}
	return b
}

// ComputeBalance derives allocated/consumed/available for one allocation.
func (s *Service) ComputeBalance(ctx context.Context, allocationID uuid.UUID) (Balance, error) {
	var alloc domain.PositionBudget
	if err := s.DB.WithContext(ctx).Where("position_budget_id = ?", allocationID).First(&alloc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return Balance{}, ErrAllocationNotFound
		}
		return Balance{}, err
	}
	var txs []domain.BudgetTransaction
	if err := s.DB.WithContext(ctx).Where("position_budget_id = ?", allocationID).Find(&txs).Error; err != nil {
		return Balance{}, err
	}
	return FoldBalance(alloc.AllocatedAmount, txs), nil
}

// TxFilter narrows ListTransactions.
type TxFilter struct {
	AllocationID *uuid.UUID
	TxType       string
	StartDate    *time.Time
	EndDate      *time.Time
	ReferenceID  *uuid.UUID
}

// ListTransactions returns ledger rows ordered by transaction date.
func (s *Service) ListTransactions(ctx context.Context, f TxFilter) ([]domain.BudgetTransaction, error) {
	q := s.DB.WithContext(ctx).Model(&domain.BudgetTransaction{})
	if f.AllocationID != nil {
		q = q.Where("position_budget_id = ?", *f.AllocationID)
	}
	if f.TxType != "" {
		q = q.Where("tx_type = ?", f.TxType)
	}
	if f.StartDate != nil {
		q = q.Where("tx_date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("tx_date <= ?", *f.EndDate)
	}
	if f.ReferenceID != nil {
		q = q.Where("reference_id = ?", *f.ReferenceID)
	}
	var txs []domain.BudgetTransaction
	if err := q.Order("tx_date ASC, created_at ASC").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// CommitInput is one proposed ledger transaction.
type CommitInput struct {
	AllocationID uuid.UUID
	Amount       decimal.Decimal
	TxType       string
	TxDate       time.Time
	ReferenceID  *uuid.UUID
	ActorUserID  string
}

// Commit validates and appends one transaction. The whole read-check-write
// runs in a single DB transaction that first claims the allocation row with
// an UPDATE, so concurrent writers against the same allocation queue behind
// the row lock and validate against committed state. The returned balance is
// recomputed from the full transaction set, not derived incrementally.
func (s *Service) Commit(ctx context.Context, in CommitInput) (*domain.BudgetTransaction, Balance, error) {
	var created domain.BudgetTransaction
	var newBalance Balance

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.PositionBudget{}).
			Where("position_budget_id = ?", in.AllocationID).
			UpdateColumn("updated_at", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAllocationNotFound
		}

		var alloc domain.PositionBudget
		if err := tx.Where("position_budget_id = ?", in.AllocationID).First(&alloc).Error; err != nil {
			return err
		}
		var txs []domain.BudgetTransaction
		if err := tx.Where("position_budget_id = ?", in.AllocationID).Find(&txs).Error; err != nil {
			return err
		}
		balance := FoldBalance(alloc.AllocatedAmount, txs)

		stored := in.Amount
		switch in.TxType {
		case domain.TxEncumber:
			requested := in.Amount.Abs()
			if requested.GreaterThan(balance.Available) {
				return &InsufficientBudgetError{Available: balance.Available, Requested: requested}
			}
			stored = requested.Neg()
		case domain.TxRelease:
			if in.Amount.GreaterThan(balance.Consumed) {
				return &OverReleaseError{Consumed: balance.Consumed, Requested: in.Amount}
			}
		case domain.TxAdjust:
			// No a-priori bound; the post-condition below catches adjustments
			// that would push consumed below zero or past the ceiling.
		default:
			return ErrInvalidTxType
		}

		created = domain.BudgetTransaction{
			PositionBudgetID: in.AllocationID,
			Amount:           stored,
			TxType:           in.TxType,
			TxDate:           in.TxDate,
			ReferenceID:      in.ReferenceID,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		// Recompute from scratch so the answer reflects every committed row.
		var after []domain.BudgetTransaction
		if err := tx.Where("position_budget_id = ?", in.AllocationID).Find(&after).Error; err != nil {
			return err
		}
		newBalance = FoldBalance(alloc.AllocatedAmount, after)
		if newBalance.Consumed.IsNegative() {
			return &OverReleaseError{Consumed: balance.Consumed, Requested: in.Amount.Neg()}
		}
		if newBalance.Consumed.GreaterThan(newBalance.Allocated) {
			return &InsufficientBudgetError{Available: balance.Available, Requested: in.Amount}
		}

		eventData, _ := json.Marshal(map[string]interface{}{
			"txType":      in.TxType,
			"amount":      stored,
			"newConsumed": newBalance.Consumed,
		})
		event := domain.BudgetEvent{
			PositionBudgetID: in.AllocationID,
			EventType:        domain.EventTxCommitted,
			EventData:        datatypes.JSON(eventData),
		}
		if in.ActorUserID != "" {
			event.ActorUserID = &in.ActorUserID
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, Balance{}, err
	}
	return &created, newBalance, nil
}
