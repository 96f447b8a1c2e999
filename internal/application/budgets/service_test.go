package budgets

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"planora-backend/internal/domain"
	"planora-backend/internal/pkg/interval"
)

type budgetFixture struct {
	svc    *Service
	dept   domain.Department
	parent domain.DepartmentBudget
	alloc  domain.PositionBudget
}

func setupBudgetTest(t *testing.T) budgetFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Department{}, &domain.DepartmentBudget{}, &domain.PositionBudget{},
		&domain.Position{}, &domain.Employee{}, &domain.Assignment{},
		&domain.CompensationSnapshot{}, &domain.BudgetTransaction{}, &domain.BudgetEvent{},
	))

	dept := domain.Department{Name: "Engineering"}
	require.NoError(t, db.Create(&dept).Error)
	parent := domain.DepartmentBudget{
		DepartmentID: dept.DepartmentID,
		FiscalYear:   2026,
		TotalAmount:  decimal.NewFromInt(300000),
	}
	require.NoError(t, db.Create(&parent).Error)
	alloc := domain.PositionBudget{
		DepartmentBudgetID: parent.DepartmentBudgetID,
		AllocatedAmount:    decimal.NewFromInt(100000),
	}
	require.NoError(t, db.Create(&alloc).Error)

	return budgetFixture{svc: &Service{DB: db}, dept: dept, parent: parent, alloc: alloc}
}

// Get derives consumed and available from the ledger rows and reports one
// view per linked position.
func TestGet_DerivedAmounts(t *testing.T) {
	f := setupBudgetTest(t)
	id := f.alloc.PositionBudgetID

	txs := []domain.BudgetTransaction{
		{PositionBudgetID: id, TxType: domain.TxEncumber, Amount: decimal.NewFromInt(-60000), TxDate: time.Now()},
		{PositionBudgetID: id, TxType: domain.TxRelease, Amount: decimal.NewFromInt(10000), TxDate: time.Now()},
	}
	for i := range txs {
		require.NoError(t, f.svc.DB.Create(&txs[i]).Error)
	}

	view, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, view.ConsumedAmount.Equal(decimal.NewFromInt(50000)))
	assert.True(t, view.AvailableAmount.Equal(decimal.NewFromInt(50000)))
	assert.True(t, view.Metrics.Encumbered.Equal(decimal.NewFromInt(60000)))
	assert.True(t, view.Metrics.Released.Equal(decimal.NewFromInt(10000)))
	assert.Empty(t, view.Positions)

	_, err = f.svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPositionBudgetNotFound)
}

// A position with a PRIMARY assignment valid now is occupied; its view
// carries the employee and the compensation components valid now.
func TestGet_PositionOccupancy(t *testing.T) {
	f := setupBudgetTest(t)
	id := f.alloc.PositionBudgetID

	pos := domain.Position{DepartmentID: f.dept.DepartmentID, PositionBudgetID: &id, JobProfile: "Backend Engineer"}
	require.NoError(t, f.svc.DB.Create(&pos).Error)
	vacant := domain.Position{DepartmentID: f.dept.DepartmentID, PositionBudgetID: &id, JobProfile: "Platform Engineer"}
	require.NoError(t, f.svc.DB.Create(&vacant).Error)
	emp := domain.Employee{Fullname: "Ada Example", Email: "ada@example.com"}
	require.NoError(t, f.svc.DB.Create(&emp).Error)

	a := domain.Assignment{
		EmployeeID:     emp.EmployeeID,
		PositionID:     pos.PositionID,
		AssignmentType: domain.AssignmentPrimary,
		AllocationPct:  100,
		ValidFrom:      time.Now().AddDate(0, -1, 0),
		ValidTo:        interval.FarFuture,
	}
	require.NoError(t, f.svc.DB.Create(&a).Error)
	snap := domain.CompensationSnapshot{
		AssignmentID:  a.AssignmentID,
		ComponentType: domain.CompBase,
		Amount:        decimal.NewFromInt(90000),
		ValidFrom:     a.ValidFrom,
		ValidTo:       interval.FarFuture,
	}
	require.NoError(t, f.svc.DB.Create(&snap).Error)

	view, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, view.Positions, 2)

	byProfile := map[string]PositionView{}
	for _, pv := range view.Positions {
		byProfile[pv.JobProfile] = pv
	}
	occupied := byProfile["Backend Engineer"]
	assert.False(t, occupied.IsVacant)
	require.NotNil(t, occupied.CurrentEmployee)
	assert.Equal(t, emp.EmployeeID, occupied.CurrentEmployee.EmployeeID)
	assert.True(t, occupied.CurrentCompensation.Equal(decimal.NewFromInt(90000)))

	assert.True(t, byProfile["Platform Engineer"].IsVacant)
}

// Raising an allocation past what the parent budget leaves after siblings
// is rejected.
func TestUpdate_SiblingSumCeiling(t *testing.T) {
	f := setupBudgetTest(t)
	sibling := domain.PositionBudget{
		DepartmentBudgetID: f.parent.DepartmentBudgetID,
		AllocatedAmount:    decimal.NewFromInt(150000),
	}
	require.NoError(t, f.svc.DB.Create(&sibling).Error)

	amount := decimal.NewFromInt(200000)
	_, err := f.svc.Update(context.Background(), f.alloc.PositionBudgetID, UpdateInput{AllocatedAmount: &amount})
	var exceeds *AllocationExceedsBudgetError
	require.ErrorAs(t, err, &exceeds)
	assert.True(t, exceeds.SiblingAllocated.Equal(decimal.NewFromInt(150000)))

	amount = decimal.NewFromInt(150000)
	updated, err := f.svc.Update(context.Background(), f.alloc.PositionBudgetID, UpdateInput{AllocatedAmount: &amount})
	require.NoError(t, err)
	assert.True(t, updated.AllocatedAmount.Equal(amount))
}

// Lowering an allocation under the ledger's consumed amount is rejected.
func TestUpdate_BelowConsumed(t *testing.T) {
	f := setupBudgetTest(t)
	tx := domain.BudgetTransaction{
		PositionBudgetID: f.alloc.PositionBudgetID,
		TxType:           domain.TxEncumber,
		Amount:           decimal.NewFromInt(-70000),
		TxDate:           time.Now(),
	}
	require.NoError(t, f.svc.DB.Create(&tx).Error)

	amount := decimal.NewFromInt(50000)
	_, err := f.svc.Update(context.Background(), f.alloc.PositionBudgetID, UpdateInput{AllocatedAmount: &amount})
	var below *AllocationBelowConsumedError
	require.ErrorAs(t, err, &below)
	assert.True(t, below.Consumed.Equal(decimal.NewFromInt(70000)))
}

// Changing the allocation leaves an ALLOCATION_CHANGED event behind.
func TestUpdate_WritesEvent(t *testing.T) {
	f := setupBudgetTest(t)

	amount := decimal.NewFromInt(120000)
	_, err := f.svc.Update(context.Background(), f.alloc.PositionBudgetID, UpdateInput{
		AllocatedAmount: &amount,
		ActorUserID:     "tester",
	})
	require.NoError(t, err)

	var events []domain.BudgetEvent
	require.NoError(t, f.svc.DB.Where("position_budget_id = ?", f.alloc.PositionBudgetID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventAllocationChanged, events[0].EventType)
}

// Attaching positions requires them to sit in the budget's department;
// detaching clears the link.
func TestUpdate_AttachDetachPositions(t *testing.T) {
	f := setupBudgetTest(t)
	pos := domain.Position{DepartmentID: f.dept.DepartmentID, JobProfile: "Backend Engineer"}
	require.NoError(t, f.svc.DB.Create(&pos).Error)

	otherDept := domain.Department{Name: "Sales"}
	require.NoError(t, f.svc.DB.Create(&otherDept).Error)
	foreign := domain.Position{DepartmentID: otherDept.DepartmentID, JobProfile: "Account Exec"}
	require.NoError(t, f.svc.DB.Create(&foreign).Error)

	_, err := f.svc.Update(context.Background(), f.alloc.PositionBudgetID, UpdateInput{
		AddPositionIDs: []uuid.UUID{foreign.PositionID},
	})
	assert.ErrorIs(t, err, ErrPositionWrongDepartment)

	_, err = f.svc.Update(context.Background(), f.alloc.PositionBudgetID, UpdateInput{
		AddPositionIDs: []uuid.UUID{pos.PositionID},
	})
	require.NoError(t, err)

	var got domain.Position
	require.NoError(t, f.svc.DB.Where("position_id = ?", pos.PositionID).First(&got).Error)
	require.NotNil(t, got.PositionBudgetID)
	assert.Equal(t, f.alloc.PositionBudgetID, *got.PositionBudgetID)

	_, err = f.svc.Update(context.Background(), f.alloc.PositionBudgetID, UpdateInput{
		RemovePositionIDs: []uuid.UUID{pos.PositionID},
	})
	require.NoError(t, err)
	// Re-fetch into a zeroed struct: gorm leaves a stale pointer value in a
	// reused destination when the column scanned is NULL.
	got = domain.Position{}
	require.NoError(t, f.svc.DB.Where("position_id = ?", pos.PositionID).First(&got).Error)
	assert.Nil(t, got.PositionBudgetID)
}

// Deletion is blocked while positions or ledger history exist, and succeeds
// once the budget is bare.
func TestDelete_Dependents(t *testing.T) {
	f := setupBudgetTest(t)
	id := f.alloc.PositionBudgetID

	tx := domain.BudgetTransaction{
		PositionBudgetID: id,
		TxType:           domain.TxEncumber,
		Amount:           decimal.NewFromInt(-1000),
		TxDate:           time.Now(),
	}
	require.NoError(t, f.svc.DB.Create(&tx).Error)

	err := f.svc.Delete(context.Background(), id)
	var deps *HasDependentsError
	require.ErrorAs(t, err, &deps)
	assert.Equal(t, int64(1), deps.Transactions)

	require.NoError(t, f.svc.DB.Where("position_budget_id = ?", id).Delete(&domain.BudgetTransaction{}).Error)
	require.NoError(t, f.svc.Delete(context.Background(), id))

	err = f.svc.Delete(context.Background(), id)
	assert.ErrorIs(t, err, ErrPositionBudgetNotFound)
}
