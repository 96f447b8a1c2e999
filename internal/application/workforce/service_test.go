package workforce

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"planora-backend/internal/domain"
)

func setupWorkforceTest(t *testing.T) (*Service, domain.WorkforcePlan, domain.PlanScenario) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.WorkforcePlan{}, &domain.PlanScenario{}, &domain.WorkforcePlanEntry{},
	))

	plan := domain.WorkforcePlan{Name: "FY26 Plan", Status: domain.PlanDraft}
	require.NoError(t, db.Create(&plan).Error)
	scenario := domain.PlanScenario{PlanID: plan.PlanID, Name: "Base case"}
	require.NoError(t, db.Create(&scenario).Error)

	return &Service{DB: db}, plan, scenario
}

// A new row derives its payroll impact from the quarterly hires times the
// average compensation, and the totals come back as a fresh fold.
func TestUpsertEntries_DerivesPayrollImpact(t *testing.T) {
	svc, plan, scenario := setupWorkforceTest(t)

	in := EntryInput{
		JobRoleID:           uuid.New(),
		JobLevelID:          uuid.New(),
		CurrentHeadcount:    10,
		Q1Hires:             2,
		Q2Hires:             1,
		Q3Hires:             0,
		Q4Hires:             1,
		PlannedExits:        1,
		AverageCompensation: decimal.NewFromInt(100000),
	}
	entries, totals, err := svc.UpsertEntries(context.Background(), plan.PlanID, scenario.ScenarioID, []EntryInput{in})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].TotalHires())
	assert.True(t, entries[0].TotalPayrollImpact.Equal(decimal.NewFromInt(400000)))

	assert.Equal(t, 10, totals.Headcount)
	assert.Equal(t, 4, totals.TotalHires)
	assert.Equal(t, 3, totals.NetChange)
	assert.True(t, totals.TotalPayrollImpact.Equal(decimal.NewFromInt(400000)))
}

// Re-upserting the same (role, level) overwrites the row and recomputes the
// derived column instead of inserting a duplicate.
func TestUpsertEntries_OverwritesByKey(t *testing.T) {
	svc, plan, scenario := setupWorkforceTest(t)
	roleID, levelID := uuid.New(), uuid.New()

	first := EntryInput{
		JobRoleID: roleID, JobLevelID: levelID,
		Q1Hires: 2, Q2Hires: 1, Q4Hires: 1,
		AverageCompensation: decimal.NewFromInt(100000),
	}
	_, _, err := svc.UpsertEntries(context.Background(), plan.PlanID, scenario.ScenarioID, []EntryInput{first})
	require.NoError(t, err)

	second := first
	second.Q2Hires = 3
	entries, totals, err := svc.UpsertEntries(context.Background(), plan.PlanID, scenario.ScenarioID, []EntryInput{second})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].TotalPayrollImpact.Equal(decimal.NewFromInt(600000)))

	var count int64
	require.NoError(t, svc.DB.Model(&domain.WorkforcePlanEntry{}).
		Where("scenario_id = ?", scenario.ScenarioID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.True(t, totals.TotalPayrollImpact.Equal(decimal.NewFromInt(600000)))
}

// Totals fold over every row of the scenario, not just the batch that was
// written.
func TestUpsertEntries_TotalsAcrossRows(t *testing.T) {
	svc, plan, scenario := setupWorkforceTest(t)

	_, _, err := svc.UpsertEntries(context.Background(), plan.PlanID, scenario.ScenarioID, []EntryInput{{
		JobRoleID: uuid.New(), JobLevelID: uuid.New(),
		CurrentHeadcount: 5, Q1Hires: 1, PlannedExits: 2,
		AverageCompensation: decimal.NewFromInt(80000),
	}})
	require.NoError(t, err)

	_, totals, err := svc.UpsertEntries(context.Background(), plan.PlanID, scenario.ScenarioID, []EntryInput{{
		JobRoleID: uuid.New(), JobLevelID: uuid.New(),
		CurrentHeadcount: 3, Q3Hires: 2,
		AverageCompensation: decimal.NewFromInt(50000),
	}})
	require.NoError(t, err)

	assert.Equal(t, 8, totals.Headcount)
	assert.Equal(t, 3, totals.TotalHires)
	assert.Equal(t, 2, totals.PlannedExits)
	assert.Equal(t, 1, totals.NetChange)
	assert.True(t, totals.TotalPayrollImpact.Equal(decimal.NewFromInt(180000)))
}

// LOCKED and APPROVED plans reject the whole batch up front.
func TestUpsertEntries_PlanNotEditable(t *testing.T) {
	for _, status := range []string{domain.PlanLocked, domain.PlanApproved} {
		svc, plan, scenario := setupWorkforceTest(t)
		require.NoError(t, svc.DB.Model(&domain.WorkforcePlan{}).
			Where("plan_id = ?", plan.PlanID).Update("status", status).Error)

		_, _, err := svc.UpsertEntries(context.Background(), plan.PlanID, scenario.ScenarioID, []EntryInput{{
			JobRoleID: uuid.New(), JobLevelID: uuid.New(), Q1Hires: 1,
			AverageCompensation: decimal.NewFromInt(100),
		}})
		var notEditable *PlanNotEditableError
		require.ErrorAs(t, err, &notEditable)
		assert.Equal(t, status, notEditable.Status)

		var count int64
		require.NoError(t, svc.DB.Model(&domain.WorkforcePlanEntry{}).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestUpsertEntries_UnknownPlanOrScenario(t *testing.T) {
	svc, plan, _ := setupWorkforceTest(t)
	row := []EntryInput{{JobRoleID: uuid.New(), JobLevelID: uuid.New()}}

	_, _, err := svc.UpsertEntries(context.Background(), uuid.New(), uuid.New(), row)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, _, err = svc.UpsertEntries(context.Background(), plan.PlanID, uuid.New(), row)
	assert.ErrorIs(t, err, ErrScenarioNotFound)
}

// A scenario belonging to a different plan is not reachable through this
// plan's ID.
func TestListEntries_ScenarioOwnership(t *testing.T) {
	svc, plan, scenario := setupWorkforceTest(t)
	otherPlan := domain.WorkforcePlan{Name: "FY27 Plan", Status: domain.PlanDraft}
	require.NoError(t, svc.DB.Create(&otherPlan).Error)

	_, _, err := svc.ListEntries(context.Background(), otherPlan.PlanID, scenario.ScenarioID)
	assert.ErrorIs(t, err, ErrScenarioNotFound)

	_, _, err = svc.ListEntries(context.Background(), plan.PlanID, scenario.ScenarioID)
	assert.NoError(t, err)
}

func TestFoldTotals_Empty(t *testing.T) {
	totals := FoldTotals(nil)
	assert.Zero(t, totals.Headcount)
	assert.Zero(t, totals.TotalHires)
	assert.Zero(t, totals.NetChange)
	assert.True(t, totals.TotalPayrollImpact.Equal(decimal.Zero))
}
