package workforce

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"planora-backend/internal/domain"
)

// Service maintains the per-role/per-level planning rows of a scenario and
// the derived scenario totals. Totals are always a fresh fold over rows,
// never a stored counter.
type Service struct {
	DB *gorm.DB
}

// EntryInput is one row in an upsert batch, keyed by (role, level) within
// the scenario. Rows are independent; the batch applies all-or-nothing.
type EntryInput struct {
	JobRoleID           uuid.UUID       `json:"jobRoleId"`
	JobLevelID          uuid.UUID       `json:"jobLevelId"`
	CurrentHeadcount    int             `json:"currentHeadcount"`
	Q1Hires             int             `json:"q1Hires"`
	Q2Hires             int             `json:"q2Hires"`
	Q3Hires             int             `json:"q3Hires"`
	Q4Hires             int             `json:"q4Hires"`
	PlannedExits        int             `json:"plannedExits"`
	AverageCompensation decimal.Decimal `json:"averageCompensation"`
}

// ScenarioTotals is the column-wise fold over a scenario's entries.
type ScenarioTotals struct {
	Headcount          int             `json:"headcount"`
	Q1Hires            int             `json:"q1Hires"`
	Q2Hires            int             `json:"q2Hires"`
	Q3Hires            int             `json:"q3Hires"`
	Q4Hires            int             `json:"q4Hires"`
	TotalHires         int             `json:"totalHires"`
	PlannedExits       int             `json:"plannedExits"`
	NetChange          int             `json:"netChange"`
	TotalPayrollImpact decimal.Decimal `json:"totalPayrollImpact"`
}

// FoldTotals recomputes scenario totals from the current entry set.
func FoldTotals(entries []domain.WorkforcePlanEntry) ScenarioTotals {
	t := ScenarioTotals{TotalPayrollImpact: decimal.Zero}
	for _, e := range entries {
		t.Headcount += e.CurrentHeadcount
		t.Q1Hires += e.Q1Hires
		t.Q2Hires += e.Q2Hires
		t.Q3Hires += e.Q3Hires
		t.Q4Hires += e.Q4Hires
		t.PlannedExits += e.PlannedExits
		t.TotalPayrollImpact = t.TotalPayrollImpact.Add(e.TotalPayrollImpact)
	}
	t.TotalHires = t.Q1Hires + t.Q2Hires + t.Q3Hires + t.Q4Hires
	t.NetChange = t.TotalHires - t.PlannedExits
	return t
}

// loadScenario resolves the plan and the scenario, verifying ownership.
func loadScenario(tx *gorm.DB, planID, scenarioID uuid.UUID) (*domain.WorkforcePlan, *domain.PlanScenario, error) {
	var plan domain.WorkforcePlan
	if err := tx.Where("plan_id = ?", planID).First(&plan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrPlanNotFound
		}
		return nil, nil, err
	}
	var scenario domain.PlanScenario
	if err := tx.Where("scenario_id = ? AND plan_id = ?", scenarioID, planID).First(&scenario).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrScenarioNotFound
		}
		return nil, nil, err
	}
	return &plan, &scenario, nil
}

// UpsertEntries applies one batch of row changes. The plan-state precondition
// is checked once for the whole batch; each row recomputes its payroll impact
// before the upsert keyed by (scenario, role, level). Returns the updated
// rows plus the recomputed scenario totals.
func (s *Service) UpsertEntries(ctx context.Context, planID, scenarioID uuid.UUID, rows []EntryInput) ([]domain.WorkforcePlanEntry, ScenarioTotals, error) {
	var updated []domain.WorkforcePlanEntry
	var totals ScenarioTotals

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, _, err := loadScenario(tx, planID, scenarioID)
		if err != nil {
			return err
		}
		if !plan.Editable() {
			return &PlanNotEditableError{Status: plan.Status}
		}

		updated = make([]domain.WorkforcePlanEntry, 0, len(rows))
		for _, in := range rows {
			var entry domain.WorkforcePlanEntry
			err := tx.Where("scenario_id = ? AND job_role_id = ? AND job_level_id = ?",
				scenarioID, in.JobRoleID, in.JobLevelID).First(&entry).Error
			switch {
			case err == gorm.ErrRecordNotFound:
				entry = domain.WorkforcePlanEntry{
					ScenarioID: scenarioID,
					JobRoleID:  in.JobRoleID,
					JobLevelID: in.JobLevelID,
				}
			case err != nil:
				return err
			}

			entry.CurrentHeadcount = in.CurrentHeadcount
			entry.Q1Hires = in.Q1Hires
			entry.Q2Hires = in.Q2Hires
			entry.Q3Hires = in.Q3Hires
			entry.Q4Hires = in.Q4Hires
			entry.PlannedExits = in.PlannedExits
			entry.AverageCompensation = in.AverageCompensation
			entry.RecomputePayrollImpact()

			if err := tx.Save(&entry).Error; err != nil {
				return err
			}
			updated = append(updated, entry)
		}

		var all []domain.WorkforcePlanEntry
		if err := tx.Where("scenario_id = ?", scenarioID).Find(&all).Error; err != nil {
			return err
		}
		totals = FoldTotals(all)
		return nil
	})
	if err != nil {
		return nil, ScenarioTotals{}, err
	}
	return updated, totals, nil
}

// ListEntries returns all rows of a scenario plus its recomputed totals.
func (s *Service) ListEntries(ctx context.Context, planID, scenarioID uuid.UUID) ([]domain.WorkforcePlanEntry, ScenarioTotals, error) {
	if _, _, err := loadScenario(s.DB.WithContext(ctx), planID, scenarioID); err != nil {
		return nil, ScenarioTotals{}, err
	}
	var entries []domain.WorkforcePlanEntry
	if err := s.DB.WithContext(ctx).Where("scenario_id = ?", scenarioID).
		Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, ScenarioTotals{}, err
	}
	return entries, FoldTotals(entries), nil
}
