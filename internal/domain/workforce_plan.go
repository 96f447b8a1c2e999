package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Plan statuses. LOCKED and APPROVED are terminal for editing.
const (
	PlanDraft    = "DRAFT"
	PlanLocked   = "LOCKED"
	PlanApproved = "APPROVED"
)

// WorkforcePlan owns one or more what-if scenarios.
type WorkforcePlan struct {
	PlanID    uuid.UUID `gorm:"column:plan_id;type:uuid;primaryKey" json:"planId"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Status    string    `gorm:"column:status;type:varchar(20);not null;default:DRAFT" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (WorkforcePlan) TableName() string {
	return "WorkforcePlans"
}

func (p *WorkforcePlan) BeforeCreate(tx *gorm.DB) error {
	if p.PlanID == uuid.Nil {
		p.PlanID = uuid.New()
	}
	return nil
}

// Editable reports whether entry mutations are allowed on the plan.
func (p *WorkforcePlan) Editable() bool {
	return p.Status != PlanLocked && p.Status != PlanApproved
}

// PlanScenario is one named variant of a plan with its own entry rows.
type PlanScenario struct {
	ScenarioID uuid.UUID `gorm:"column:scenario_id;type:uuid;primaryKey" json:"scenarioId"`
	PlanID     uuid.UUID `gorm:"column:plan_id;type:uuid;not null;index" json:"planId"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (PlanScenario) TableName() string {
	return "PlanScenarios"
}

func (s *PlanScenario) BeforeCreate(tx *gorm.DB) error {
	if s.ScenarioID == uuid.Nil {
		s.ScenarioID = uuid.New()
	}
	return nil
}

// WorkforcePlanEntry is one planning row per (scenario, job role, job level).
// TotalPayrollImpact is derived and recomputed on every write; scenario
// totals are always a fresh fold over rows, never a running counter.
type WorkforcePlanEntry struct {
	EntryID             uuid.UUID       `gorm:"column:entry_id;type:uuid;primaryKey" json:"entryId"`
	ScenarioID          uuid.UUID       `gorm:"column:scenario_id;type:uuid;not null;uniqueIndex:scenario_role_level" json:"scenarioId"`
	JobRoleID           uuid.UUID       `gorm:"column:job_role_id;type:uuid;not null;uniqueIndex:scenario_role_level" json:"jobRoleId"`
	JobLevelID          uuid.UUID       `gorm:"column:job_level_id;type:uuid;not null;uniqueIndex:scenario_role_level" json:"jobLevelId"`
	CurrentHeadcount    int             `gorm:"column:current_headcount;not null;default:0" json:"currentHeadcount"`
	Q1Hires             int             `gorm:"column:q1_hires;not null;default:0" json:"q1Hires"`
	Q2Hires             int             `gorm:"column:q2_hires;not null;default:0" json:"q2Hires"`
	Q3Hires             int             `gorm:"column:q3_hires;not null;default:0" json:"q3Hires"`
	Q4Hires             int             `gorm:"column:q4_hires;not null;default:0" json:"q4Hires"`
	PlannedExits        int             `gorm:"column:planned_exits;not null;default:0" json:"plannedExits"`
	AverageCompensation decimal.Decimal `gorm:"column:average_compensation;type:decimal(18,2);not null;default:0" json:"averageCompensation"`
	TotalPayrollImpact  decimal.Decimal `gorm:"column:total_payroll_impact;type:decimal(18,2);not null;default:0" json:"totalPayrollImpact"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func (WorkforcePlanEntry) TableName() string {
	return "WorkforcePlanEntries"
}

func (e *WorkforcePlanEntry) BeforeCreate(tx *gorm.DB) error {
	if e.EntryID == uuid.Nil {
		e.EntryID = uuid.New()
	}
	return nil
}

// TotalHires is the planned hires across all four quarters.
func (e *WorkforcePlanEntry) TotalHires() int {
	return e.Q1Hires + e.Q2Hires + e.Q3Hires + e.Q4Hires
}

// RecomputePayrollImpact refreshes the derived payroll column from the
// quarterly hires and average compensation.
func (e *WorkforcePlanEntry) RecomputePayrollImpact() {
	e.TotalPayrollImpact = e.AverageCompensation.Mul(decimal.NewFromInt(int64(e.TotalHires())))
}
