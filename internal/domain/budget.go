package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// API contract sends money amounts as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// DepartmentBudget is the fiscal-year ceiling a department's position
// budgets are partitioned from.
type DepartmentBudget struct {
	DepartmentBudgetID uuid.UUID       `gorm:"column:department_budget_id;type:uuid;primaryKey" json:"departmentBudgetId"`
	DepartmentID       uuid.UUID       `gorm:"column:department_id;type:uuid;not null" json:"departmentId"`
	FiscalYear         int             `gorm:"column:fiscal_year;not null" json:"fiscalYear"`
	TotalAmount        decimal.Decimal `gorm:"column:total_amount;type:decimal(18,2);not null" json:"totalAmount"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func (DepartmentBudget) TableName() string {
	return "DepartmentBudgets"
}

func (d *DepartmentBudget) BeforeCreate(tx *gorm.DB) error {
	if d.DepartmentBudgetID == uuid.Nil {
		d.DepartmentBudgetID = uuid.New()
	}
	return nil
}

// PositionBudget is the allocation unit the ledger draws against.
// Deleted only while it has no linked positions and no transactions.
type PositionBudget struct {
	PositionBudgetID   uuid.UUID       `gorm:"column:position_budget_id;type:uuid;primaryKey" json:"positionBudgetId"`
	DepartmentBudgetID uuid.UUID       `gorm:"column:department_budget_id;type:uuid;not null" json:"departmentBudgetId"`
	AllocatedAmount    decimal.Decimal `gorm:"column:allocated_amount;type:decimal(18,2);not null" json:"allocatedAmount"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func (PositionBudget) TableName() string {
	return "PositionBudgets"
}

func (p *PositionBudget) BeforeCreate(tx *gorm.DB) error {
	if p.PositionBudgetID == uuid.Nil {
		p.PositionBudgetID = uuid.New()
	}
	return nil
}
