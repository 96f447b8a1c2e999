package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Department groups positions; its budget ceiling lives in DepartmentBudget.
type Department struct {
	DepartmentID uuid.UUID `gorm:"column:department_id;type:uuid;primaryKey" json:"departmentId"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Department) TableName() string {
	return "Departments"
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.DepartmentID == uuid.Nil {
		d.DepartmentID = uuid.New()
	}
	return nil
}

// Position is a funded slot in a department. Vacancy is never stored: a
// position is vacant iff it has no PRIMARY assignment valid at the instant
// in question.
type Position struct {
	PositionID       uuid.UUID  `gorm:"column:position_id;type:uuid;primaryKey" json:"positionId"`
	DepartmentID     uuid.UUID  `gorm:"column:department_id;type:uuid;not null;index" json:"departmentId"`
	PositionBudgetID *uuid.UUID `gorm:"column:position_budget_id;type:uuid;index" json:"positionBudgetId"`
	JobProfile       string     `gorm:"column:job_profile;not null" json:"jobProfile"`
	IsFrozen         bool       `gorm:"column:is_frozen;not null;default:false" json:"isFrozen"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (Position) TableName() string {
	return "Positions"
}

func (p *Position) BeforeCreate(tx *gorm.DB) error {
	if p.PositionID == uuid.Nil {
		p.PositionID = uuid.New()
	}
	return nil
}

// Employee is the person side of an assignment.
type Employee struct {
	EmployeeID uuid.UUID `gorm:"column:employee_id;type:uuid;primaryKey" json:"employeeId"`
	Fullname   string    `gorm:"column:fullname;not null" json:"fullname"`
	Email      string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Employee) TableName() string {
	return "Employees"
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.EmployeeID == uuid.Nil {
		e.EmployeeID = uuid.New()
	}
	return nil
}
