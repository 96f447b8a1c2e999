package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"planora-backend/internal/pkg/interval"
)

// Assignment types.
const (
	AssignmentPrimary   = "PRIMARY"
	AssignmentActing    = "ACTING"
	AssignmentSecondary = "SECONDARY"
)

// Assignment links an employee to a position over a validity interval.
// Assignments are ended by setting ValidTo, never deleted.
type Assignment struct {
	AssignmentID   uuid.UUID `gorm:"column:assignment_id;type:uuid;primaryKey" json:"assignmentId"`
	EmployeeID     uuid.UUID `gorm:"column:employee_id;type:uuid;not null;index" json:"employeeId"`
	PositionID     uuid.UUID `gorm:"column:position_id;type:uuid;not null;index" json:"positionId"`
	AssignmentType string    `gorm:"column:assignment_type;type:varchar(20);not null" json:"assignmentType"`
	AllocationPct  int       `gorm:"column:allocation_pct;not null" json:"allocationPct"`
	ValidFrom      time.Time `gorm:"column:valid_from;not null" json:"validFrom"`
	ValidTo        time.Time `gorm:"column:valid_to;not null" json:"validTo"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Assignment) TableName() string {
	return "Assignments"
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.AssignmentID == uuid.Nil {
		a.AssignmentID = uuid.New()
	}
	return nil
}

// Validity returns the assignment's validity interval.
func (a *Assignment) Validity() interval.Span {
	return interval.Span{From: a.ValidFrom, To: a.ValidTo}
}

// ActiveAt reports whether the assignment is valid at t.
func (a *Assignment) ActiveAt(t time.Time) bool {
	return a.Validity().Contains(t)
}

// Compensation component types.
const (
	CompBase      = "BASE"
	CompBonus     = "BONUS"
	CompAllowance = "ALLOWANCE"
)

// CompensationSnapshot is one interval-valid compensation component of an
// assignment. Total compensation at t is the sum of components valid at t.
type CompensationSnapshot struct {
	SnapshotID    uuid.UUID       `gorm:"column:snapshot_id;type:uuid;primaryKey" json:"snapshotId"`
	AssignmentID  uuid.UUID       `gorm:"column:assignment_id;type:uuid;not null;index" json:"assignmentId"`
	ComponentType string          `gorm:"column:component_type;type:varchar(20);not null" json:"componentType"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	ValidFrom     time.Time       `gorm:"column:valid_from;not null" json:"validFrom"`
	ValidTo       time.Time       `gorm:"column:valid_to;not null" json:"validTo"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (CompensationSnapshot) TableName() string {
	return "CompensationSnapshots"
}

func (s *CompensationSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.SnapshotID == uuid.Nil {
		s.SnapshotID = uuid.New()
	}
	return nil
}

// ActiveAt reports whether the component is valid at t.
func (s *CompensationSnapshot) ActiveAt(t time.Time) bool {
	return interval.Span{From: s.ValidFrom, To: s.ValidTo}.Contains(t)
}
