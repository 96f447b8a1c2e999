package assignments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"planora-backend/internal/domain"
	"planora-backend/internal/pkg/interval"
)

// Service validates and creates employee-to-position assignments. The two
// invariants it guards: at most one PRIMARY assignment per position over any
// instant, and at most 100% summed allocation per employee over any window.
type Service struct {
	DB *gorm.DB
}

// ProposeInput is a proposed assignment. ValidTo nil means open-ended.
type ProposeInput struct {
	EmployeeID     uuid.UUID
	PositionID     uuid.UUID
	AssignmentType string
	AllocationPct  int
	ValidFrom      time.Time
	ValidTo        *time.Time
}

// Propose runs the full validation chain and creates the assignment. The
// read-check-write runs inside one DB transaction that first claims the
// employee row and then the position row (always in that order), so
// concurrent proposals touching either serialization unit queue up rather
// than validating against a stale view.
func (s *Service) Propose(ctx context.Context, in ProposeInput) (*domain.Assignment, error) {
	span := interval.Normalize(in.ValidFrom, in.ValidTo)
	var created domain.Assignment

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&domain.Employee{}).Where("employee_id = ?", in.EmployeeID).UpdateColumn("updated_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrEmployeeNotFound
		}
		res = tx.Model(&domain.Position{}).Where("position_id = ?", in.PositionID).UpdateColumn("updated_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPositionNotFound
		}

		var pos domain.Position
		if err := tx.Where("position_id = ?", in.PositionID).First(&pos).Error; err != nil {
			return err
		}
		if pos.IsFrozen {
			return ErrPositionFrozen
		}

		if in.AssignmentType == domain.AssignmentPrimary {
			var existing []domain.Assignment
			if err := tx.Where("position_id = ? AND assignment_type = ?", in.PositionID, domain.AssignmentPrimary).
				Find(&existing).Error; err != nil {
				return err
			}
			for _, a := range existing {
				if a.Validity().Overlaps(span) {
					return &PrimaryConflictError{
						ConflictingAssignmentID: a.AssignmentID,
						ValidFrom:               a.ValidFrom,
						ValidTo:                 a.ValidTo,
					}
				}
			}
		}

		// The ceiling holds over any overlapping window, not just "today":
		// a past or future interval still supports as-of queries.
		var others []domain.Assignment
		if err := tx.Where("employee_id = ?", in.EmployeeID).Find(&others).Error; err != nil {
			return err
		}
		total := 0
		for _, a := range others {
			if a.Validity().Overlaps(span) {
				total += a.AllocationPct
			}
		}
		if total+in.AllocationPct > 100 {
			return &OverAllocationError{CurrentTotal: total, Requested: in.AllocationPct}
		}

		created = domain.Assignment{
			EmployeeID:     in.EmployeeID,
			PositionID:     in.PositionID,
			AssignmentType: in.AssignmentType,
			AllocationPct:  in.AllocationPct,
			ValidFrom:      span.From,
			ValidTo:        span.To,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// End closes an assignment by setting its validTo; nothing is ever deleted.
// The end date may only shrink the interval: moving validTo later would
// extend the assignment past the window the primary and allocation checks
// validated at creation.
func (s *Service) End(ctx context.Context, id uuid.UUID, endDate time.Time) (*domain.Assignment, error) {
	var a domain.Assignment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", id).First(&a).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrAssignmentNotFound
			}
			return err
		}
		if endDate.Before(a.ValidFrom) || endDate.After(a.ValidTo) {
			return &EndOutsideWindowError{ValidFrom: a.ValidFrom, ValidTo: a.ValidTo}
		}
		a.ValidTo = endDate
		return tx.Model(&domain.Assignment{}).Where("assignment_id = ?", id).
			Update("valid_to", endDate).Error
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListFilter narrows List.
type ListFilter struct {
	EmployeeID     *uuid.UUID
	PositionID     *uuid.UUID
	AssignmentType string
	AsOf           *time.Time
	ActiveOnly     bool
}

// AssignmentView annotates an assignment with its derived state at the
// reference instant.
type AssignmentView struct {
	domain.Assignment
	IsActive          bool            `json:"isActive"`
	TotalCompensation decimal.Decimal `json:"totalCompensation"`
}

// List returns assignments annotated as of the filter's instant (default now).
func (s *Service) List(ctx context.Context, f ListFilter) ([]AssignmentView, error) {
	asOf := time.Now()
	if f.AsOf != nil {
		asOf = *f.AsOf
	}

	q := s.DB.WithContext(ctx).Model(&domain.Assignment{})
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}
	if f.PositionID != nil {
		q = q.Where("position_id = ?", *f.PositionID)
	}
	if f.AssignmentType != "" {
		q = q.Where("assignment_type = ?", f.AssignmentType)
	}
	var rows []domain.Assignment
	if err := q.Order("valid_from ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]AssignmentView, 0, len(rows))
	for _, a := range rows {
		active := a.ActiveAt(asOf)
		if f.ActiveOnly && !active {
			continue
		}
		view := AssignmentView{Assignment: a, IsActive: active, TotalCompensation: decimal.Zero}

		var snaps []domain.CompensationSnapshot
		if err := s.DB.WithContext(ctx).Where("assignment_id = ?", a.AssignmentID).Find(&snaps).Error; err != nil {
			return nil, err
		}
		for _, sn := range snaps {
			if sn.ActiveAt(asOf) {
				view.TotalCompensation = view.TotalCompensation.Add(sn.Amount)
			}
		}
		out = append(out, view)
	}
	return out, nil
}
