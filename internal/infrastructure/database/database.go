package database

import (
	"planora-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN. PreferSimpleProtocol disables prepared
// statement caching to avoid 42P05 under connection poolers (PgBouncer etc.).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate creates/updates the schema for all domain models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Department{},
		&domain.DepartmentBudget{},
		&domain.PositionBudget{},
		&domain.BudgetTransaction{},
		&domain.BudgetEvent{},
		&domain.Position{},
		&domain.Employee{},
		&domain.Assignment{},
		&domain.CompensationSnapshot{},
		&domain.WorkforcePlan{},
		&domain.PlanScenario{},
		&domain.WorkforcePlanEntry{},
	)
}
