package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Transaction types. Encumbrances are stored with a negative amount;
// releases and adjustments keep the sign they were given.
const (
	TxEncumber = "ENCUMBER"
	TxRelease  = "RELEASE"
	TxAdjust   = "ADJUST"
)

// BudgetTransaction is one immutable row in the append-only ledger.
// Corrections are new ADJUST rows referencing the original, never edits.
type BudgetTransaction struct {
	TransactionID    uuid.UUID       `gorm:"column:transaction_id;type:uuid;primaryKey" json:"transactionId"`
	PositionBudgetID uuid.UUID       `gorm:"column:position_budget_id;type:uuid;not null;index" json:"positionBudgetId"`
	Amount           decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	TxType           string          `gorm:"column:tx_type;type:varchar(20);not null" json:"txType"`
	TxDate           time.Time       `gorm:"column:tx_date;not null" json:"txDate"`
	ReferenceID      *uuid.UUID      `gorm:"column:reference_id;type:uuid" json:"referenceId"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func (BudgetTransaction) TableName() string {
	return "BudgetTransactions"
}

func (t *BudgetTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.TransactionID == uuid.Nil {
		t.TransactionID = uuid.New()
	}
	return nil
}

// Budget event types.
const (
	EventTxCommitted       = "TRANSACTION_COMMITTED"
	EventAllocationChanged = "ALLOCATION_CHANGED"
)

// BudgetEvent records what happened to a position budget and when, with a
// free-form JSON payload describing the change.
type BudgetEvent struct {
	EventID          uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"eventId"`
	PositionBudgetID uuid.UUID      `gorm:"column:position_budget_id;type:uuid;not null;index" json:"positionBudgetId"`
	EventType        string         `gorm:"column:event_type;type:varchar(40);not null" json:"eventType"`
	ActorUserID      *string        `gorm:"column:actor_user_id" json:"actorUserId"`
	EventData        datatypes.JSON `gorm:"column:event_data" json:"eventData"`
	CreatedAt        time.Time      `json:"createdAt"`
}

func (BudgetEvent) TableName() string {
	return "BudgetEvents"
}

func (e *BudgetEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
