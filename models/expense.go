package models

import (
	"time"

	"budgettracker/pkg/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Expense is a single dated spending record. CategoryID becomes NULL when
// its category is deleted; such expenses are shown as uncategorized.
type Expense struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	UserID     uuid.UUID    `gorm:"type:uuid;not null;index:idx_expense_owner_date,priority:1" json:"-"`
	CategoryID *uuid.UUID   `gorm:"type:uuid;index" json:"categoryId"`
	Category   *Category    `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category"`
	Amount     money.Amount `gorm:"column:amount_cents;not null" json:"amount"`
	Date       time.Time    `gorm:"not null;index:idx_expense_owner_date,priority:2" json:"date"`
	Month      string       `gorm:"size:7;not null;index" json:"month"` // YYYY-MM, derived from Date
	Notes      string       `gorm:"size:500" json:"notes"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
