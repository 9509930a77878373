package models

import (
	"time"

	"budgettracker/pkg/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Budget is the spending limit of one category for one month.
// At most one row exists per (user, category, month).
type Budget struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	UserID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_budget_owner_month,priority:1" json:"-"`
	CategoryID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_budget_owner_month,priority:2" json:"categoryId"`
	Category   *Category    `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"category"`
	Month      string       `gorm:"size:7;not null;index;uniqueIndex:idx_budget_owner_month,priority:3" json:"month"` // YYYY-MM
	Limit      money.Amount `gorm:"column:limit_cents;not null" json:"limit"`
	// TotalSpent is filled by reconciliation queries, never stored.
	TotalSpent money.Amount `gorm:"-" json:"totalSpent"`
}

func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
