package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#E5E7EB"

// Category is a named, colored spending bucket owned by a single user.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Color     string    `gorm:"size:16;not null;default:'#E5E7EB'" json:"color"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
