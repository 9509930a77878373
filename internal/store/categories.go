package store

import (
	"context"
	"strings"

	"budgettracker/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CascadeResult reports what a category delete touched.
type CascadeResult struct {
	DeletedBudgets        int64
	UncategorizedExpenses int64
}

// ListCategories returns the user's categories, newest first.
func (s *Store) ListCategories(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	items := []models.Category{}
	err := s.conn(ctx).Where("user_id = ?", userID).Order("created_at desc").Order("id").Find(&items).Error
	return items, translate(err)
}

func (s *Store) CategoryByID(ctx context.Context, userID, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	if err := s.conn(ctx).Where("id = ? AND user_id = ?", id, userID).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// CategoryByName matches case-insensitively.
func (s *Store) CategoryByName(ctx context.Context, userID uuid.UUID, name string) (*models.Category, error) {
	var c models.Category
	err := s.conn(ctx).
		Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(strings.TrimSpace(name))).
		Order("created_at").
		First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	return translate(s.conn(ctx).Create(c).Error)
}

// UpdateCategory writes name and color of c, scoped to c.UserID.
func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	res := s.conn(ctx).Model(c).Where("user_id = ?", c.UserID).Select("name", "color", "updated_at").Updates(c)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory removes the category, deletes its budgets and detaches its
// expenses in a single transaction.
func (s *Store) DeleteCategory(ctx context.Context, userID, id uuid.UUID) (CascadeResult, error) {
	var out CascadeResult
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&c).Error; err != nil {
			return err
		}
		res := tx.Where("user_id = ? AND category_id = ?", userID, id).Delete(&models.Budget{})
		if res.Error != nil {
			return res.Error
		}
		out.DeletedBudgets = res.RowsAffected
		res = tx.Model(&models.Expense{}).
			Where("user_id = ? AND category_id = ?", userID, id).
			Update("category_id", nil)
		if res.Error != nil {
			return res.Error
		}
		out.UncategorizedExpenses = res.RowsAffected
		return tx.Delete(&c).Error
	})
	if err != nil {
		return CascadeResult{}, translate(err)
	}
	return out, nil
}
