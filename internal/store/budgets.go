package store

import (
	"context"

	"budgettracker/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// BudgetsForMonth returns the user's budgets for month with their category.
func (s *Store) BudgetsForMonth(ctx context.Context, userID uuid.UUID, month string) ([]models.Budget, error) {
	items := []models.Budget{}
	err := s.conn(ctx).
		Preload("Category").
		Where("user_id = ? AND month = ?", userID, month).
		Order("created_at").Order("id").
		Find(&items).Error
	return items, translate(err)
}

// BudgetFor returns the budget of (user, category, month).
func (s *Store) BudgetFor(ctx context.Context, userID, categoryID uuid.UUID, month string) (*models.Budget, error) {
	var b models.Budget
	err := s.conn(ctx).
		Preload("Category").
		Where("user_id = ? AND category_id = ? AND month = ?", userID, categoryID, month).
		First(&b).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// UpsertBudget creates the (user, category, month) row or overwrites its
// limit, then reads the stored row back. Concurrent writers race and the
// last one wins.
func (s *Store) UpsertBudget(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"limit_cents", "updated_at"}),
	}).Create(b).Error
	if err != nil {
		return nil, translate(err)
	}
	return s.BudgetFor(ctx, b.UserID, b.CategoryID, b.Month)
}

// DeleteBudget removes one budget owned by userID.
func (s *Store) DeleteBudget(ctx context.Context, userID, id uuid.UUID) error {
	res := s.conn(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Budget{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
