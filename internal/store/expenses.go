package store

import (
	"context"
	"time"

	"budgettracker/models"
	"budgettracker/pkg/money"

	"github.com/google/uuid"
)

// ExpenseFilter selects a user's expenses by date. To is exclusive unless
// ToInclusive is set.
type ExpenseFilter struct {
	UserID      uuid.UUID
	From        time.Time
	To          time.Time
	ToInclusive bool
	CategoryID  *uuid.UUID
}

func (s *Store) CreateExpense(ctx context.Context, e *models.Expense) error {
	return translate(s.conn(ctx).Create(e).Error)
}

func (s *Store) ExpenseByID(ctx context.Context, userID, id uuid.UUID) (*models.Expense, error) {
	var e models.Expense
	if err := s.conn(ctx).Preload("Category").Where("id = ? AND user_id = ?", id, userID).First(&e).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

// UpdateExpense writes the editable columns of e, scoped to e.UserID.
func (s *Store) UpdateExpense(ctx context.Context, e *models.Expense) error {
	res := s.conn(ctx).Model(e).
		Where("user_id = ?", e.UserID).
		Select("category_id", "amount_cents", "date", "month", "notes", "updated_at").
		Updates(e)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, userID, id uuid.UUID) error {
	res := s.conn(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Expense{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListExpenses returns matching expenses newest first, category populated.
func (s *Store) ListExpenses(ctx context.Context, f ExpenseFilter) ([]models.Expense, error) {
	q := s.conn(ctx).Preload("Category").Where("user_id = ? AND date >= ?", f.UserID, f.From)
	if f.ToInclusive {
		q = q.Where("date <= ?", f.To)
	} else {
		q = q.Where("date < ?", f.To)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	items := []models.Expense{}
	err := q.Order("date desc").Order("created_at desc").Find(&items).Error
	return items, translate(err)
}

// SpentInCategory sums the user's expenses of one category in [from, to).
func (s *Store) SpentInCategory(ctx context.Context, userID, categoryID uuid.UUID, from, to time.Time) (money.Amount, error) {
	var total int64
	err := s.conn(ctx).Model(&models.Expense{}).
		Select("CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT)").
		Where("user_id = ? AND category_id = ? AND date >= ? AND date < ?", userID, categoryID, from, to).
		Scan(&total).Error
	if err != nil {
		return 0, translate(err)
	}
	return money.Amount(total), nil
}

// SpentByCategory sums the user's categorized expenses in [from, to) per category.
func (s *Store) SpentByCategory(ctx context.Context, userID uuid.UUID, from, to time.Time) (map[uuid.UUID]money.Amount, error) {
	var rows []struct {
		CategoryID uuid.UUID
		Total      int64
	}
	err := s.conn(ctx).Model(&models.Expense{}).
		Select("category_id, CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT) AS total").
		Where("user_id = ? AND category_id IS NOT NULL AND date >= ? AND date < ?", userID, from, to).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make(map[uuid.UUID]money.Amount, len(rows))
	for _, r := range rows {
		out[r.CategoryID] = money.Amount(r.Total)
	}
	return out, nil
}
