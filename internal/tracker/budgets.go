package tracker

import (
	"context"
	"errors"
	"fmt"

	"budgettracker/models"
	"budgettracker/pkg/budget"
	"budgettracker/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// BudgetInput is the body of a budget upsert.
type BudgetInput struct {
	CategoryID string
	Month      string
	Limit      *decimal.Decimal
}

func parseMonth(raw string) (budget.Month, error) {
	if raw == "" {
		return budget.Month{}, invalid("month", "month is required")
	}
	m, err := budget.ParseMonth(raw)
	if err != nil {
		return budget.Month{}, invalid("month", "month must be formatted YYYY-MM")
	}
	return m, nil
}

// amountField converts a decoded decimal into cents, naming field on error.
func amountField(field string, d *decimal.Decimal) (money.Amount, error) {
	if d == nil {
		return 0, invalid(field, field+" is required")
	}
	a, err := money.FromDecimal(*d)
	switch {
	case errors.Is(err, money.ErrTooPrecise):
		return 0, invalid(field, field+" must have at most 2 decimal places")
	case err != nil:
		return 0, invalid(field, field+" must be at most "+money.MaxUnits.String())
	}
	return a, nil
}

// ListBudgets returns the budgets of month with their category and the
// amount spent against each.
func (s *Service) ListBudgets(ctx context.Context, userID uuid.UUID, month string) ([]models.Budget, error) {
	m, err := parseMonth(month)
	if err != nil {
		return nil, err
	}
	return s.reconcileMonth(ctx, userID, m)
}

// reconcileMonth loads the month's budgets and the per-category spending
// concurrently and joins them. Budgets drive the rows.
func (s *Service) reconcileMonth(ctx context.Context, userID uuid.UUID, m budget.Month) ([]models.Budget, error) {
	var (
		budgets []models.Budget
		spent   map[uuid.UUID]money.Amount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = s.store.BudgetsForMonth(gctx, userID, m.String())
		if err != nil {
			return fmt.Errorf("load budgets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		spent, err = s.store.SpentByCategory(gctx, userID, m.Start(), m.End())
		if err != nil {
			return fmt.Errorf("sum expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i := range budgets {
		budgets[i].TotalSpent = spent[budgets[i].CategoryID]
	}
	return budgets, nil
}

// UpsertBudget creates or overwrites the limit of (category, month).
// A limit of zero is stored like any other.
func (s *Service) UpsertBudget(ctx context.Context, userID uuid.UUID, in BudgetInput) (*models.Budget, error) {
	cat, err := s.ownedCategory(ctx, userID, "categoryId", in.CategoryID)
	if err != nil {
		return nil, err
	}
	m, err := parseMonth(in.Month)
	if err != nil {
		return nil, err
	}
	limit, err := amountField("limit", in.Limit)
	if err != nil {
		return nil, err
	}
	if limit.IsNegative() {
		return nil, invalid("limit", "limit must be zero or greater")
	}
	b, err := s.store.UpsertBudget(ctx, &models.Budget{
		UserID:     userID,
		CategoryID: cat.ID,
		Month:      m.String(),
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert budget: %w", err)
	}
	spent, err := s.store.SpentInCategory(ctx, userID, cat.ID, m.Start(), m.End())
	if err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}
	b.TotalSpent = spent
	return b, nil
}

func (s *Service) DeleteBudget(ctx context.Context, userID, id uuid.UUID) error {
	return mapNotFound(s.store.DeleteBudget(ctx, userID, id), "Budget")
}
