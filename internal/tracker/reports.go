package tracker

import (
	"context"
	"fmt"

	"budgettracker/pkg/budget"

	"github.com/google/uuid"
)

// CategorySummary is one reconciled budget row of a monthly summary.
type CategorySummary struct {
	CategoryID uuid.UUID `json:"categoryId"`
	Name       string    `json:"name"`
	Color      string    `json:"color"`
	budget.Summary
	Status budget.Status `json:"status"`
}

// MonthlySummary aggregates every budget of a month.
type MonthlySummary struct {
	Month string `json:"month"`
	budget.Totals
	Categories []CategorySummary `json:"categories"`
}

// Summary reconciles every budget of month and totals them.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID, month string) (*MonthlySummary, error) {
	m, err := parseMonth(month)
	if err != nil {
		return nil, err
	}
	budgets, err := s.reconcileMonth(ctx, userID, m)
	if err != nil {
		return nil, err
	}
	out := &MonthlySummary{Month: m.String(), Categories: make([]CategorySummary, 0, len(budgets))}
	rows := make([]budget.Summary, 0, len(budgets))
	for _, b := range budgets {
		sum, st := budget.Reconcile(b.Limit, b.TotalSpent)
		row := CategorySummary{CategoryID: b.CategoryID, Summary: sum, Status: st}
		if b.Category != nil {
			row.Name, row.Color = b.Category.Name, b.Category.Color
		}
		out.Categories = append(out.Categories, row)
		rows = append(rows, sum)
	}
	out.Totals = budget.Sum(rows)
	return out, nil
}

const maxTrendMonths = 24

// Trend returns the summaries of the n months ending at month, oldest first.
func (s *Service) Trend(ctx context.Context, userID uuid.UUID, month string, n int) ([]MonthlySummary, error) {
	last, err := parseMonth(month)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > maxTrendMonths {
		return nil, invalid("months", fmt.Sprintf("months must be between 1 and %d", maxTrendMonths))
	}
	m := last
	for i := 1; i < n; i++ {
		m = m.Prev()
	}
	out := make([]MonthlySummary, 0, n)
	for ; len(out) < n; m = m.Next() {
		sum, err := s.Summary(ctx, userID, m.String())
		if err != nil {
			return nil, err
		}
		out = append(out, *sum)
	}
	return out, nil
}
