package tracker

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"budgettracker/internal/notify"
	"budgettracker/internal/store"
	"budgettracker/models"
	"budgettracker/pkg/budget"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxNotes = 500

// ExpenseInput carries create or partial update fields. On update nil
// fields are left unchanged and an empty Category detaches the expense.
type ExpenseInput struct {
	Category *string
	Amount   *decimal.Decimal
	Date     *string
	Notes    *string
}

// ExpenseResult is the outcome of CreateExpense: the stored expense and the
// reconciliation of its category for the expense's month.
type ExpenseResult struct {
	Expense *models.Expense `json:"expense"`
	Budget  budget.Summary  `json:"budget"`
	Status  budget.Status   `json:"status"`
}

func (s *Service) applyAmount(e *models.Expense, d *decimal.Decimal) error {
	a, err := amountField("amount", d)
	if err != nil {
		return err
	}
	if !a.IsPositive() {
		return invalid("amount", "amount must be greater than zero")
	}
	e.Amount = a
	return nil
}

func (s *Service) applyDate(e *models.Expense, raw *string) error {
	if raw == nil || *raw == "" {
		e.Date = s.now().UTC()
	} else {
		d, err := budget.ParseDate(*raw)
		if err != nil {
			return invalid("date", "date must be YYYY-MM-DD or RFC 3339")
		}
		e.Date = d
	}
	e.Month = budget.MonthOf(e.Date).String()
	return nil
}

func applyNotes(e *models.Expense, notes *string) error {
	if notes == nil {
		return nil
	}
	if utf8.RuneCountInString(*notes) > maxNotes {
		return invalid("notes", "notes must be at most 500 characters")
	}
	e.Notes = *notes
	return nil
}

// CreateExpense records an expense against an owned category and
// reconciles that category's budget for the expense's month. When the
// budget is exceeded an alert is published; publish failures are logged.
func (s *Service) CreateExpense(ctx context.Context, userID uuid.UUID, in ExpenseInput) (*ExpenseResult, error) {
	var raw string
	if in.Category != nil {
		raw = *in.Category
	}
	cat, err := s.ownedCategory(ctx, userID, "category", raw)
	if err != nil {
		return nil, err
	}
	e := &models.Expense{UserID: userID, CategoryID: &cat.ID}
	if err := s.applyAmount(e, in.Amount); err != nil {
		return nil, err
	}
	if err := s.applyDate(e, in.Date); err != nil {
		return nil, err
	}
	if err := applyNotes(e, in.Notes); err != nil {
		return nil, err
	}
	if err := s.store.CreateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	e.Category = cat

	summary, status, err := s.reconcile(ctx, userID, cat.ID, budget.MonthOf(e.Date))
	if err != nil {
		return nil, err
	}
	if status == budget.OverBudget {
		alert := notify.BudgetAlert{
			UserID:     userID,
			CategoryID: cat.ID,
			Month:      e.Month,
			Limit:      summary.Limit,
			Spent:      summary.Spent,
			Remaining:  summary.Remaining,
			Status:     status,
			Timestamp:  s.now().UTC(),
		}
		if err := s.alerts.PublishBudgetAlert(ctx, alert); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish budget alert", "user_id", userID, "category_id", cat.ID, "error", err)
		}
	}
	return &ExpenseResult{Expense: e, Budget: summary, Status: status}, nil
}

// reconcile joins the budget of (category, month) with the money spent in
// that category during the month. Without a budget nothing is over.
func (s *Service) reconcile(ctx context.Context, userID, categoryID uuid.UUID, m budget.Month) (budget.Summary, budget.Status, error) {
	b, err := s.store.BudgetFor(ctx, userID, categoryID, m.String())
	if errors.Is(err, store.ErrNotFound) {
		sum, st := budget.Unbudgeted()
		return sum, st, nil
	}
	if err != nil {
		return budget.Summary{}, "", fmt.Errorf("load budget: %w", err)
	}
	spent, err := s.store.SpentInCategory(ctx, userID, categoryID, m.Start(), m.End())
	if err != nil {
		return budget.Summary{}, "", fmt.Errorf("sum expenses: %w", err)
	}
	sum, st := budget.Reconcile(b.Limit, spent)
	return sum, st, nil
}

// ListExpensesForMonth returns the month's expenses newest first. An empty
// categoryID lists every category.
func (s *Service) ListExpensesForMonth(ctx context.Context, userID uuid.UUID, month, categoryID string) ([]models.Expense, error) {
	m, err := parseMonth(month)
	if err != nil {
		return nil, err
	}
	f := store.ExpenseFilter{UserID: userID, From: m.Start(), To: m.End()}
	if categoryID != "" {
		id, err := parseRef("categoryId", categoryID)
		if err != nil {
			return nil, err
		}
		f.CategoryID = &id
	}
	return s.store.ListExpenses(ctx, f)
}

// ListExpensesInRange returns expenses dated from the start of start to the
// end of end, both days included.
func (s *Service) ListExpensesInRange(ctx context.Context, userID uuid.UUID, start, end string) ([]models.Expense, error) {
	if start == "" {
		return nil, invalid("start", "start is required")
	}
	if end == "" {
		return nil, invalid("end", "end is required")
	}
	r, err := budget.ParseRange(start, end)
	switch {
	case errors.Is(err, budget.ErrRangeOrder):
		return nil, invalid("end", "end must not be before start")
	case err != nil:
		return nil, invalid("start", "start and end must be formatted YYYY-MM-DD")
	}
	return s.store.ListExpenses(ctx, store.ExpenseFilter{UserID: userID, From: r.From, To: r.To, ToInclusive: true})
}

func (s *Service) Expense(ctx context.Context, userID, id uuid.UUID) (*models.Expense, error) {
	e, err := s.store.ExpenseByID(ctx, userID, id)
	if err != nil {
		return nil, mapNotFound(err, "Expense")
	}
	return e, nil
}

// UpdateExpense applies the non-nil fields of in. The month follows the date.
func (s *Service) UpdateExpense(ctx context.Context, userID, id uuid.UUID, in ExpenseInput) (*models.Expense, error) {
	e, err := s.Expense(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Category != nil {
		if *in.Category == "" {
			e.CategoryID, e.Category = nil, nil
		} else {
			cat, err := s.ownedCategory(ctx, userID, "category", *in.Category)
			if err != nil {
				return nil, err
			}
			e.CategoryID, e.Category = &cat.ID, cat
		}
	}
	if in.Amount != nil {
		if err := s.applyAmount(e, in.Amount); err != nil {
			return nil, err
		}
	}
	if in.Date != nil {
		if *in.Date == "" {
			return nil, invalid("date", "date cannot be empty")
		}
		if err := s.applyDate(e, in.Date); err != nil {
			return nil, err
		}
	}
	if err := applyNotes(e, in.Notes); err != nil {
		return nil, err
	}
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return nil, mapNotFound(err, "Expense")
	}
	return e, nil
}

func (s *Service) DeleteExpense(ctx context.Context, userID, id uuid.UUID) error {
	return mapNotFound(s.store.DeleteExpense(ctx, userID, id), "Expense")
}
