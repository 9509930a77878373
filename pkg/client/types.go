package client

import (
	"time"

	"budgettracker/pkg/budget"
	"budgettracker/pkg/money"
)

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

type Budget struct {
	ID         string       `json:"id"`
	CategoryID string       `json:"categoryId"`
	Category   *Category    `json:"category"`
	Month      string       `json:"month"`
	Limit      money.Amount `json:"limit"`
	TotalSpent money.Amount `json:"totalSpent"`
}

type Expense struct {
	ID         string       `json:"id"`
	CategoryID *string      `json:"categoryId"`
	Category   *Category    `json:"category"`
	Amount     money.Amount `json:"amount"`
	Date       time.Time    `json:"date"`
	Month      string       `json:"month"`
	Notes      string       `json:"notes"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// ExpenseInput is the body of an expense create.
type ExpenseInput struct {
	Category string       `json:"category"`
	Amount   money.Amount `json:"amount"`
	Date     string       `json:"date,omitempty"`
	Notes    string       `json:"notes,omitempty"`
}

// ExpensePatch carries the fields of a partial expense update.
type ExpensePatch struct {
	Category *string       `json:"category,omitempty"`
	Amount   *money.Amount `json:"amount,omitempty"`
	Date     *string       `json:"date,omitempty"`
	Notes    *string       `json:"notes,omitempty"`
}

type ExpenseResult struct {
	Expense Expense        `json:"expense"`
	Budget  budget.Summary `json:"budget"`
	Status  budget.Status  `json:"status"`
}

type DeleteCategoryResult struct {
	DeletedCategoryID          string `json:"deletedCategoryId"`
	DeletedBudgetsCount        int64  `json:"deletedBudgetsCount"`
	UncategorizedExpensesCount int64  `json:"uncategorizedExpensesCount"`
}

type CategorySummary struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	budget.Summary
	Status budget.Status `json:"status"`
}

type MonthlySummary struct {
	Month string `json:"month"`
	budget.Totals
	Categories []CategorySummary `json:"categories"`
}

// CategoryLabel is the display name of an expense's category. Expenses whose
// category was deleted show as Uncategorized.
func CategoryLabel(c *Category) string {
	if c == nil {
		return "Uncategorized"
	}
	return c.Name
}
