package budget

import "budgettracker/pkg/money"

// Status tags a reconciled budget.
type Status string

const (
	WithinBudget Status = "WITHIN_BUDGET"
	OverBudget   Status = "OVER_BUDGET"
)

// Summary is the outcome of joining a limit with the money spent against it.
type Summary struct {
	Limit     money.Amount `json:"limit"`
	Spent     money.Amount `json:"spent"`
	Remaining money.Amount `json:"remaining"`
}

// Reconcile computes remaining = limit - spent and tags it.
func Reconcile(limit, spent money.Amount) (Summary, Status) {
	s := Summary{Limit: limit, Spent: spent, Remaining: limit - spent}
	return s, StatusOf(s.Remaining)
}

// Unbudgeted is the summary reported for a category with no budget in the
// month. It never reports OVER_BUDGET.
func Unbudgeted() (Summary, Status) {
	return Summary{}, WithinBudget
}

// StatusOf is OVER_BUDGET strictly below zero.
func StatusOf(remaining money.Amount) Status {
	if remaining.IsNegative() {
		return OverBudget
	}
	return WithinBudget
}

// Totals aggregates several summaries, as shown on a monthly report.
type Totals struct {
	Budget          money.Amount `json:"totalBudget"`
	Spent           money.Amount `json:"totalSpent"`
	Remaining       money.Amount `json:"remaining"`
	PercentOfBudget int64        `json:"percentOfBudget"`
	Status          Status       `json:"status"`
}

// Sum folds summaries into month totals.
func Sum(rows []Summary) Totals {
	var t Totals
	for _, r := range rows {
		t.Budget += r.Limit
		t.Spent += r.Spent
	}
	t.Remaining = t.Budget - t.Spent
	t.PercentOfBudget = money.Percent(t.Spent, t.Budget)
	t.Status = StatusOf(t.Remaining)
	return t
}
