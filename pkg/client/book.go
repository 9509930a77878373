package client

import (
	"context"
	"fmt"
	"time"

	"budgettracker/pkg/budget"
)

// ExpenseBook keeps a month of expenses in a PendingList and applies
// creates and deletes optimistically.
type ExpenseBook struct {
	client *Client
	list   PendingList[Expense]
}

func NewExpenseBook(c *Client) *ExpenseBook {
	return &ExpenseBook{client: c}
}

func expenseKey(e Expense) string { return e.ID }

// Load replaces the book with the server's expenses of month.
func (b *ExpenseBook) Load(ctx context.Context, month string) error {
	items, err := b.client.Expenses(ctx, month, "")
	if err != nil {
		return err
	}
	b.list.Reset(items, expenseKey)
	return nil
}

// Add shows the expense as pending, then confirms it with the server's copy
// or marks it failed.
func (b *ExpenseBook) Add(ctx context.Context, in ExpenseInput) (*ExpenseResult, error) {
	draft := Expense{Amount: in.Amount, Notes: in.Notes}
	if in.Category != "" {
		cat := in.Category
		draft.CategoryID = &cat
	}
	if d, err := budget.ParseDate(in.Date); err == nil {
		draft.Date = d
	} else {
		draft.Date = time.Now().UTC()
	}
	draft.Month = budget.MonthOf(draft.Date).String()

	key := b.list.Add(draft)
	res, err := b.client.CreateExpense(ctx, in)
	if err != nil {
		b.list.Fail(key, err)
		return nil, err
	}
	b.list.Confirm(key, res.Expense.ID, res.Expense)
	return res, nil
}

// Delete hides the expense at once and puts it back if the server refuses.
func (b *ExpenseBook) Delete(ctx context.Context, id string) error {
	e, i, ok := b.list.Remove(id)
	if !ok {
		return fmt.Errorf("expense %s is not in the book", id)
	}
	if err := b.client.DeleteExpense(ctx, id); err != nil {
		b.list.Restore(e, i)
		return err
	}
	return nil
}

// Items returns the visible entries, pending ones included.
func (b *ExpenseBook) Items() []Entry[Expense] { return b.list.Items() }

// Failed returns rejected inserts so the caller can report them.
func (b *ExpenseBook) Failed() []Entry[Expense] { return b.list.Failed() }

// DropFailed forgets rejected inserts once they have been reported.
func (b *ExpenseBook) DropFailed() []Entry[Expense] { return b.list.DropFailed() }
