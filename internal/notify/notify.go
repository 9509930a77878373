// Package notify publishes budget alerts when an expense pushes a budget over
// its limit.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"budgettracker/pkg/budget"
	"budgettracker/pkg/money"

	"github.com/google/uuid"
)

// BudgetAlert is the message sent for an OVER_BUDGET reconciliation.
type BudgetAlert struct {
	UserID     uuid.UUID     `json:"userId"`
	CategoryID uuid.UUID     `json:"categoryId"`
	Month      string        `json:"month"`
	Limit      money.Amount  `json:"limit"`
	Spent      money.Amount  `json:"spent"`
	Remaining  money.Amount  `json:"remaining"`
	Status     budget.Status `json:"status"`
	Timestamp  time.Time     `json:"timestamp"`
}

func (a *BudgetAlert) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}

// BudgetAlertFromJSON decodes a message body.
func BudgetAlertFromJSON(data []byte) (*BudgetAlert, error) {
	var msg BudgetAlert
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Publisher delivers budget alerts.
type Publisher interface {
	PublishBudgetAlert(ctx context.Context, alert BudgetAlert) error
	Close() error
}

// Noop drops every alert. It is used when no broker is configured.
type Noop struct {
	Logger *slog.Logger
}

func (n Noop) PublishBudgetAlert(ctx context.Context, alert BudgetAlert) error {
	if n.Logger != nil {
		n.Logger.DebugContext(ctx, "budget alert dropped, no broker configured",
			"user_id", alert.UserID, "category_id", alert.CategoryID, "month", alert.Month)
	}
	return nil
}

func (Noop) Close() error { return nil }
