// Package notification forwards budget alerts from the event bus to a message broker.
package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/frahmantamala/expense-tracker/internal/core/events"
)

type BudgetNotification struct {
	UserID          int64     `json:"user_id"`
	Message         string    `json:"message"`
	TotalPaid       float64   `json:"total_paid"`
	Budget          float64   `json:"budget"`
	RemainingBudget float64   `json:"remaining_budget"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func NewBudgetNotification(e *events.BudgetExceededEvent) BudgetNotification {
	return BudgetNotification{
		UserID:          e.UserID,
		Message:         fmt.Sprintf("%s is over budget: paid %.2f of %.2f", e.UserName, e.TotalPaid, e.Budget),
		TotalPaid:       e.TotalPaid,
		Budget:          e.Budget,
		RemainingBudget: e.RemainingBudget,
		OccurredAt:      e.OccurredAt(),
	}
}

func (n BudgetNotification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}
