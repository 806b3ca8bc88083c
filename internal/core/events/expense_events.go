package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeExpenseCreated     = "expense.created"
	EventTypeExpenseUpdated     = "expense.updated"
	EventTypeExpensePaidToggled = "expense.paid_toggled"
	EventTypeExpenseDeleted     = "expense.deleted"
	EventTypeUserDeleted        = "user.deleted"
	EventTypeBudgetExceeded     = "budget.exceeded"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []string{
	EventTypeExpenseCreated,
	EventTypeExpenseUpdated,
	EventTypeExpensePaidToggled,
	EventTypeExpenseDeleted,
	EventTypeUserDeleted,
	EventTypeBudgetExceeded,
}

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type ExpenseEvent struct {
	BaseEvent
	ExpenseID int64   `json:"expense_id"`
	UserID    int64   `json:"user_id"`
	Amount    float64 `json:"amount"`
	Paid      bool    `json:"paid"`
}

func newExpenseEvent(eventType string, expenseID, userID int64, amount float64, paid bool) *ExpenseEvent {
	return &ExpenseEvent{
		BaseEvent: newBase(eventType, map[string]interface{}{
			"expense_id": expenseID,
			"user_id":    userID,
			"amount":     amount,
			"paid":       paid,
		}),
		ExpenseID: expenseID,
		UserID:    userID,
		Amount:    amount,
		Paid:      paid,
	}
}

func NewExpenseCreatedEvent(expenseID, userID int64, amount float64, paid bool) *ExpenseEvent {
	return newExpenseEvent(EventTypeExpenseCreated, expenseID, userID, amount, paid)
}

func NewExpenseUpdatedEvent(expenseID, userID int64, amount float64, paid bool) *ExpenseEvent {
	return newExpenseEvent(EventTypeExpenseUpdated, expenseID, userID, amount, paid)
}

func NewExpensePaidToggledEvent(expenseID, userID int64, amount float64, paid bool) *ExpenseEvent {
	return newExpenseEvent(EventTypeExpensePaidToggled, expenseID, userID, amount, paid)
}

func NewExpenseDeletedEvent(expenseID, userID int64, amount float64, paid bool) *ExpenseEvent {
	return newExpenseEvent(EventTypeExpenseDeleted, expenseID, userID, amount, paid)
}

type UserDeletedEvent struct {
	BaseEvent
	UserID          int64 `json:"user_id"`
	ExpensesRemoved int64 `json:"expenses_removed"`
}

func NewUserDeletedEvent(userID, expensesRemoved int64) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseEvent: newBase(EventTypeUserDeleted, map[string]interface{}{
			"user_id":          userID,
			"expenses_removed": expensesRemoved,
		}),
		UserID:          userID,
		ExpensesRemoved: expensesRemoved,
	}
}

type BudgetExceededEvent struct {
	BaseEvent
	UserID          int64   `json:"user_id"`
	UserName        string  `json:"user_name"`
	Budget          float64 `json:"budget"`
	TotalPaid       float64 `json:"total_paid"`
	RemainingBudget float64 `json:"remaining_budget"`
}

func NewBudgetExceededEvent(userID int64, userName string, budget, totalPaid, remaining float64) *BudgetExceededEvent {
	return &BudgetExceededEvent{
		BaseEvent: newBase(EventTypeBudgetExceeded, map[string]interface{}{
			"user_id":          userID,
			"user_name":        userName,
			"budget":           budget,
			"total_paid":       totalPaid,
			"remaining_budget": remaining,
		}),
		UserID:          userID,
		UserName:        userName,
		Budget:          budget,
		TotalPaid:       totalPaid,
		RemainingBudget: remaining,
	}
}
